package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Cart    CartConfig
	Outbox  OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERHAI_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"ORDERHAI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERHAI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig locates the storefront API the stores mirror into.
type APIConfig struct {
	BaseURL string        `envconfig:"ORDERHAI_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"ORDERHAI_API_TIMEOUT" default:"10s"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", EnvAPIBaseURL)
	}
	return nil
}

// SessionConfig seeds the ambient credential for CLI use; library callers
// inject their own provider instead.
type SessionConfig struct {
	Token string `envconfig:"ORDERHAI_SESSION_TOKEN"`
}

type CartConfig struct {
	DeliveryFeeCents int64  `envconfig:"ORDERHAI_CART_DELIVERY_FEE_CENTS" default:"5"`
	Currency         string `envconfig:"ORDERHAI_CART_CURRENCY" default:"INR"`
}

type OutboxConfig struct {
	PollIntervalMS int `envconfig:"ORDERHAI_OUTBOX_POLL_MS" default:"250"`
	MaxAttempts    int `envconfig:"ORDERHAI_OUTBOX_MAX_ATTEMPTS" default:"5"`
}
