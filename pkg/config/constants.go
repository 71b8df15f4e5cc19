package config

// EnvPrefix is passed to envconfig.Process; individual fields carry fully
// qualified envconfig tags, so the prefix only matters for untagged fields.
const EnvPrefix = "orderhai"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced from tests and tooling.
const (
	EnvAppEnv         = "ORDERHAI_APP_ENV"
	EnvLogLevel       = "ORDERHAI_LOG_LEVEL"
	EnvAPIBaseURL     = "ORDERHAI_API_BASE_URL"
	EnvAPITimeout     = "ORDERHAI_API_TIMEOUT"
	EnvSessionToken   = "ORDERHAI_SESSION_TOKEN"
	EnvDeliveryFee    = "ORDERHAI_CART_DELIVERY_FEE_CENTS"
	EnvCurrency       = "ORDERHAI_CART_CURRENCY"
	EnvOutboxPollMS   = "ORDERHAI_OUTBOX_POLL_MS"
	EnvOutboxAttempts = "ORDERHAI_OUTBOX_MAX_ATTEMPTS"
)
