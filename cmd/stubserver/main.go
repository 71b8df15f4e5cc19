package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/orderhai/storefront-client/internal/stubapi"
	"github.com/orderhai/storefront-client/pkg/env"
	"github.com/orderhai/storefront-client/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "stubserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	logg = logger.New(logger.Options{
		ServiceName: "stubserver",
		Level:       logger.ParseLevel(env.Get("ORDERHAI_LOG_LEVEL", "info")),
	})

	addr := ":" + env.Get("PORT", "8081")
	ctx := logg.WithField(context.Background(), "addr", addr)
	logg.Info(ctx, "starting stub storefront backend")

	server := &http.Server{
		Addr:    addr,
		Handler: stubapi.NewRouter(stubapi.NewMemory(), logg),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "stub server stopped unexpectedly", err)
		os.Exit(1)
	}
}
