// Command storefront-demo runs a scripted shopping session against a live
// storefront API (the stubserver works). It exercises hydration, optimistic
// cart mutations, coupons, favorites, and order placement end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orderhai/storefront-client/internal/cart"
	"github.com/orderhai/storefront-client/internal/catalog"
	"github.com/orderhai/storefront-client/internal/favorites"
	"github.com/orderhai/storefront-client/internal/remote"
	"github.com/orderhai/storefront-client/internal/session"
	"github.com/orderhai/storefront-client/pkg/config"
	"github.com/orderhai/storefront-client/pkg/enums"
	"github.com/orderhai/storefront-client/pkg/logger"
	"github.com/orderhai/storefront-client/pkg/metrics"
)

var sampleMenu = []catalog.Product{
	{ID: "veg-thali", Name: "Veg Thali", BasePriceCents: 50},
	{ID: "masala-dosa", Name: "Masala Dosa", BasePriceCents: 70, SponsorPercent: 20},
	{
		ID:             "filter-coffee",
		Name:           "Filter Coffee",
		BasePriceCents: 30,
		Variants: []catalog.Variant{
			{ID: "regular", Name: "Regular", PriceCents: 30},
			{ID: "large", Name: "Large", PriceCents: 45},
		},
	},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-demo"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-demo",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "demo session failed", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx := context.Background()
	creds := session.NewTokenSource(cfg.Session.Token)

	client, err := remote.NewClient(cfg.API, creds, logg)
	if err != nil {
		return fmt.Errorf("building storefront client: %w", err)
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	cartStore, err := cart.NewStore(cart.StoreParams{
		Remote:           client,
		Credentials:      creds,
		Logger:           logg,
		Metrics:          syncMetrics,
		DeliveryFeeCents: cfg.Cart.DeliveryFeeCents,
		OutboxAttempts:   cfg.Outbox.MaxAttempts,
		OutboxBackoff:    time.Duration(cfg.Outbox.PollIntervalMS) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("building cart store: %w", err)
	}
	defer cartStore.Close()

	favStore, err := favorites.NewStore(favorites.StoreParams{
		Remote:         client,
		Credentials:    creds,
		Logger:         logg,
		Metrics:        syncMetrics,
		OutboxAttempts: cfg.Outbox.MaxAttempts,
		OutboxBackoff:  time.Duration(cfg.Outbox.PollIntervalMS) * time.Millisecond,
		OnSyncDrop: func(productID string, kind enums.SyncOpKind, err error) {
			dropCtx := logg.WithProductID(ctx, productID)
			dropCtx = logg.WithField(dropCtx, "op_kind", kind.String())
			logg.Warn(dropCtx, "favorite did not sync, backend may be out of date")
		},
	})
	if err != nil {
		return fmt.Errorf("building favorites store: %w", err)
	}
	defer favStore.Close()

	cartStore.Hydrate(ctx)
	favStore.Hydrate(ctx)

	thali := sampleMenu[0]
	coffee := sampleMenu[2]

	line := cartStore.AddItem(thali, "")
	cartStore.AddItem(thali, "")
	cartStore.AddItem(coffee, "large")
	cartStore.UpdateQuantity(line.ID, 2)

	if !cartStore.ApplyCoupon("ORDERHAI50") {
		return fmt.Errorf("coupon ORDERHAI50 rejected")
	}

	if _, err := favStore.ToggleFavorite(thali.ID); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "favorite toggle skipped")
	}

	totals := cartStore.Totals()
	totalsCtx := logg.WithFields(ctx, map[string]any{
		"subtotal": totals.SubtotalCents,
		"fee":      totals.DeliveryFeeCents,
		"discount": totals.DiscountCents,
		"total":    totals.TotalCents,
		"coupon":   totals.CouponCode,
	})
	logg.Info(totalsCtx, "cart ready for checkout")

	order, err := cartStore.PlaceOrder(ctx, cart.CheckoutInfo{
		PaymentMethod: enums.PaymentMethodCash,
		Address:       "12 MG Road, Pune",
		Phone:         "9999999999",
		Name:          "Demo User",
	})
	if err != nil {
		return fmt.Errorf("placing order: %w", err)
	}
	orderCtx := logg.WithOrderID(ctx, order.ID)
	orderCtx = logg.WithField(orderCtx, "status", order.Status.String())
	logg.Info(orderCtx, "order placed")

	if err := cartStore.RefreshOrders(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "order refresh failed")
	}

	flushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := cartStore.FlushMirror(flushCtx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart mirror did not fully drain")
	}
	if err := favStore.FlushMirror(flushCtx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "favorites mirror did not fully drain")
	}

	doneCtx := logg.WithFields(ctx, map[string]any{
		"orders":    len(cartStore.Orders()),
		"favorites": len(favStore.Snapshot()),
	})
	logg.Info(doneCtx, "demo session complete")
	return nil
}
