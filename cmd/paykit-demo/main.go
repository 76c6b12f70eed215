// Command paykit-demo runs one customer through the subscription lifecycle
// on the backend selected by BILLING_BACKEND and logs every step.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/billing/instrumented"
	"github.com/dmitrymomot/paykit/pkg/config"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("paykit-demo failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	opts := []logger.Option{logger.WithEnvironment(cfg.Env, "paykit-demo")}
	if cfg.LogLevel != "" {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		opts = append(opts, logger.WithLevel(level))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	b, cleanup, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if b, err = withSessions(b, cfg, log); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	b = instrumented.Wrap(b,
		instrumented.WithComponent(cfg.Backend),
		instrumented.WithLogger(log),
		instrumented.WithMetrics(instrumented.NewMetrics(reg)),
	)

	if err := scenario(ctx, b, cfg, log); err != nil {
		return err
	}

	if cfg.MetricsAddr == "" {
		return nil
	}
	return serveMetrics(ctx, cfg.MetricsAddr, reg, log)
}

// scenario creates a customer, subscribes it, walks pause, resume and cancel,
// issues both hosted sessions and deletes the customer.
func scenario(ctx context.Context, b *billing.Billing, cfg appConfig, log *slog.Logger) error {
	customer, err := b.Customers().Create(ctx, billing.NewCustomer{Email: cfg.Email})
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Customers().Delete(context.WithoutCancel(ctx), customer.ID); err != nil {
			log.WarnContext(ctx, "failed to delete demo customer", logger.CustomerID(customer.ID), logger.Error(err))
		}
	}()

	// Without a payment method the subscription starts incomplete.
	pending, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: customer.ID})
	if err != nil {
		return err
	}
	if _, err := b.Subscriptions().Cancel(ctx, pending.ID); err != nil {
		return err
	}

	if err := b.Customers().SetupPayments(ctx, customer.ID); err != nil {
		return err
	}

	sub, err := b.Subscriptions().Create(ctx, billing.NewSubscription{
		CustomerID:  customer.ID,
		TrialPeriod: cfg.TrialPeriod,
	})
	if err != nil {
		return err
	}
	for _, step := range []func(context.Context, string) (billing.Subscription, error){
		b.Subscriptions().Pause,
		b.Subscriptions().Resume,
		b.Subscriptions().Cancel,
	} {
		if sub, err = step(ctx, sub.ID); err != nil {
			return err
		}
	}

	// Canceling again is a no-op on every backend.
	if sub, err = b.Subscriptions().Cancel(ctx, sub.ID); err != nil {
		return err
	}
	if sub.Status != billing.StatusCanceled {
		return fmt.Errorf("subscription %s ended in status %s, want canceled", sub.ID, sub.Status)
	}

	checkout, err := b.Sessions().CreateSubscriptionSession(ctx, billing.NewSubscriptionSession{
		CustomerID: customer.ID,
		SuccessURL: cfg.SuccessURL,
	})
	if err != nil {
		return err
	}
	portal, err := b.Sessions().CreateManagementSession(ctx, billing.NewManagementSession{
		CustomerID: customer.ID,
		ReturnURL:  cfg.ReturnURL,
	})
	if err != nil {
		return err
	}

	subs, err := b.Subscriptions().List(ctx, customer.ID)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "demo scenario finished",
		logger.CustomerID(customer.ID),
		slog.Int("subscriptions", len(subs)),
		slog.String("checkout_url", checkout),
		slog.String("portal_url", portal),
	)
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "serving metrics", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
