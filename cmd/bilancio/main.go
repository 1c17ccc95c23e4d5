package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/cli"
	apphttp "bilancio/internal/http"
	applog "bilancio/internal/log"
	"bilancio/internal/report"
	"bilancio/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()

	broker := cli.ConnectBroker(logger, cfg, false)
	if broker != nil {
		defer broker.Close()
	}

	// Assign only a live broker so the service sees a truly nil publisher
	// when events are disabled.
	var publisher services.EventPublisher
	if broker != nil {
		publisher = broker
	}

	expenses := services.NewExpenseService(repo, publisher)
	invites := services.NewInviteService(repo)
	reports := report.NewGenerator(repo)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DashboardCacheSize: cfg.DashboardCacheSize,
		DashboardCacheTTL:  cfg.DashboardCacheTTL,
	}, apphttp.NewHeaderAuthenticator(), expenses, repo, reports, repo, invites)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	janitor := cache.NewJanitor(srv.DashboardCache())
	janitor.Start(ctx, time.Minute)

	logger.Info("Starting bilancio server",
		"port", cfg.Port,
		"backend", cfg.DBBackend,
		"events", broker != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	janitor.Wait()
	logger.Info("Server stopped gracefully")
}
