package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/athompson0066/Roofing-Estimator/internal/config"
	"github.com/athompson0066/Roofing-Estimator/internal/httpapi"
	"github.com/athompson0066/Roofing-Estimator/internal/store"
	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
	"github.com/athompson0066/Roofing-Estimator/pkg/estimate"
	"github.com/athompson0066/Roofing-Estimator/pkg/gemini"
	"github.com/athompson0066/Roofing-Estimator/pkg/scan"
	"github.com/athompson0066/Roofing-Estimator/pkg/voice/liveapi"
)

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	provider := gemini.New(cfg.GeminiAPIKey, gemini.WithModel(cfg.Model))
	caller := agent.NewCaller(provider, logger)
	exec := agent.NewExecutor(cfg.RetryPolicy(), logger)

	scanner := scan.New(caller, exec, logger, scan.WithCooldown(cfg.ScanCooldown))
	estimator := estimate.New(caller, exec, logger)
	dialer := liveapi.NewDialer(cfg.GeminiAPIKey, logger)

	server := httpapi.New(httpapi.Config{
		MaxBodyBytes:       cfg.MaxBodyBytes,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LiveModel:          cfg.LiveModel,
		LiveVoice:          cfg.LiveVoice,
	}, logger, scanner, estimator, store.NewMemory(), dialer)

	httpSrv := buildHTTPServer(cfg, server.Handler())

	logger.Info("starting widget server", "addr", cfg.Addr, "model", cfg.Model)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("widget server stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(stderr, "widgetd: %v\n", err)
		return 1
	}
	if err := run(ctx, logger); err != nil {
		fmt.Fprintf(stderr, "widgetd: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr))
}
