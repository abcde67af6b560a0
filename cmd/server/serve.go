package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schedule_mastery/internal/api"
	"schedule_mastery/internal/disruption"
	"schedule_mastery/internal/game"
	"schedule_mastery/internal/planner"
	"schedule_mastery/internal/results"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	// ── Results store ───────────────────────────────────
	store, err := results.Open(ctx, cfg.Results.Store())
	if err != nil {
		return fmt.Errorf("open results store: %w", err)
	}
	defer store.Close()
	logger.Info("results store ready", zap.String("backend", cfg.Results.Backend))

	// ── Engine ──────────────────────────────────────────
	engine := game.NewEngine(cat, planner.New(), store, logger.Named("engine"))
	engine.SetDayLength(cfg.Game.DayLength)

	// ── Disruptions ─────────────────────────────────────
	if cfg.Disruption.Enabled {
		sched := disruption.NewScheduler(engine,
			disruption.DefaultTable(cfg.Disruption.Effect),
			cfg.Disruption.Scheduler(),
			logger.Named("disruption"), nil)
		sched.SetGate(engine.IsRunning)
		sched.Start(ctx)
		defer sched.Stop()
	}

	// ── HTTP server ─────────────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      api.New(engine, logger.Named("http")),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// ── Graceful shutdown ───────────────────────────────
	logger.Info("shutting down server")
	engine.PauseDay()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
