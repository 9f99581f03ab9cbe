package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"smart-tasks-backend/internal/ai"
	"smart-tasks-backend/internal/analytics"
	"smart-tasks-backend/internal/config"
	"smart-tasks-backend/internal/db"
	"smart-tasks-backend/internal/logging"
	"smart-tasks-backend/internal/tasks"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	defer database.Close()
	logger.Info("connected to database", zap.String("driver", cfg.DBDriver))

	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		return err
	}

	var generator ai.Generator = ai.Unavailable
	gemini, err := ai.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn("GEMINI_API_KEY not set, /tasks/generate will answer 503")
	case err != nil:
		return err
	default:
		generator = gemini
	}

	events := analytics.New(cfg.AnalyticsSink, database, cfg.DBDriver, logger)
	store := tasks.NewSQLStore(database, cfg.DBDriver)

	handler := tasks.New(generator, store, events, logger)
	handler.GenerateTimeout = cfg.GenerateTimeout

	srv := &http.Server{
		Handler:           newRouter(cfg, handler, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("API server is running", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
