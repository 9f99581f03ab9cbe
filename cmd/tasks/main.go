package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smart-tasks-backend/internal/client"
	"smart-tasks-backend/internal/logging"
)

var (
	serverURL string
	logLevel  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tasks",
		Short:         "Terminal client for the smart tasks API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TASKS_SERVER", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(toggleCmd())
	rootCmd.AddCommand(deleteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// session wires the API client, logger and reconciler for one command.
type session struct {
	api    *client.API
	rec    *client.Reconciler
	logger *zap.Logger
}

func newSession() (*session, error) {
	logger, err := logging.New(logLevel, "console")
	if err != nil {
		return nil, err
	}
	api := client.NewAPI(serverURL, nil)
	return &session{
		api:    api,
		rec:    client.NewReconciler(api, logger),
		logger: logger,
	}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}
