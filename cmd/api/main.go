package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"petrack/internal/platform/config"
	"petrack/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "petrack",
		Short:         "API de adopción y traslado de mascotas",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Sin subcomando, levanta el server.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), config.Load())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), config.Load())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crea o actualiza el esquema en Postgres (DB_DSN)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logger.New(cfg.Log)
			return runMigrate(cmd.Context(), cfg, log)
		},
	}
}
