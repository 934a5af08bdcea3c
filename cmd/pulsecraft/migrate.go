package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pulsecraft/pulsecraft/internal/config"
	"github.com/pulsecraft/pulsecraft/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := db.NewStore(cmd.Context(), cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(cmd.Context()); err != nil {
		return err
	}

	slog.Info("migrations complete", "database", cfg.DatabasePath)
	return nil
}
