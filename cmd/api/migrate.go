package main

import (
	"errors"

	"github.com/01moynul/farinez-golang/internal/database"
	"github.com/spf13/cobra"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	Long: `migrate applies every pending schema migration. With --steps N only N
migrations are applied; a negative N rolls back that many.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DSN == "" {
			return errors.New("DB_DSN_PRIMARY environment variable is not set")
		}
		if err := database.Migrate(cfg.DSN, migrateSteps); err != nil {
			return err
		}
		log.WithField("steps", migrateSteps).Info("Migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of migrations to apply (negative rolls back, 0 applies all)")
}
