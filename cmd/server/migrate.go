package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moodwall/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		dbConn, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		if err := db.RunMigrations(cmd.Context(), dbConn); err != nil {
			logger.Error("failed migrations", zap.Error(err))
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
