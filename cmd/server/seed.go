package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moodwall/internal/db"
	"moodwall/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled support messages",
	Long: `Upserts the bundled support messages into support_messages. Existing
messages keep their usage counts, so the command is safe to re-run.`,
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

		n, err := db.SeedSupportMessages(cmd.Context(), store.NewPostgres(dbConn))
		if err != nil {
			logger.Error("seed failed", zap.Error(err))
			return err
		}
		logger.Info("support messages seeded", zap.Int("count", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
