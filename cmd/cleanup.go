package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/room-reservation/internal/reservation"
	"github.com/frahmantamala/room-reservation/pkg/logger"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Mark confirmed reservations that have ended as completed",
	Long:  `One-shot sweep meant to run from cron; it exits once the update has committed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
		lg := logger.LoggerWrapper()

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := reservation.NewSweeper(db, lg).Run(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		lg.Info("cleanup finished", "completed", n)
		return nil
	},
}
