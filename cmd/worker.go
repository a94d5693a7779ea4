package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/room-reservation/internal/messaging"
	"github.com/frahmantamala/room-reservation/pkg/logger"
	"github.com/spf13/cobra"
)

var workerQueue string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume relayed domain events from RabbitMQ",
	Long:  `Start the event consumer. It reconnects with backoff until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Messaging.AMQPURL == "" {
			return errors.New("messaging.amqp_url is not configured")
		}

		logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
		lg := logger.LoggerWrapper()

		queue := getStringFlag(workerQueue, cfg.Messaging.QueueName())

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lg.Info("event worker started", "queue", queue)
		consumer := messaging.NewConsumer(cfg.Messaging.AMQPURL, queue, lg, nil)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		lg.Info("event worker stopped")
		return nil
	},
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	workerCmd.Flags().StringVar(&workerQueue, "queue", "", "queue name (overrides config)")
}
