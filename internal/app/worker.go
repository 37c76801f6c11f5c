package app

import (
	"context"

	"github.com/mrpavithran/Hrms-Backend/internal/config"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka/producer"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/connection"
	"go.uber.org/zap"
)

// RunWorker relays outbox rows (leave lifecycle, employee lifecycle, audit)
// to Kafka until ctx is cancelled.
func RunWorker(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	writer, err := connection.ConnectKafkaWithRetry(cfg.Kafka)
	if err != nil {
		return err
	}
	defer writer.Close()

	producer.ProcessOutboxEvents(ctx, sqlDB, kafka.NewOutboxRepository(sqlDB), writer, log, producer.WorkerConfig{
		PollInterval: cfg.Kafka.PollInterval,
		BatchSize:    cfg.Kafka.BatchSize,
	})

	log.Info("worker shut down")
	return nil
}
