package app

import (
	"context"

	"github.com/mrpavithran/Hrms-Backend/internal/config"
	"github.com/mrpavithran/Hrms-Backend/internal/events"
	"github.com/mrpavithran/Hrms-Backend/internal/leavebalance"
	"github.com/mrpavithran/Hrms-Backend/internal/leavepolicy"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka/consumer"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/connection"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer opens leave balances for newly hired employees from the
// employee lifecycle topic until ctx is cancelled.
func RunConsumer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	recorder := newRecorder(cfg, sqlDB, gormDB, kafka.NewOutboxRepository(sqlDB), logger)
	balanceService := leavebalance.NewService(
		sqlDB,
		leavebalance.NewRepository(gormDB),
		leavepolicy.NewRepository(gormDB),
		recorder,
		logger,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          events.EmployeeLifecycleTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	consumer.ConsumeEmployeeLifecycle(ctx, reader, balanceService, log)

	log.Info("consumer shut down")
	return nil
}
