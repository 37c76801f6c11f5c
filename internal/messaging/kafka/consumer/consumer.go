package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mrpavithran/Hrms-Backend/internal/events"
	"github.com/mrpavithran/Hrms-Backend/internal/leavebalance"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// BalanceAllocator is satisfied by leavebalance.Service.
type BalanceAllocator interface {
	Allocate(ctx context.Context, employeeID string, year int) ([]leavebalance.LeaveBalanceResponse, error)
}

// ConsumeEmployeeLifecycle opens the leave balances of newly hired employees.
// Messages that can never succeed are committed and skipped; transient
// failures leave the offset uncommitted so the message is redelivered.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	allocator BalanceAllocator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		handleEmployeeLifecycle(ctx, reader, allocator, log, msg)
	}
}

func handleEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	allocator BalanceAllocator,
	log *zap.Logger,
	msg kafkago.Message,
) {
	var event events.EmployeeLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee lifecycle event failed", zap.Error(err))
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	if event.EventType != events.EmployeeCreated {
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	year := allocationYear(event)
	created, err := allocator.Allocate(contextutil.WithRequestID(ctx, event.RequestID), event.EmployeeID, year)
	if err != nil {
		if apperror.IsClientError(err) {
			log.Warn("employee_created event rejected, skipping",
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			return
		}

		log.Error("allocate leave balances failed",
			zap.String("employee_id", event.EmployeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit employee lifecycle message failed", zap.Error(err))
		return
	}

	log.Info("leave balances allocated from employee_created event",
		zap.String("employee_id", event.EmployeeID),
		zap.Int("year", year),
		zap.Int("created", len(created)),
	)
}

// allocationYear is the hire year, or the year the event happened when the
// hire date is missing or malformed.
func allocationYear(event events.EmployeeLifecycleEvent) int {
	if hired, err := time.Parse("2006-01-02", event.HireDate); err == nil {
		return hired.Year()
	}
	if !event.OccurredAt.IsZero() {
		return event.OccurredAt.UTC().Year()
	}
	return time.Now().UTC().Year()
}
