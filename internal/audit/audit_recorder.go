package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/events"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	"go.uber.org/zap"
)

// Entry is one mutation worth keeping a trace of. OldValue and NewValue are
// stored as JSON snapshots.
type Entry struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	OldValue     any
	NewValue     any
}

//go:generate mockgen -source=audit_recorder.go -destination=mock/audit_recorder_mock.go -package=mock
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// RecordBestEffort never fails the caller: audit problems are logged and dropped.
func RecordBestEffort(ctx context.Context, rec Recorder, logger *zap.Logger, entry Entry) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, entry); err != nil {
		logger.Warn("audit record failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("action", entry.Action),
			zap.String("resource_type", entry.ResourceType),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}

type dbRecorder struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

// NewDBRecorder persists entries to audit_logs and, when outbox is set,
// queues an audit.recorded event in the same transaction.
func NewDBRecorder(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Recorder {
	l := zap.L().Named("audit.recorder")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.recorder")
	}
	return &dbRecorder{db: db, repo: repo, outbox: outbox, logger: l}
}

func (r *dbRecorder) Record(ctx context.Context, entry Entry) error {
	log, err := newAuditLog(ctx, entry)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.repo.WithTx(tx).Create(ctx, log); err != nil {
		return err
	}

	if r.outbox != nil {
		event, err := kafka.NewEvent(
			"audit_log",
			log.ID.String(),
			events.AuditRecorded,
			events.AuditTopic,
			log.RequestID,
			events.AuditRecordedEvent{
				EventType:    events.AuditRecorded,
				AuditLogID:   log.ID.String(),
				ActorID:      log.ActorID,
				Action:       log.Action,
				ResourceType: log.ResourceType,
				ResourceID:   log.ResourceID,
				RequestID:    log.RequestID,
				OccurredAt:   log.CreatedAt,
			},
		)
		if err != nil {
			return err
		}
		if err := r.outbox.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Debug("audit recorded",
		zap.String("audit_log_id", log.ID.String()),
		zap.String("action", log.Action),
		zap.String("resource_type", log.ResourceType),
		zap.String("resource_id", log.ResourceID),
	)
	return nil
}

type logRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder writes entries to the process log only. Used when
// audit.enabled is false.
func NewLogRecorder(logger *zap.Logger) Recorder {
	return &logRecorder{logger: logger.Named("audit")}
}

func (r *logRecorder) Record(ctx context.Context, entry Entry) error {
	log, err := newAuditLog(ctx, entry)
	if err != nil {
		return err
	}

	r.logger.Info("audit",
		zap.String("actor_id", log.ActorID),
		zap.String("action", log.Action),
		zap.String("resource_type", log.ResourceType),
		zap.String("resource_id", log.ResourceID),
		zap.ByteString("old_values", log.OldValues),
		zap.ByteString("new_values", log.NewValues),
		zap.String("ip_address", log.IPAddress),
		zap.String("request_id", log.RequestID),
	)
	return nil
}

func newAuditLog(ctx context.Context, entry Entry) (*AuditLog, error) {
	oldValues, err := marshalSnapshot(entry.OldValue)
	if err != nil {
		return nil, fmt.Errorf("marshal old value: %w", err)
	}
	newValues, err := marshalSnapshot(entry.NewValue)
	if err != nil {
		return nil, fmt.Errorf("marshal new value: %w", err)
	}

	actorID := entry.ActorID
	if actorID == "" {
		if actor, ok := contextutil.GetActor(ctx); ok {
			actorID = actor.UserID
		}
	}

	client := contextutil.GetClientInfo(ctx)
	return &AuditLog{
		ID:           uuid.New(),
		ActorID:      actorID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		RequestID:    contextutil.GetRequestID(ctx),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
