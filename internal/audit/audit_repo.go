package audit

import (
	"context"
	"database/sql"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
)

type ListFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	Page         int
	PageSize     int
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, log *AuditLog) error
	FindAll(ctx context.Context, filter ListFilter) ([]AuditLog, int64, error)
	FindByID(ctx context.Context, id string) (*AuditLog, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return database.Conn(ctx, r.db, r.tx).Create(log).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]AuditLog, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&AuditLog{})
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		q = q.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []AuditLog
	err := q.Order("created_at DESC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&logs).Error
	return logs, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*AuditLog, error) {
	var log AuditLog
	err := database.Conn(ctx, r.db, r.tx).First(&log, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}
