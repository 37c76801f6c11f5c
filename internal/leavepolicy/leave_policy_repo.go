package leavepolicy

import (
	"context"
	"database/sql"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
)

type ListFilter struct {
	LeaveType string
	Active    *bool
	Page      int
	PageSize  int
}

//go:generate mockgen -source=leave_policy_repo.go -destination=mock/leave_policy_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, policy *LeavePolicy) error
	FindAll(ctx context.Context, filter ListFilter) ([]LeavePolicy, int64, error)
	FindActive(ctx context.Context) ([]LeavePolicy, error)
	FindByID(ctx context.Context, id string) (*LeavePolicy, error)
	IsReferenced(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, policy *LeavePolicy) error
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

func (r *repository) Create(ctx context.Context, policy *LeavePolicy) error {
	return database.Conn(ctx, r.db, r.tx).Create(policy).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeavePolicy, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&LeavePolicy{})
	if filter.LeaveType != "" {
		q = q.Where("leave_type = ?", filter.LeaveType)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var policies []LeavePolicy
	err := q.Order("name ASC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&policies).Error
	return policies, total, err
}

func (r *repository) FindActive(ctx context.Context) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := database.Conn(ctx, r.db, r.tx).
		Scopes(scope.Active("is_active")).
		Order("name ASC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeavePolicy, error) {
	var policy LeavePolicy
	err := database.Conn(ctx, r.db, r.tx).First(&policy, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// IsReferenced reports whether any balance or request points at the policy.
func (r *repository) IsReferenced(ctx context.Context, id string) (bool, error) {
	var referenced bool
	err := database.Conn(ctx, r.db, r.tx).Raw(`
		SELECT EXISTS (SELECT 1 FROM leave_balances WHERE policy_id = ?)
		    OR EXISTS (SELECT 1 FROM leave_requests WHERE policy_id = ?)
	`, id, id).Scan(&referenced).Error
	return referenced, err
}

func (r *repository) Update(ctx context.Context, policy *LeavePolicy) error {
	return database.Conn(ctx, r.db, r.tx).Save(policy).Error
}
