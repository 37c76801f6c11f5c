package leavebalance

import (
	"context"
	"database/sql"

	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	EmployeeID string
	PolicyID   string
	Year       int
	Visibility domain.Visibility
	Page       int
	PageSize   int
}

//go:generate mockgen -source=leave_balance_repo.go -destination=mock/leave_balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	CreateIfMissing(ctx context.Context, b *LeaveBalance) (bool, error)
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveBalance, int64, error)
	FindByID(ctx context.Context, id string) (*LeaveBalance, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveBalance, error)
	FindForUpdate(ctx context.Context, employeeID, policyID string, year int) (*LeaveBalance, error)
	Update(ctx context.Context, b *LeaveBalance) error
	Delete(ctx context.Context, id string) error
	EmployeeExists(ctx context.Context, id string) (bool, error)
	IsDirectReport(ctx context.Context, managerID, employeeID string) (bool, error)
	HasActiveRequests(ctx context.Context, employeeID, policyID string, year int) (bool, error)
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

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return database.Conn(ctx, r.db, r.tx).Create(b).Error
}

// CreateIfMissing inserts b unless the (employee, policy, year) row exists.
func (r *repository) CreateIfMissing(ctx context.Context, b *LeaveBalance) (bool, error) {
	res := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "policy_id"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(b)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveBalance, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&LeaveBalance{})
	if !filter.Visibility.All {
		q = q.Scopes(scope.OwnedBy("employee_id", filter.Visibility.EmployeeID, filter.Visibility.IncludeReports))
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.PolicyID != "" {
		q = q.Where("policy_id = ?", filter.PolicyID)
	}
	if filter.Year != 0 {
		q = q.Where("year = ?", filter.Year)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var balances []LeaveBalance
	err := q.Order("year DESC").Order("employee_id ASC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&balances).Error
	return balances, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveBalance, error) {
	var b LeaveBalance
	if err := database.Conn(ctx, r.db, r.tx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindForUpdate locks the ledger row until the surrounding transaction ends.
func (r *repository) FindForUpdate(ctx context.Context, employeeID, policyID string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND policy_id = ? AND year = ?", employeeID, policyID, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Update(ctx context.Context, b *LeaveBalance) error {
	return database.Conn(ctx, r.db, r.tx).
		Model(b).
		Select("days_used", "days_remaining", "updated_at").
		Updates(b).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db, r.tx).Delete(&LeaveBalance{}, "id = ?", id).Error
}

func (r *repository) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("employees").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) IsDirectReport(ctx context.Context, managerID, employeeID string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("employees").
		Where("id = ? AND manager_id = ? AND deleted_at IS NULL", employeeID, managerID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasActiveRequests(ctx context.Context, employeeID, policyID string, year int) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("leave_requests").
		Where("employee_id = ? AND policy_id = ? AND balance_year = ?", employeeID, policyID, year).
		Where("status IN ?", []string{"PENDING", "APPROVED"}).
		Count(&count).Error
	return count > 0, err
}
