package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/employee"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Status     Status
	EmployeeID string
	PolicyID   string
	// From and To keep requests whose period touches [From, To].
	From       *time.Time
	To         *time.Time
	Visibility domain.Visibility
	// PageSize 0 returns every matching row.
	Page     int
	PageSize int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *LeaveRequest) error
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, int64, error)
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	Update(ctx context.Context, r *LeaveRequest) error
	Delete(ctx context.Context, id string) error
	FindEmployeeForUpdate(ctx context.Context, id string) (*employee.Employee, error)
	IsDirectReport(ctx context.Context, managerID, employeeID string) (bool, error)
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return database.Conn(ctx, r.db, r.tx).Omit(clause.Associations).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&LeaveRequest{})
	if !filter.Visibility.All {
		q = q.Scopes(scope.OwnedBy("employee_id", filter.Visibility.EmployeeID, filter.Visibility.IncludeReports))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.PolicyID != "" {
		q = q.Where("policy_id = ?", filter.PolicyID)
	}
	if filter.From != nil {
		q = q.Where("end_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("start_date <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Employee").Preload("Policy").Order("applied_at DESC")
	if filter.PageSize > 0 {
		q = q.Scopes(scope.Paginate(filter.Page, filter.PageSize))
	}

	var requests []LeaveRequest
	err := q.Find(&requests).Error
	return requests, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := database.Conn(ctx, r.db, r.tx).
		Preload("Employee").
		Preload("Policy").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return database.Conn(ctx, r.db, r.tx).Omit(clause.Associations).Save(l).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db, r.tx).Delete(&LeaveRequest{}, "id = ?", id).Error
}

// FindEmployeeForUpdate locks the employee row so concurrent creates for one
// employee run their overlap check one after another.
func (r *repository) FindEmployeeForUpdate(ctx context.Context, id string) (*employee.Employee, error) {
	var empl employee.Employee
	err := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) IsDirectReport(ctx context.Context, managerID, employeeID string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Model(&employee.Employee{}).
		Where("id = ? AND manager_id = ?", employeeID, managerID).
		Count(&count).Error
	return count > 0, err
}

// HasOverlap checks inclusive bounds against PENDING and APPROVED requests.
func (r *repository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	q := database.Conn(ctx, r.db, r.tx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []Status{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}
