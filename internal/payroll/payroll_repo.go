package payroll

import (
	"context"
	"database/sql"
	"time"

	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type ListFilter struct {
	EmployeeID string
	Status     Status
	Year       int
	Visibility domain.Visibility
	Page       int
	PageSize   int
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Payroll) error
	FindAll(ctx context.Context, filter ListFilter) ([]Payroll, int64, error)
	FindByID(ctx context.Context, id string) (*Payroll, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Payroll, error)
	Update(ctx context.Context, p *Payroll) error
	Delete(ctx context.Context, id string) error
	EmployeeExists(ctx context.Context, id string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, p *Payroll) error {
	return database.Conn(ctx, r.db, r.tx).Omit("Employee").Create(p).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Payroll, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&Payroll{})
	if !filter.Visibility.All {
		q = q.Scopes(scope.OwnedBy("employee_id", filter.Visibility.EmployeeID, filter.Visibility.IncludeReports))
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Year != 0 {
		q = q.Where("EXTRACT(YEAR FROM period_start) = ?", filter.Year)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payrolls []Payroll
	err := q.Preload("Employee").
		Order("period_start DESC").Order("employee_id ASC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&payrolls).Error
	return payrolls, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Payroll, error) {
	var p Payroll
	if err := database.Conn(ctx, r.db, r.tx).Preload("Employee").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Payroll, error) {
	var p Payroll
	err := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Payroll) error {
	return database.Conn(ctx, r.db, r.tx).
		Model(p).
		Select("period_start", "period_end", "base_salary", "allowance", "deduction", "net_salary",
			"status", "processed_at", "paid_at", "cancelled_at", "updated_at").
		Updates(p).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db, r.tx).Delete(&Payroll{}, "id = ?", id).Error
}

func (r *repository) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("employees").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

// HasOverlappingPeriod ignores cancelled payrolls and, when excludeID is set,
// the payroll being edited.
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	q := database.Conn(ctx, r.db, r.tx).
		Model(&Payroll{}).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", StatusCancelled).
		Where("NOT (period_end < ? OR period_start > ?)", start.Format(dateLayout), end.Format(dateLayout))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}
