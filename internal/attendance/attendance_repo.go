package attendance

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
	From       *time.Time
	To         *time.Time
	Status     Status
	Visibility domain.Visibility
	Page       int
	PageSize   int
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error)
	FindByID(ctx context.Context, id string) (*Attendance, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	Delete(ctx context.Context, id string) error
	EmployeeExists(ctx context.Context, id string) (bool, error)
	IsDirectReport(ctx context.Context, managerID, employeeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return database.Conn(ctx, r.db, r.tx).Create(a).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&Attendance{})
	if !filter.Visibility.All {
		q = q.Scopes(scope.OwnedBy("employee_id", filter.Visibility.EmployeeID, filter.Visibility.IncludeReports))
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.From != nil {
		q = q.Where("attendance_date >= ?", filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		q = q.Where("attendance_date <= ?", filter.To.Format(dateLayout))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Attendance
	err := q.Order("attendance_date DESC").Order("employee_id ASC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Attendance, error) {
	var a Attendance
	if err := database.Conn(ctx, r.db, r.tx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Attendance, error) {
	var a Attendance
	err := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByEmployeeAndDate locks the day's row so clock-in and clock-out
// for the same employee serialize.
func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := database.Conn(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND attendance_date = ?", employeeID, date.Format(dateLayout)).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return database.Conn(ctx, r.db, r.tx).
		Model(a).
		Select("clock_in", "clock_out", "status", "notes", "updated_at").
		Updates(a).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db, r.tx).Delete(&Attendance{}, "id = ?", id).Error
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
