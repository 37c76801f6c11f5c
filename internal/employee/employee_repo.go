package employee

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search           string
	DepartmentID     string
	EmploymentStatus string
	SortBy           string
	SortDir          string
	Page             int
	PageSize         int
}

var sortColumns = map[string]string{
	"name":            "first_name",
	"email":           "email",
	"hire_date":       "hire_date",
	"employee_number": "employee_number",
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context, filter ListFilter) ([]Employee, int64, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	DepartmentExists(ctx context.Context, id string) (bool, error)
	PositionExists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, empl *Employee) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return database.Conn(ctx, r.db, r.tx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Employee, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&Employee{})

	if s := strings.TrimSpace(strings.ToLower(filter.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_number) LIKE ?",
			like, like, like, like,
		)
	}
	if filter.DepartmentID != "" {
		q = q.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.EmploymentStatus != "" {
		q = q.Where("employment_status = ?", filter.EmploymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[strings.ToLower(filter.SortBy)]
	if !ok {
		column = "first_name"
	}
	dir := "ASC"
	if strings.EqualFold(filter.SortDir, "desc") {
		dir = "DESC"
	}

	var empls []Employee
	err := q.Order(column + " " + dir).
		Order("id ASC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&empls).Error
	return empls, total, err
}

// FindOptions returns non-terminated employees for pickers.
func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := database.Conn(ctx, r.db, r.tx).
		Select("id", "employee_number", "first_name", "last_name").
		Where("employment_status <> ?", StatusTerminated).
		Order("first_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := database.Conn(ctx, r.db, r.tx).First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) DepartmentExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("departments").
		Where("id = ?", id).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) PositionExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("positions").
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return database.Conn(ctx, r.db, r.tx).Save(empl).Error
}
