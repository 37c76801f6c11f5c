package department

import (
	"context"
	"database/sql"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
)

//go:generate mockgen -source=department_repo.go -destination=mock/department_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, dept *Department) error
	FindAll(ctx context.Context, includeInactive bool) ([]Department, error)
	FindByID(ctx context.Context, id string) (*Department, error)
	ManagerExists(ctx context.Context, employeeID string) (bool, error)
	Update(ctx context.Context, dept *Department) error
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

func (r *repository) Create(ctx context.Context, dept *Department) error {
	return database.Conn(ctx, r.db, r.tx).Create(dept).Error
}

func (r *repository) FindAll(ctx context.Context, includeInactive bool) ([]Department, error) {
	q := database.Conn(ctx, r.db, r.tx)
	if !includeInactive {
		q = q.Scopes(scope.Active("is_active"))
	}

	var depts []Department
	err := q.Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Department, error) {
	var dept Department
	err := database.Conn(ctx, r.db, r.tx).First(&dept, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *repository) ManagerExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("employment_status <> ?", "TERMINATED").
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, dept *Department) error {
	return database.Conn(ctx, r.db, r.tx).Save(dept).Error
}
