package position

import (
	"context"
	"database/sql"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
)

type ListFilter struct {
	DepartmentID string
	Active       *bool
	Page         int
	PageSize     int
}

//go:generate mockgen -source=position_repo.go -destination=mock/position_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Position) error
	FindAll(ctx context.Context, filter ListFilter) ([]Position, int64, error)
	FindActive(ctx context.Context) ([]Position, error)
	FindByID(ctx context.Context, id string) (*Position, error)
	Update(ctx context.Context, p *Position) error
	DepartmentActive(ctx context.Context, id string) (bool, error)
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

func (r *repository) Create(ctx context.Context, p *Position) error {
	return database.Conn(ctx, r.db, r.tx).Omit("Department").Create(p).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Position, int64, error) {
	q := database.Conn(ctx, r.db, r.tx).Model(&Position{})
	if filter.DepartmentID != "" {
		q = q.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var positions []Position
	err := q.Preload("Department").
		Order("title ASC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&positions).Error
	return positions, total, err
}

func (r *repository) FindActive(ctx context.Context) ([]Position, error) {
	var positions []Position
	err := database.Conn(ctx, r.db, r.tx).
		Scopes(scope.Active("is_active")).
		Order("title ASC").
		Find(&positions).Error
	return positions, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Position, error) {
	var p Position
	err := database.Conn(ctx, r.db, r.tx).
		Preload("Department").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Position) error {
	return database.Conn(ctx, r.db, r.tx).Omit("Department").Save(p).Error
}

func (r *repository) DepartmentActive(ctx context.Context, id string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db, r.tx).
		Table("departments").
		Where("id = ? AND is_active = ? AND deleted_at IS NULL", id, true).
		Count(&count).Error
	return count > 0, err
}
