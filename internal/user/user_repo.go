package user

import (
	"context"
	"strings"

	"github.com/mrpavithran/Hrms-Backend/internal/auth"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context, filter ListFilter) ([]Account, int64, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Account, int64, error) {
	q := r.db.WithContext(ctx).Model(&Account{})

	if s := strings.TrimSpace(strings.ToLower(filter.Search)); s != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+s+"%")
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []Account
	err := q.Preload("Employee").
		Order("email ASC").
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Find(&accounts).Error
	return accounts, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&auth.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
