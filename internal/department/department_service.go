package department

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	departmenterrors "github.com/mrpavithran/Hrms-Backend/internal/department/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ActiveDepartmentsKey = "departments:active"
	CacheTTL             = 30 * time.Minute
	maxParentDepth       = 32
)

type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context, includeInactive bool) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (DepartmentResponse, error)
	Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	rdb      *redis.Client
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, recorder: recorder, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error) {
	s.logger.Debug("create department requested", zap.String("name", req.Name))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept := &Department{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ManagerID:   uuidPtr(req.ManagerID),
		ParentID:    uuidPtr(req.ParentID),
		IsActive:    true,
	}

	if err := s.checkReferences(ctx, qtx, dept); err != nil {
		return DepartmentResponse{}, err
	}

	if err := qtx.Create(ctx, dept); err != nil {
		s.logger.Error("create department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.invalidateCache(ctx)

	resp := mapToResponse(*dept)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceDepartment,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create department success", zap.String("department_id", resp.ID))
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, includeInactive bool) ([]DepartmentResponse, error) {
	if !includeInactive && s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ActiveDepartmentsKey).Result(); err == nil {
			var resp []DepartmentResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	depts, err := s.repo.FindAll(ctx, includeInactive)
	if err != nil {
		s.logger.Error("get all departments failed", zap.Error(err))
		return nil, err
	}

	resp := mapToListResponse(depts)

	if !includeInactive && s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, ActiveDepartmentsKey, data, CacheTTL).Err(); err != nil {
				s.logger.Warn("cache departments failed", zap.Error(err))
			}
		}
	}

	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*dept), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	s.logger.Debug("update department requested", zap.String("department_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := qtx.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}
	before := mapToResponse(*dept)

	dept.Name = strings.TrimSpace(req.Name)
	dept.Description = req.Description
	dept.ManagerID = uuidPtr(req.ManagerID)
	dept.ParentID = uuidPtr(req.ParentID)
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}

	if err := s.checkReferences(ctx, qtx, dept); err != nil {
		return DepartmentResponse{}, err
	}

	if err := qtx.Update(ctx, dept); err != nil {
		s.logger.Error("update department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.invalidateCache(ctx)

	resp := mapToResponse(*dept)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceDepartment,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update department success", zap.String("department_id", id))
	return resp, nil
}

// Delete deactivates. Employees keep their department reference.
func (s *service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete department requested", zap.String("department_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !dept.IsActive {
		return departmenterrors.ErrAlreadyInactive
	}
	before := mapToResponse(*dept)

	dept.IsActive = false
	if err := qtx.Update(ctx, dept); err != nil {
		s.logger.Error("deactivate department failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateCache(ctx)

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourceDepartment,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     mapToResponse(*dept),
	})

	s.logger.Info("department deactivated", zap.String("department_id", id))
	return nil
}

func (s *service) checkReferences(ctx context.Context, qtx Repository, dept *Department) error {
	if dept.ManagerID != nil {
		ok, err := qtx.ManagerExists(ctx, dept.ManagerID.String())
		if err != nil {
			return err
		}
		if !ok {
			return departmenterrors.ErrManagerNotFound
		}
	}

	if dept.ParentID == nil {
		return nil
	}
	if *dept.ParentID == dept.ID {
		return departmenterrors.ErrParentCycle
	}

	parent, err := qtx.FindByID(ctx, dept.ParentID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return departmenterrors.ErrParentNotFound
		}
		return err
	}
	if !parent.IsActive {
		return departmenterrors.ErrParentNotFound
	}

	// walk up the chain; reaching dept again means a cycle
	for depth := 0; parent.ParentID != nil && depth < maxParentDepth; depth++ {
		if *parent.ParentID == dept.ID {
			return departmenterrors.ErrParentCycle
		}
		parent, err = qtx.FindByID(ctx, parent.ParentID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, ActiveDepartmentsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate department cache", zap.Error(err))
	}
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return departmenterrors.ErrDepartmentNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_departments_name" {
		return departmenterrors.ErrDepartmentAlreadyExists
	}
	return err
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          dept.ID.String(),
		Name:        dept.Name,
		Description: dept.Description,
		ManagerID:   uuidToString(dept.ManagerID),
		ParentID:    uuidToString(dept.ParentID),
		IsActive:    dept.IsActive,
		CreatedAt:   dept.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   dept.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func uuidToString(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}
