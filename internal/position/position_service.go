package position

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
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	positionerrors "github.com/mrpavithran/Hrms-Backend/internal/position/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	PositionOptionsKey = "positions:options"
	optionsCacheTTL    = 30 * time.Minute
)

type Service interface {
	Create(ctx context.Context, req CreatePositionRequest) (PositionResponse, error)
	GetAll(ctx context.Context, req ListPositionsRequest) ([]PositionResponse, int64, error)
	GetOptions(ctx context.Context) ([]PositionOptionResponse, error)
	GetByID(ctx context.Context, id string) (PositionResponse, error)
	Update(ctx context.Context, id string, req UpdatePositionRequest) (PositionResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	rdb      *redis.Client
	recorder audit.Recorder
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("position.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("position.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, recorder: recorder, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, req CreatePositionRequest) (PositionResponse, error) {
	s.logger.Debug("create position requested",
		zap.String("title", req.Title),
		zap.String("department_id", req.DepartmentID),
	)

	deptID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		return PositionResponse{}, positionerrors.ErrDepartmentNotFound
	}
	minSalary, err := salary(req.MinSalary)
	if err != nil {
		return PositionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create position begin tx failed", zap.Error(err))
		return PositionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.checkDepartment(ctx, qtx, req.DepartmentID); err != nil {
		return PositionResponse{}, err
	}

	p := &Position{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(req.Title),
		DepartmentID: deptID,
		Requirements: cleanRequirements(req.Requirements),
		MinSalary:    minSalary,
		IsActive:     true,
	}
	if err := qtx.Create(ctx, p); err != nil {
		s.logger.Error("create position persist failed", zap.Error(err))
		return PositionResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create position commit failed", zap.Error(err))
		return PositionResponse{}, err
	}

	s.invalidateOptions(ctx)

	resp := mapToResponse(*p)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourcePosition,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create position success", zap.String("position_id", resp.ID))
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, req ListPositionsRequest) ([]PositionResponse, int64, error) {
	page, pageSize := scope.Normalize(req.Page, req.PageSize)
	positions, total, err := s.repo.FindAll(ctx, ListFilter{
		DepartmentID: req.DepartmentID,
		Active:       req.Active,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		s.logger.Error("list positions failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]PositionResponse, len(positions))
	for i, p := range positions {
		resp[i] = mapToResponse(p)
	}
	return resp, total, nil
}

// GetOptions serves the active positions for pickers from Redis when it can.
func (s *service) GetOptions(ctx context.Context) ([]PositionOptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, PositionOptionsKey).Result(); err == nil {
			var resp []PositionOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(PositionOptionsKey, func() (interface{}, error) {
		positions, err := s.repo.FindActive(ctx)
		if err != nil {
			return nil, err
		}

		resp := make([]PositionOptionResponse, len(positions))
		for i, p := range positions {
			resp[i] = PositionOptionResponse{
				ID:           p.ID.String(),
				Title:        p.Title,
				DepartmentID: p.DepartmentID.String(),
			}
		}

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, PositionOptionsKey, data, optionsCacheTTL).Err(); err != nil {
					s.logger.Warn("cache position options failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get position options failed", zap.Error(err))
		return nil, err
	}

	return v.([]PositionOptionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (PositionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PositionResponse{}, positionerrors.ErrInvalidPositionID
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PositionResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdatePositionRequest) (PositionResponse, error) {
	s.logger.Debug("update position requested", zap.String("position_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return PositionResponse{}, positionerrors.ErrInvalidPositionID
	}
	deptID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		return PositionResponse{}, positionerrors.ErrDepartmentNotFound
	}
	minSalary, err := salary(req.MinSalary)
	if err != nil {
		return PositionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update position begin tx failed", zap.Error(err))
		return PositionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return PositionResponse{}, mapRepositoryError(err)
	}
	before := mapToResponse(*p)

	if deptID != p.DepartmentID {
		if err := s.checkDepartment(ctx, qtx, req.DepartmentID); err != nil {
			return PositionResponse{}, err
		}
		p.Department = nil
	}

	p.Title = strings.TrimSpace(req.Title)
	p.DepartmentID = deptID
	p.Requirements = cleanRequirements(req.Requirements)
	p.MinSalary = minSalary
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("update position persist failed", zap.Error(err))
		return PositionResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update position commit failed", zap.Error(err))
		return PositionResponse{}, err
	}

	s.invalidateOptions(ctx)

	resp := mapToResponse(*p)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourcePosition,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update position success", zap.String("position_id", id))
	return resp, nil
}

// Delete deactivates. Employees keep pointing at the row.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return positionerrors.ErrInvalidPositionID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !p.IsActive {
		s.logger.Warn("deactivate position rejected, already inactive", zap.String("position_id", id))
		return positionerrors.ErrAlreadyInactive
	}
	before := mapToResponse(*p)

	p.IsActive = false
	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("deactivate position failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateOptions(ctx)

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourcePosition,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     mapToResponse(*p),
	})

	s.logger.Info("position deactivated", zap.String("position_id", id))
	return nil
}

func (s *service) checkDepartment(ctx context.Context, qtx Repository, departmentID string) error {
	ok, err := qtx.DepartmentActive(ctx, departmentID)
	if err != nil {
		s.logger.Error("check position department failed", zap.Error(err))
		return err
	}
	if !ok {
		s.logger.Warn("position department not found", zap.String("department_id", departmentID))
		return positionerrors.ErrDepartmentNotFound
	}
	return nil
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, PositionOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate position options cache", zap.Error(err))
	}
}

func salary(v *float64) (decimal.NullDecimal, error) {
	if v == nil {
		return decimal.NullDecimal{}, nil
	}
	d := decimal.NewFromFloat(*v).Round(2)
	if d.IsNegative() {
		return decimal.NullDecimal{}, positionerrors.ErrNegativeSalary
	}
	return decimal.NewNullDecimal(d), nil
}

func cleanRequirements(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return positionerrors.ErrPositionNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return positionerrors.ErrPositionExists
		case "23503":
			return positionerrors.ErrDepartmentNotFound
		}
	}
	return err
}

func mapToResponse(p Position) PositionResponse {
	resp := PositionResponse{
		ID:           p.ID.String(),
		Title:        p.Title,
		DepartmentID: p.DepartmentID.String(),
		Requirements: p.Requirements,
		IsActive:     p.IsActive,
	}
	if resp.Requirements == nil {
		resp.Requirements = []string{}
	}
	if p.Department != nil {
		resp.DepartmentName = p.Department.Name
	}
	if p.MinSalary.Valid {
		v := p.MinSalary.Decimal.InexactFloat64()
		resp.MinSalary = &v
	}
	return resp
}
