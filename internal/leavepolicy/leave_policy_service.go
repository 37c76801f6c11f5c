package leavepolicy

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	leavepolicyerrors "github.com/mrpavithran/Hrms-Backend/internal/leavepolicy/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateLeavePolicyRequest) (LeavePolicyResponse, error)
	GetAll(ctx context.Context, req ListLeavePoliciesRequest) ([]LeavePolicyResponse, int64, error)
	GetByID(ctx context.Context, id string) (LeavePolicyResponse, error)
	Update(ctx context.Context, id string, req UpdateLeavePolicyRequest) (LeavePolicyResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavepolicy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavepolicy.service")
	}
	return &service{db: db, repo: repo, recorder: recorder, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateLeavePolicyRequest) (LeavePolicyResponse, error) {
	s.logger.Debug("create leave policy requested",
		zap.String("name", req.Name),
		zap.String("leave_type", req.LeaveType),
	)

	leaveType := LeaveType(strings.ToUpper(req.LeaveType))
	if !leaveType.Valid() {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidLeaveType
	}
	days, err := daysAllowed(req.DaysAllowed)
	if err != nil {
		return LeavePolicyResponse{}, err
	}

	policy := &LeavePolicy{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		LeaveType:   leaveType,
		DaysAllowed: days,
		Description: req.Description,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, policy); err != nil {
		s.logger.Error("create leave policy persist failed", zap.Error(err))
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}

	resp := mapToResponse(*policy)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceLeavePolicy,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create leave policy success", zap.String("policy_id", resp.ID))
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, req ListLeavePoliciesRequest) ([]LeavePolicyResponse, int64, error) {
	page, pageSize := scope.Normalize(req.Page, req.PageSize)
	policies, total, err := s.repo.FindAll(ctx, ListFilter{
		LeaveType: strings.ToUpper(req.LeaveType),
		Active:    req.Active,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		s.logger.Error("list leave policies failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]LeavePolicyResponse, len(policies))
	for i, p := range policies {
		resp[i] = mapToResponse(p)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeavePolicyResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidPolicyID
	}

	policy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*policy), nil
}

// Update always accepts days_allowed and is_active changes. Name and type
// are frozen once a balance or request refers to the policy.
func (s *service) Update(ctx context.Context, id string, req UpdateLeavePolicyRequest) (LeavePolicyResponse, error) {
	s.logger.Debug("update leave policy requested", zap.String("policy_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidPolicyID
	}

	leaveType := LeaveType(strings.ToUpper(req.LeaveType))
	if !leaveType.Valid() {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidLeaveType
	}
	days, err := daysAllowed(req.DaysAllowed)
	if err != nil {
		return LeavePolicyResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeavePolicyResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	policy, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}
	before := mapToResponse(*policy)

	name := strings.TrimSpace(req.Name)
	if name != policy.Name || leaveType != policy.LeaveType {
		referenced, err := qtx.IsReferenced(ctx, id)
		if err != nil {
			s.logger.Error("check leave policy references failed", zap.Error(err))
			return LeavePolicyResponse{}, err
		}
		if referenced {
			s.logger.Warn("leave policy identity change rejected",
				zap.String("policy_id", id),
				zap.String("name", name),
				zap.String("leave_type", string(leaveType)),
			)
			return LeavePolicyResponse{}, leavepolicyerrors.ErrPolicyInUse
		}
	}

	policy.Name = name
	policy.LeaveType = leaveType
	policy.DaysAllowed = days
	policy.Description = req.Description
	if req.IsActive != nil {
		policy.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, policy); err != nil {
		s.logger.Error("update leave policy persist failed", zap.Error(err))
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return LeavePolicyResponse{}, err
	}

	resp := mapToResponse(*policy)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceLeavePolicy,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update leave policy success", zap.String("policy_id", id))
	return resp, nil
}

// Delete deactivates; policies are never removed.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leavepolicyerrors.ErrInvalidPolicyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	policy, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !policy.IsActive {
		return leavepolicyerrors.ErrAlreadyInactive
	}
	before := mapToResponse(*policy)

	policy.IsActive = false
	if err := qtx.Update(ctx, policy); err != nil {
		s.logger.Error("deactivate leave policy failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourceLeavePolicy,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     mapToResponse(*policy),
	})

	s.logger.Info("leave policy deactivated", zap.String("policy_id", id))
	return nil
}

func daysAllowed(v *float64) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, leavepolicyerrors.ErrNegativeDays
	}
	d := decimal.NewFromFloat(*v).Round(2)
	if d.IsNegative() {
		return decimal.Zero, leavepolicyerrors.ErrNegativeDays
	}
	return d, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavepolicyerrors.ErrPolicyNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return leavepolicyerrors.ErrPolicyNameExists
	}
	return err
}

func mapToResponse(p LeavePolicy) LeavePolicyResponse {
	return LeavePolicyResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		LeaveType:   string(p.LeaveType),
		DaysAllowed: p.DaysAllowed.InexactFloat64(),
		Description: p.Description,
		IsActive:    p.IsActive,
	}
}
