package leavebalance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	leavebalanceerrors "github.com/mrpavithran/Hrms-Backend/internal/leavebalance/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/leavepolicy"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateLeaveBalanceRequest) (LeaveBalanceResponse, error)
	GetAll(ctx context.Context, req ListLeaveBalancesRequest) ([]LeaveBalanceResponse, int64, error)
	GetByID(ctx context.Context, id string) (LeaveBalanceResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveBalanceRequest) (LeaveBalanceResponse, error)
	Delete(ctx context.Context, id string) error
	Allocate(ctx context.Context, employeeID string, year int) ([]LeaveBalanceResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	policyRepo leavepolicy.Repository
	recorder   audit.Recorder
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	policyRepo leavepolicy.Repository,
	recorder audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{db: db, repo: repo, policyRepo: policyRepo, recorder: recorder, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateLeaveBalanceRequest) (LeaveBalanceResponse, error) {
	s.logger.Debug("create leave balance requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("policy_id", req.PolicyID),
		zap.Int("year", req.Year),
	)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrEmployeeNotFound
	}
	policyID, err := uuid.Parse(req.PolicyID)
	if err != nil {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrPolicyNotFound
	}
	used := decimal.Zero
	if req.DaysUsed != nil {
		used = decimal.NewFromFloat(*req.DaysUsed).Round(2)
	}
	if used.IsNegative() {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrNegativeDays
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave balance begin tx failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("create leave balance employee check failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}
	if !exists {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrEmployeeNotFound
	}

	allowed, err := s.activeAllowance(ctx, tx, req.PolicyID)
	if err != nil {
		return LeaveBalanceResponse{}, err
	}
	if used.GreaterThan(allowed) {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrUsedExceedsAllowed
	}

	b := &LeaveBalance{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		PolicyID:      policyID,
		Year:          req.Year,
		DaysUsed:      used,
		DaysRemaining: allowed.Sub(used),
	}
	if err := qtx.Create(ctx, b); err != nil {
		s.logger.Error("create leave balance persist failed", zap.Error(err))
		return LeaveBalanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave balance commit failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}

	resp := mapToResponse(*b)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceLeaveBalance,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create leave balance success", zap.String("balance_id", resp.ID))
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, req ListLeaveBalancesRequest) ([]LeaveBalanceResponse, int64, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return nil, 0, apperror.ErrUnauthorized
	}

	page, pageSize := scope.Normalize(req.Page, req.PageSize)
	balances, total, err := s.repo.FindAll(ctx, ListFilter{
		EmployeeID: req.EmployeeID,
		PolicyID:   req.PolicyID,
		Year:       req.Year,
		Visibility: actor.Visibility(),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		s.logger.Error("list leave balances failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]LeaveBalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveBalanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrInvalidBalanceID
	}
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return LeaveBalanceResponse{}, apperror.ErrUnauthorized
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveBalanceResponse{}, mapRepositoryError(err)
	}

	visible, err := s.canSee(ctx, actor, b.EmployeeID.String())
	if err != nil {
		return LeaveBalanceResponse{}, err
	}
	if !visible {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrBalanceNotFound
	}
	return mapToResponse(*b), nil
}

// Update is an administrative correction of used days; remaining follows.
func (s *service) Update(ctx context.Context, id string, req UpdateLeaveBalanceRequest) (LeaveBalanceResponse, error) {
	s.logger.Debug("update leave balance requested", zap.String("balance_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrInvalidBalanceID
	}
	if req.DaysUsed == nil || *req.DaysUsed < 0 {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrNegativeDays
	}
	used := decimal.NewFromFloat(*req.DaysUsed).Round(2)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave balance begin tx failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveBalanceResponse{}, mapRepositoryError(err)
	}
	before := mapToResponse(*b)

	policy, err := s.policyRepo.WithTx(tx).FindByID(ctx, b.PolicyID.String())
	if err != nil {
		s.logger.Error("update leave balance policy lookup failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}
	if used.GreaterThan(policy.DaysAllowed) {
		return LeaveBalanceResponse{}, leavebalanceerrors.ErrUsedExceedsAllowed
	}

	b.DaysUsed = used
	b.DaysRemaining = policy.DaysAllowed.Sub(used)
	if err := qtx.Update(ctx, b); err != nil {
		s.logger.Error("update leave balance persist failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave balance commit failed", zap.Error(err))
		return LeaveBalanceResponse{}, err
	}

	resp := mapToResponse(*b)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceLeaveBalance,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update leave balance success",
		zap.String("balance_id", id),
		zap.String("days_used", b.DaysUsed.String()),
		zap.String("days_remaining", b.DaysRemaining.String()),
	)
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leavebalanceerrors.ErrInvalidBalanceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	inUse, err := qtx.HasActiveRequests(ctx, b.EmployeeID.String(), b.PolicyID.String(), b.Year)
	if err != nil {
		s.logger.Error("delete leave balance reference check failed", zap.Error(err))
		return err
	}
	if inUse {
		s.logger.Warn("delete leave balance rejected, requests outstanding", zap.String("balance_id", id))
		return leavebalanceerrors.ErrBalanceInUse
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete leave balance failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourceLeaveBalance,
		ResourceID:   id,
		OldValue:     mapToResponse(*b),
	})

	s.logger.Info("leave balance deleted", zap.String("balance_id", id))
	return nil
}

// Allocate opens a zero-used balance for every active policy the employee
// has no row for in year. Running it twice creates nothing the second time.
func (s *service) Allocate(ctx context.Context, employeeID string, year int) ([]LeaveBalanceResponse, error) {
	s.logger.Debug("allocate leave balances requested",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
	)

	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, leavebalanceerrors.ErrEmployeeNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("allocate leave balances begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, leavebalanceerrors.ErrEmployeeNotFound
	}

	policies, err := s.policyRepo.WithTx(tx).FindActive(ctx)
	if err != nil {
		s.logger.Error("allocate leave balances policy lookup failed", zap.Error(err))
		return nil, err
	}

	created := make([]LeaveBalanceResponse, 0, len(policies))
	for _, p := range policies {
		b := &LeaveBalance{
			ID:            uuid.New(),
			EmployeeID:    empUUID,
			PolicyID:      p.ID,
			Year:          year,
			DaysUsed:      decimal.Zero,
			DaysRemaining: p.DaysAllowed,
		}
		ok, err := qtx.CreateIfMissing(ctx, b)
		if err != nil {
			s.logger.Error("allocate leave balance persist failed",
				zap.String("policy_id", p.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		if ok {
			created = append(created, mapToResponse(*b))
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("allocate leave balances commit failed", zap.Error(err))
		return nil, err
	}

	for _, resp := range created {
		audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
			Action:       audit.ActionCreate,
			ResourceType: domain.ResourceLeaveBalance,
			ResourceID:   resp.ID,
			NewValue:     resp,
		})
	}

	s.logger.Info("allocate leave balances success",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("created", len(created)),
	)
	return created, nil
}

func (s *service) activeAllowance(ctx context.Context, tx *sql.Tx, policyID string) (decimal.Decimal, error) {
	policy, err := s.policyRepo.WithTx(tx).FindByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, leavebalanceerrors.ErrPolicyNotFound
		}
		s.logger.Error("leave policy lookup failed", zap.Error(err))
		return decimal.Zero, err
	}
	if !policy.IsActive {
		return decimal.Zero, leavebalanceerrors.ErrPolicyNotFound
	}
	return policy.DaysAllowed, nil
}

func (s *service) canSee(ctx context.Context, actor domain.Actor, employeeID string) (bool, error) {
	v := actor.Visibility()
	if v.All || actor.Owns(employeeID) {
		return true, nil
	}
	if !v.IncludeReports {
		return false, nil
	}
	return s.repo.IsDirectReport(ctx, actor.EmployeeID, employeeID)
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavebalanceerrors.ErrBalanceNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return leavebalanceerrors.ErrBalanceExists
	}
	return err
}

func mapToResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		ID:            b.ID.String(),
		EmployeeID:    b.EmployeeID.String(),
		PolicyID:      b.PolicyID.String(),
		Year:          b.Year,
		DaysUsed:      b.DaysUsed.InexactFloat64(),
		DaysRemaining: b.DaysRemaining.InexactFloat64(),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
}
