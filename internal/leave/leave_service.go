package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/events"
	leaveerrors "github.com/mrpavithran/Hrms-Backend/internal/leave/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/leavebalance"
	"github.com/mrpavithran/Hrms-Backend/internal/leavepolicy"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, req ListLeaveRequestsRequest) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, req ListLeaveRequestsRequest) ([]byte, error)
	Calendar(ctx context.Context, req ListLeaveRequestsRequest) ([]byte, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	balanceRepo leavebalance.Repository
	policyRepo  leavepolicy.Repository
	outbox      kafka.OutboxRepository
	recorder    audit.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	balanceRepo leavebalance.Repository,
	policyRepo leavepolicy.Repository,
	outboxRepo kafka.OutboxRepository,
	recorder audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		balanceRepo: balanceRepo,
		policyRepo:  policyRepo,
		outbox:      outboxRepo,
		recorder:    recorder,
		logger:      l,
		now:         time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	s.logger.Debug("create leave requested",
		zap.String("actor_id", actor.UserID),
		zap.String("employee_id", employeeID),
		zap.String("policy_id", req.PolicyID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if !actor.Owns(employeeID) && !actor.Role.Can(domain.CapActForAnyEmployee) {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	policyUUID, err := uuid.Parse(req.PolicyID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidPolicyID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindEmployeeForUpdate(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		s.logger.Error("create leave employee lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !empl.EmploymentStatus.CanFileLeave() {
		s.logger.Warn("create leave rejected, employee not active",
			zap.String("employee_id", employeeID),
			zap.String("employment_status", string(empl.EmploymentStatus)),
		)
		return LeaveResponse{}, leaveerrors.ErrEmployeeInactive
	}

	policy, err := s.policyRepo.WithTx(tx).FindByID(ctx, req.PolicyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrPolicyNotFound
		}
		s.logger.Error("create leave policy lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !policy.IsActive {
		return LeaveResponse{}, leaveerrors.ErrPolicyInactive
	}

	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidRange
	}
	days := inclusiveDays(startDate, endDate)

	now := s.now().UTC()
	year := now.Year()
	balance, err := s.balanceRepo.WithTx(tx).FindForUpdate(ctx, employeeID, req.PolicyID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("create leave rejected, no balance",
				zap.String("employee_id", employeeID),
				zap.String("policy_id", req.PolicyID),
				zap.Int("year", year),
			)
			return LeaveResponse{}, leaveerrors.ErrNoBalance
		}
		s.logger.Error("create leave balance lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if balance.DaysRemaining.LessThan(decimal.NewFromInt(int64(days))) {
		s.logger.Warn("create leave rejected, insufficient balance",
			zap.String("employee_id", employeeID),
			zap.Int("days", days),
			zap.String("days_remaining", balance.DaysRemaining.String()),
		)
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	overlap, err := qtx.HasOverlap(ctx, employeeID, startDate, endDate, "")
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("employee_id", employeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrOverlappingRequest
	}

	attachments := req.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	l := &LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeUUID,
		PolicyID:    policyUUID,
		BalanceYear: year,
		StartDate:   startDate,
		EndDate:     endDate,
		Days:        days,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      StatusPending,
		Attachments: attachments,
		AppliedAt:   now,
	}
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestCreated, "", l, actor); err != nil {
		s.logger.Error("create leave outbox persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Employee = empl
	l.Policy = policy
	resp := mapToResponse(*l)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      actor.UserID,
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceLeaveRequest,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create leave success",
		zap.String("leave_id", resp.ID),
		zap.String("employee_id", employeeID),
		zap.Int("days", days),
	)
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, req ListLeaveRequestsRequest) ([]LeaveResponse, int64, error) {
	filter, err := s.listFilter(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	filter.Page, filter.PageSize = scope.Normalize(req.Page, req.PageSize)

	requests, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]LeaveResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapToResponse(l)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	visible, err := s.canSee(ctx, s.repo, actor, l.EmployeeID.String())
	if err != nil {
		return LeaveResponse{}, err
	}
	if !visible {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	return mapToResponse(*l), nil
}

// Update moves a request through the lifecycle. Ledger changes for
// approval and cancel-after-approval commit together with the status.
func (s *service) Update(ctx context.Context, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}
	s.logger.Debug("update leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.UserID),
		zap.String("to_status", req.Status),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	visible, err := s.canSee(ctx, qtx, actor, l.EmployeeID.String())
	if err != nil {
		return LeaveResponse{}, err
	}
	if !visible {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	// The target status is checked only once the request is known to exist.
	to, ok := ParseStatus(req.Status)
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatus
	}
	from := l.Status
	if !CanTransition(from, to) {
		s.logger.Warn("update leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", string(from)),
			zap.String("to_status", string(to)),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidTransition
	}
	if err := s.authorize(ctx, qtx, actor, l, to); err != nil {
		s.logger.Warn("update leave not authorized",
			zap.String("leave_id", id),
			zap.String("role", actor.Role.String()),
			zap.String("from_status", string(from)),
			zap.String("to_status", string(to)),
		)
		return LeaveResponse{}, err
	}

	before := mapToResponse(*l)
	now := s.now().UTC()

	switch to {
	case StatusApproved:
		approver, err := uuid.Parse(actor.EmployeeID)
		if err != nil {
			return LeaveResponse{}, leaveerrors.ErrApproverRequired
		}
		if err := s.consumeBalance(ctx, tx, l); err != nil {
			return LeaveResponse{}, err
		}
		l.ApprovedBy = &approver
		l.ApprovedAt = &now

	case StatusRejected:
		reason := strings.TrimSpace(req.RejectionReason)
		if reason == "" {
			return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
		}
		l.RejectionReason = &reason
		l.RejectedAt = &now

	case StatusCancelled:
		if from == StatusApproved {
			if err := s.releaseBalance(ctx, tx, l); err != nil {
				return LeaveResponse{}, err
			}
		}
		if reason := strings.TrimSpace(req.CancellationReason); reason != "" {
			l.CancellationReason = &reason
		}
		l.CancelledAt = &now

	case StatusPending:
		overlap, err := qtx.HasOverlap(ctx, l.EmployeeID.String(), l.StartDate, l.EndDate, id)
		if err != nil {
			s.logger.Error("resubmit leave overlap check failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if overlap {
			return LeaveResponse{}, leaveerrors.ErrOverlappingRequest
		}
		l.RejectionReason = nil
		l.RejectedAt = nil
	}
	l.Status = to

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("update leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestStatusChanged, from, l, actor); err != nil {
		s.logger.Error("update leave outbox persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	resp := mapToResponse(*l)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      actor.UserID,
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceLeaveRequest,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update leave success",
		zap.String("leave_id", id),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(to)),
	)
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return apperror.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	visible, err := s.canSee(ctx, qtx, actor, l.EmployeeID.String())
	if err != nil {
		return err
	}
	if !visible {
		return leaveerrors.ErrLeaveNotFound
	}
	if l.Status != StatusPending {
		s.logger.Warn("delete leave rejected",
			zap.String("leave_id", id),
			zap.String("status", string(l.Status)),
		)
		return leaveerrors.ErrInvalidState
	}
	if !actor.Owns(l.EmployeeID.String()) && !actor.Role.Can(domain.CapActForAnyEmployee) {
		return leaveerrors.ErrForbidden
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete leave failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestDeleted, l.Status, l, actor); err != nil {
		s.logger.Error("delete leave outbox persist failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      actor.UserID,
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourceLeaveRequest,
		ResourceID:   id,
		OldValue:     mapToResponse(*l),
	})

	s.logger.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

func (s *service) consumeBalance(ctx context.Context, tx *sql.Tx, l *LeaveRequest) error {
	bq := s.balanceRepo.WithTx(tx)
	balance, err := bq.FindForUpdate(ctx, l.EmployeeID.String(), l.PolicyID.String(), l.BalanceYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrNoBalance
		}
		s.logger.Error("approve leave balance lookup failed", zap.Error(err))
		return err
	}
	if !balance.Consume(decimal.NewFromInt(int64(l.Days))) {
		s.logger.Warn("approve leave rejected, insufficient balance",
			zap.String("leave_id", l.ID.String()),
			zap.Int("days", l.Days),
			zap.String("days_remaining", balance.DaysRemaining.String()),
		)
		return leaveerrors.ErrInsufficientBalance
	}
	if err := bq.Update(ctx, balance); err != nil {
		s.logger.Error("approve leave balance persist failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) releaseBalance(ctx context.Context, tx *sql.Tx, l *LeaveRequest) error {
	policy, err := s.policyRepo.WithTx(tx).FindByID(ctx, l.PolicyID.String())
	if err != nil {
		s.logger.Error("cancel leave policy lookup failed", zap.Error(err))
		return err
	}

	bq := s.balanceRepo.WithTx(tx)
	balance, err := bq.FindForUpdate(ctx, l.EmployeeID.String(), l.PolicyID.String(), l.BalanceYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrNoBalance
		}
		s.logger.Error("cancel leave balance lookup failed", zap.Error(err))
		return err
	}
	balance.Release(decimal.NewFromInt(int64(l.Days)), policy.DaysAllowed)
	if err := bq.Update(ctx, balance); err != nil {
		s.logger.Error("cancel leave balance persist failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) authorize(ctx context.Context, repo Repository, actor domain.Actor, l *LeaveRequest, to Status) error {
	a := transitionAuthority(l.Status, to)
	owns := actor.Owns(l.EmployeeID.String())

	if a.owner && owns {
		return nil
	}
	if a.notSelf && owns {
		return leaveerrors.ErrForbidden
	}
	if !actor.Role.Can(a.capability) {
		return leaveerrors.ErrForbidden
	}
	if a.needsReportLine && !actor.Role.Can(domain.CapActForAnyEmployee) {
		reports, err := repo.IsDirectReport(ctx, actor.EmployeeID, l.EmployeeID.String())
		if err != nil {
			return err
		}
		if !reports {
			return leaveerrors.ErrForbidden
		}
	}
	return nil
}

func (s *service) canSee(ctx context.Context, repo Repository, actor domain.Actor, employeeID string) (bool, error) {
	v := actor.Visibility()
	if v.All || actor.Owns(employeeID) {
		return true, nil
	}
	if !v.IncludeReports {
		return false, nil
	}
	return repo.IsDirectReport(ctx, actor.EmployeeID, employeeID)
}

func (s *service) listFilter(ctx context.Context, req ListLeaveRequestsRequest) (ListFilter, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return ListFilter{}, apperror.ErrUnauthorized
	}

	filter := ListFilter{
		EmployeeID: req.EmployeeID,
		PolicyID:   req.PolicyID,
		Visibility: actor.Visibility(),
	}
	if req.Status != "" {
		st, ok := ParseStatus(req.Status)
		if !ok {
			return ListFilter{}, leaveerrors.ErrInvalidStatus
		}
		filter.Status = st
	}
	if req.From != "" {
		from, err := parseDate(req.From)
		if err != nil {
			return ListFilter{}, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := parseDate(req.To)
		if err != nil {
			return ListFilter{}, err
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return ListFilter{}, leaveerrors.ErrInvalidRange
	}
	return filter, nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, eventType string, from Status, l *LeaveRequest, actor domain.Actor) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	payload := events.LeaveRequestEvent{
		EventType:      eventType,
		RequestID:      rid,
		LeaveRequestID: l.ID.String(),
		EmployeeID:     l.EmployeeID.String(),
		PolicyID:       l.PolicyID.String(),
		FromStatus:     string(from),
		ToStatus:       string(l.Status),
		Days:           l.Days,
		StartDate:      l.StartDate.Format(dateLayout),
		EndDate:        l.EndDate.Format(dateLayout),
		ActorID:        actor.UserID,
		OccurredAt:     s.now().UTC(),
	}

	event, err := kafka.NewEvent("leave_request", l.ID.String(), eventType, events.LeaveLifecycleTopic, rid, payload)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

// inclusiveDays counts calendar days with both ends included.
func inclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func parseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(v), time.UTC)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return err
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:                 l.ID.String(),
		EmployeeID:         l.EmployeeID.String(),
		PolicyID:           l.PolicyID.String(),
		BalanceYear:        l.BalanceYear,
		StartDate:          l.StartDate.Format(dateLayout),
		EndDate:            l.EndDate.Format(dateLayout),
		Days:               l.Days,
		Reason:             l.Reason,
		Status:             string(l.Status),
		Attachments:        l.Attachments,
		AppliedAt:          l.AppliedAt.UTC().Format(time.RFC3339),
		ApprovedAt:         formatTime(l.ApprovedAt),
		RejectionReason:    l.RejectionReason,
		RejectedAt:         formatTime(l.RejectedAt),
		CancellationReason: l.CancellationReason,
		CancelledAt:        formatTime(l.CancelledAt),
	}
	if resp.Attachments == nil {
		resp.Attachments = []string{}
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName()
	}
	if l.Policy != nil {
		resp.PolicyName = l.Policy.Name
		resp.LeaveType = string(l.Policy.LeaveType)
	}
	return resp
}
