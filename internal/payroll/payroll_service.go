package payroll

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	payrollerrors "github.com/mrpavithran/Hrms-Backend/internal/payroll/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreatePayrollRequest) (PayrollResponse, error)
	GetAll(ctx context.Context, req ListPayrollsRequest) ([]PayrollResponse, int64, error)
	GetByID(ctx context.Context, id string) (PayrollResponse, error)
	Update(ctx context.Context, id string, req UpdatePayrollRequest) (PayrollResponse, error)
	Delete(ctx context.Context, id string) error
	Transition(ctx context.Context, id string, to Status) (PayrollResponse, error)
	Payslip(ctx context.Context, id string) ([]byte, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{db: db, repo: repo, recorder: recorder, logger: l}
}

// amounts is the validated money side of a create or update.
type amounts struct {
	start, end                      time.Time
	base, allowance, deduction, net decimal.Decimal
}

func parseAmounts(start, end string, base *float64, allowance, deduction float64) (amounts, error) {
	var a amounts
	var err error
	if a.start, err = parseDate(start); err != nil {
		return a, err
	}
	if a.end, err = parseDate(end); err != nil {
		return a, err
	}
	if a.start.After(a.end) {
		return a, payrollerrors.ErrInvalidPeriod
	}
	if base == nil {
		return a, payrollerrors.ErrNegativeAmount
	}

	a.base = decimal.NewFromFloat(*base).Round(2)
	a.allowance = decimal.NewFromFloat(allowance).Round(2)
	a.deduction = decimal.NewFromFloat(deduction).Round(2)
	if a.base.IsNegative() || a.allowance.IsNegative() || a.deduction.IsNegative() {
		return a, payrollerrors.ErrNegativeAmount
	}
	a.net = a.base.Add(a.allowance).Sub(a.deduction)
	if a.net.IsNegative() {
		return a, payrollerrors.ErrNegativeNetSalary
	}
	return a, nil
}

func (s *service) Create(ctx context.Context, req CreatePayrollRequest) (PayrollResponse, error) {
	s.logger.Debug("create payroll requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("period_start", req.PeriodStart),
		zap.String("period_end", req.PeriodEnd),
	)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrEmployeeNotFound
	}
	amt, err := parseAmounts(req.PeriodStart, req.PeriodEnd, req.BaseSalary, req.Allowance, req.Deduction)
	if err != nil {
		return PayrollResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create payroll begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("create payroll employee check failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	if !exists {
		s.logger.Warn("create payroll rejected, unknown employee", zap.String("employee_id", req.EmployeeID))
		return PayrollResponse{}, payrollerrors.ErrEmployeeNotFound
	}

	if err := s.checkOverlap(ctx, qtx, req.EmployeeID, amt, ""); err != nil {
		return PayrollResponse{}, err
	}

	p := &Payroll{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		PeriodStart: amt.start,
		PeriodEnd:   amt.end,
		BaseSalary:  amt.base,
		Allowance:   amt.allowance,
		Deduction:   amt.deduction,
		NetSalary:   amt.net,
		Status:      StatusDraft,
	}
	if actor, ok := domain.ActorFrom(ctx); ok {
		if userID, err := uuid.Parse(actor.UserID); err == nil {
			p.CreatedBy = &userID
		}
	}

	if err := qtx.Create(ctx, p); err != nil {
		s.logger.Error("create payroll persist failed", zap.Error(err))
		return PayrollResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create payroll commit failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	resp := mapToResponse(*p)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourcePayroll,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create payroll success",
		zap.String("payroll_id", resp.ID),
		zap.String("net_salary", amt.net.StringFixed(2)),
	)
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, req ListPayrollsRequest) ([]PayrollResponse, int64, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return nil, 0, apperror.ErrUnauthorized
	}
	visibility := payrollVisibility(actor)
	if !visibility.All && visibility.EmployeeID == "" {
		return []PayrollResponse{}, 0, nil
	}

	filter := ListFilter{
		EmployeeID: req.EmployeeID,
		Status:     Status(req.Status),
		Year:       req.Year,
		Visibility: visibility,
	}
	filter.Page, filter.PageSize = scope.Normalize(req.Page, req.PageSize)

	payrolls, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list payrolls failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]PayrollResponse, len(payrolls))
	for i, p := range payrolls {
		resp[i] = mapToResponse(p)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (PayrollResponse, error) {
	p, err := s.visible(ctx, id)
	if err != nil {
		return PayrollResponse{}, err
	}
	return mapToResponse(*p), nil
}

// Update edits a DRAFT payroll. The employee is fixed once created.
func (s *service) Update(ctx context.Context, id string, req UpdatePayrollRequest) (PayrollResponse, error) {
	s.logger.Debug("update payroll requested", zap.String("payroll_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidPayrollID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update payroll begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	if p.Status != StatusDraft {
		s.logger.Warn("update payroll rejected, not draft",
			zap.String("payroll_id", id),
			zap.String("status", string(p.Status)),
		)
		return PayrollResponse{}, payrollerrors.ErrNotDraft
	}

	amt, err := parseAmounts(req.PeriodStart, req.PeriodEnd, req.BaseSalary, req.Allowance, req.Deduction)
	if err != nil {
		return PayrollResponse{}, err
	}
	if err := s.checkOverlap(ctx, qtx, p.EmployeeID.String(), amt, id); err != nil {
		return PayrollResponse{}, err
	}
	before := mapToResponse(*p)

	p.PeriodStart = amt.start
	p.PeriodEnd = amt.end
	p.BaseSalary = amt.base
	p.Allowance = amt.allowance
	p.Deduction = amt.deduction
	p.NetSalary = amt.net

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("update payroll persist failed", zap.Error(err))
		return PayrollResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update payroll commit failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	resp := mapToResponse(*p)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourcePayroll,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update payroll success", zap.String("payroll_id", id))
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return payrollerrors.ErrInvalidPayrollID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if p.Status != StatusDraft {
		s.logger.Warn("delete payroll rejected, not draft",
			zap.String("payroll_id", id),
			zap.String("status", string(p.Status)),
		)
		return payrollerrors.ErrNotDraft
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete payroll failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourcePayroll,
		ResourceID:   id,
		OldValue:     mapToResponse(*p),
	})

	s.logger.Info("payroll deleted", zap.String("payroll_id", id))
	return nil
}

func (s *service) Transition(ctx context.Context, id string, to Status) (PayrollResponse, error) {
	s.logger.Debug("payroll transition requested",
		zap.String("payroll_id", id),
		zap.String("to", string(to)),
	)
	if _, err := uuid.Parse(id); err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidPayrollID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("payroll transition begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	if !p.Status.CanTransition(to) {
		s.logger.Warn("payroll transition rejected",
			zap.String("payroll_id", id),
			zap.String("from", string(p.Status)),
			zap.String("to", string(to)),
		)
		return PayrollResponse{}, payrollerrors.ErrInvalidTransition
	}
	before := mapToResponse(*p)

	now := time.Now().UTC()
	p.Status = to
	switch to {
	case StatusProcessed:
		p.ProcessedAt = &now
	case StatusPaid:
		p.PaidAt = &now
	case StatusCancelled:
		p.CancelledAt = &now
	}

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("payroll transition persist failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("payroll transition commit failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	resp := mapToResponse(*p)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourcePayroll,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("payroll transitioned",
		zap.String("payroll_id", id),
		zap.String("status", resp.Status),
	)
	return resp, nil
}

// visible loads a payroll the caller may read. Anything else is not found.
func (s *service) visible(ctx context.Context, id string) (*Payroll, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrInvalidPayrollID
	}
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !payrollVisibility(actor).All && !actor.Owns(p.EmployeeID.String()) {
		return nil, payrollerrors.ErrPayrollNotFound
	}
	return p, nil
}

func (s *service) checkOverlap(ctx context.Context, qtx Repository, employeeID string, amt amounts, excludeID string) error {
	overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID, amt.start, amt.end, excludeID)
	if err != nil {
		s.logger.Error("payroll overlap check failed", zap.Error(err))
		return err
	}
	if overlap {
		s.logger.Warn("payroll rejected, overlapping period",
			zap.String("employee_id", employeeID),
			zap.Time("period_start", amt.start),
			zap.Time("period_end", amt.end),
		)
		return payrollerrors.ErrPayrollOverlap
	}
	return nil
}

// payrollVisibility never widens to direct reports; pay is private to the
// employee and to roles acting for any employee.
func payrollVisibility(actor domain.Actor) domain.Visibility {
	if actor.Role.Can(domain.CapActForAnyEmployee) {
		return domain.Visibility{All: true}
	}
	return domain.Visibility{EmployeeID: actor.EmployeeID}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidDate
	}
	return t, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrPayrollNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return payrollerrors.ErrEmployeeNotFound
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

func mapToResponse(p Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:          p.ID.String(),
		EmployeeID:  p.EmployeeID.String(),
		PeriodStart: p.PeriodStart.Format(dateLayout),
		PeriodEnd:   p.PeriodEnd.Format(dateLayout),
		BaseSalary:  p.BaseSalary.InexactFloat64(),
		Allowance:   p.Allowance.InexactFloat64(),
		Deduction:   p.Deduction.InexactFloat64(),
		NetSalary:   p.NetSalary.InexactFloat64(),
		Status:      string(p.Status),
		ProcessedAt: formatTime(p.ProcessedAt),
		PaidAt:      formatTime(p.PaidAt),
		CancelledAt: formatTime(p.CancelledAt),
	}
	if p.Employee != nil {
		resp.EmployeeName = p.Employee.FullName()
	}
	return resp
}
