package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	attendanceerrors "github.com/mrpavithran/Hrms-Backend/internal/attendance/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	ClockIn(ctx context.Context, req ClockRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, req ClockRequest) (AttendanceResponse, error)
	Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context, req ListAttendancesRequest) ([]AttendanceResponse, int64, error)
	GetByID(ctx context.Context, id string) (AttendanceResponse, error)
	Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
}

// Clock places a self-service clock-in on a local calendar day. A clock-in
// more than LateAfter past local midnight is LATE.
type Clock struct {
	LateAfter time.Duration
	Location  *time.Location
	Now       func() time.Time
}

func (c Clock) now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	if c.Now == nil {
		return time.Now().In(loc)
	}
	return c.Now().In(loc)
}

type service struct {
	db       *sql.DB
	repo     Repository
	clock    Clock
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, clock Clock, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, clock: clock, recorder: recorder, logger: l}
}

func (s *service) ClockIn(ctx context.Context, req ClockRequest) (AttendanceResponse, error) {
	employeeID, err := s.selfEmployee(ctx)
	if err != nil {
		return AttendanceResponse{}, err
	}
	s.logger.Debug("clock in requested", zap.String("employee_id", employeeID))

	now := s.clock.now()
	day := calendarDay(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("clock in begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	_, err = qtx.FindByEmployeeAndDate(ctx, employeeID, day)
	switch {
	case err == nil:
		s.logger.Warn("clock in rejected, day already recorded", zap.String("employee_id", employeeID))
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("clock in lookup failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	status := StatusPresent
	if now.Sub(startOfDay(now)) > s.clock.LateAfter {
		status = StatusLate
	}
	clockIn := now.UTC()
	a := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     uuid.MustParse(employeeID),
		AttendanceDate: day,
		ClockIn:        &clockIn,
		Status:         status,
		Source:         SourceSelf,
		Notes:          strings.TrimSpace(req.Notes),
	}
	if err := qtx.Create(ctx, a); err != nil {
		if err = mapRepositoryError(err); errors.Is(err, attendanceerrors.ErrAttendanceExists) {
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
		}
		s.logger.Error("clock in persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("clock in commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	resp := mapToResponse(*a)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceAttendance,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("clock in success",
		zap.String("attendance_id", resp.ID),
		zap.String("status", resp.Status),
	)
	return resp, nil
}

func (s *service) ClockOut(ctx context.Context, req ClockRequest) (AttendanceResponse, error) {
	employeeID, err := s.selfEmployee(ctx)
	if err != nil {
		return AttendanceResponse{}, err
	}
	s.logger.Debug("clock out requested", zap.String("employee_id", employeeID))

	now := s.clock.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("clock out begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a, err := qtx.FindByEmployeeAndDate(ctx, employeeID, calendarDay(now))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("clock out rejected, no clock in", zap.String("employee_id", employeeID))
		return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
	}
	if err != nil {
		s.logger.Error("clock out lookup failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if a.ClockIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
	}
	if a.ClockOut != nil {
		s.logger.Warn("clock out rejected, already clocked out", zap.String("attendance_id", a.ID.String()))
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedOut
	}
	before := mapToResponse(*a)

	clockOut := now.UTC()
	a.ClockOut = &clockOut
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		a.Notes = notes
	}
	if err := qtx.Update(ctx, a); err != nil {
		s.logger.Error("clock out persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("clock out commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	resp := mapToResponse(*a)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceAttendance,
		ResourceID:   resp.ID,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("clock out success",
		zap.String("attendance_id", resp.ID),
		zap.Int("worked_minutes", resp.WorkedMinutes),
	)
	return resp, nil
}

// Create records a day on behalf of an employee.
func (s *service) Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error) {
	s.logger.Debug("create attendance requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
	)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
	}
	day, err := parseDate(req.Date)
	if err != nil {
		return AttendanceResponse{}, err
	}
	status := Status(req.Status)
	if !status.Valid() {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidStatus
	}
	clockIn, err := parseClock(req.ClockIn)
	if err != nil {
		return AttendanceResponse{}, err
	}
	clockOut, err := parseClock(req.ClockOut)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if err := checkClockRange(clockIn, clockOut); err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create attendance begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("create attendance employee check failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if !exists {
		s.logger.Warn("create attendance rejected, unknown employee", zap.String("employee_id", req.EmployeeID))
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	a := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		AttendanceDate: day,
		ClockIn:        clockIn,
		ClockOut:       clockOut,
		Status:         status,
		Source:         SourceManual,
		Notes:          strings.TrimSpace(req.Notes),
	}
	if err := qtx.Create(ctx, a); err != nil {
		s.logger.Error("create attendance persist failed", zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create attendance commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	resp := mapToResponse(*a)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceAttendance,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create attendance success", zap.String("attendance_id", resp.ID))
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, req ListAttendancesRequest) ([]AttendanceResponse, int64, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return nil, 0, apperror.ErrUnauthorized
	}

	filter := ListFilter{
		EmployeeID: req.EmployeeID,
		Visibility: actor.Visibility(),
	}
	if req.From != "" {
		from, err := parseDate(req.From)
		if err != nil {
			return nil, 0, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := parseDate(req.To)
		if err != nil {
			return nil, 0, err
		}
		filter.To = &to
	}
	if req.Status != "" {
		filter.Status = Status(req.Status)
		if !filter.Status.Valid() {
			return nil, 0, attendanceerrors.ErrInvalidStatus
		}
	}
	filter.Page, filter.PageSize = scope.Normalize(req.Page, req.PageSize)

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list attendances failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]AttendanceResponse, len(rows))
	for i, a := range rows {
		resp[i] = mapToResponse(a)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (AttendanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return AttendanceResponse{}, apperror.ErrUnauthorized
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	visible, err := s.canSee(ctx, actor, a.EmployeeID.String())
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !visible {
		return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
	}
	return mapToResponse(*a), nil
}

// Update corrects a recorded day. A nil clock field keeps the stored time,
// an empty one clears it.
func (s *service) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	s.logger.Debug("update attendance requested", zap.String("attendance_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}
	status := Status(req.Status)
	if !status.Valid() {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidStatus
	}
	clockIn, err := parseClock(req.ClockIn)
	if err != nil {
		return AttendanceResponse{}, err
	}
	clockOut, err := parseClock(req.ClockOut)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update attendance begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	before := mapToResponse(*a)

	if req.ClockIn != nil {
		a.ClockIn = clockIn
	}
	if req.ClockOut != nil {
		a.ClockOut = clockOut
	}
	if err := checkClockRange(a.ClockIn, a.ClockOut); err != nil {
		return AttendanceResponse{}, err
	}
	a.Status = status
	a.Notes = strings.TrimSpace(req.Notes)

	if err := qtx.Update(ctx, a); err != nil {
		s.logger.Error("update attendance persist failed", zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update attendance commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	resp := mapToResponse(*a)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceAttendance,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update attendance success", zap.String("attendance_id", id))
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendanceerrors.ErrInvalidAttendanceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete attendance failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourceAttendance,
		ResourceID:   id,
		OldValue:     mapToResponse(*a),
	})

	s.logger.Info("attendance deleted", zap.String("attendance_id", id))
	return nil
}

func (s *service) selfEmployee(ctx context.Context) (string, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return "", apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(actor.EmployeeID); err != nil {
		s.logger.Warn("clock rejected, account has no employee", zap.String("user_id", actor.UserID))
		return "", attendanceerrors.ErrNoEmployeeRecord
	}
	return actor.EmployeeID, nil
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

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDay keeps the local date and drops the zone, matching a DATE column.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidDate
	}
	return t, nil
}

func parseClock(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidClockTime
	}
	t = t.UTC()
	return &t, nil
}

func checkClockRange(in, out *time.Time) error {
	if out == nil {
		return nil
	}
	if in == nil || out.Before(*in) {
		return attendanceerrors.ErrInvalidClockRange
	}
	return nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return attendanceerrors.ErrAttendanceExists
		case "23503":
			return attendanceerrors.ErrEmployeeNotFound
		}
	}
	return err
}

func formatClock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func mapToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format(dateLayout),
		ClockIn:        formatClock(a.ClockIn),
		ClockOut:       formatClock(a.ClockOut),
		WorkedMinutes:  a.WorkedMinutes(),
		Status:         string(a.Status),
		Source:         string(a.Source),
		Notes:          a.Notes,
	}
}
