package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	employeeerrors "github.com/mrpavithran/Hrms-Backend/internal/employee/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/events"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/counter"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeOptionsKey = "employees:options"
	optionsCacheTTL    = time.Hour
	dateLayout         = "2006-01-02"
)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, req ListEmployeesRequest) ([]EmployeeResponse, int64, error)
	GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	counter  counter.Repository
	outbox   kafka.OutboxRepository
	rdb      *redis.Client
	recorder audit.Recorder
	sf       *singleflight.Group
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	recorder audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		counter:  counterRepo,
		outbox:   outboxRepo,
		rdb:      rdb,
		recorder: recorder,
		sf:       &singleflight.Group{},
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
		zap.String("department_id", req.DepartmentID),
	)

	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		s.logger.Warn("create employee invalid hire_date", zap.String("hire_date", req.HireDate))
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}

	status := StatusActive
	if req.EmploymentStatus != "" {
		status = EmploymentStatus(req.EmploymentStatus)
	}
	if !status.Valid() || status == StatusTerminated {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmploymentStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl := &Employee{
		ID:               uuid.New(),
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            req.Phone,
		PositionID:       uuidPtr(req.PositionID),
		DepartmentID:     uuidPtr(req.DepartmentID),
		ManagerID:        uuidPtr(req.ManagerID),
		EmploymentStatus: status,
		HireDate:         hireDate,
	}

	if err := s.checkReferences(ctx, qtx, empl); err != nil {
		return EmployeeResponse{}, err
	}

	nextVal, err := s.counter.WithTx(tx).GetNextValue(ctx, counter.EmployeeNumber)
	if err != nil {
		s.logger.Error("create employee generate number failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	empl.EmployeeNumber = fmt.Sprintf("EMP-%06d", nextVal)

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueLifecycleEvent(ctx, tx, events.EmployeeCreated, empl); err != nil {
		s.logger.Error("create employee outbox persist failed",
			zap.String("employee_id", empl.ID.String()),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)

	resp := mapToResponse(*empl)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceEmployee,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", resp.ID),
		zap.String("employee_number", resp.EmployeeNumber),
	)
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, req ListEmployeesRequest) ([]EmployeeResponse, int64, error) {
	page, pageSize := scope.Normalize(req.Page, req.PageSize)
	s.logger.Debug("get all employees requested",
		zap.String("q", req.Search),
		zap.String("department_id", req.DepartmentID),
		zap.Int("page", page),
	)

	empls, total, err := s.repo.FindAll(ctx, ListFilter{
		Search:           req.Search,
		DepartmentID:     req.DepartmentID,
		EmploymentStatus: strings.ToUpper(req.EmploymentStatus),
		SortBy:           req.SortBy,
		SortDir:          req.SortDir,
		Page:             page,
		PageSize:         pageSize,
	})
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, 0, mapRepositoryError(err)
	}

	return mapToListResponse(empls), total, nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// collapse concurrent misses into one query
	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOptionResponse, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOptionResponse{
				ID:             e.ID.String(),
				EmployeeNumber: e.EmployeeNumber,
				FullName:       e.FullName(),
			}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, optionsCacheTTL).Err(); err != nil {
					s.logger.Warn("cache employee options failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("get employee options failed", zap.Error(err))
		return nil, err
	}

	return v.([]EmployeeOptionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		s.logger.Warn("update employee invalid hire_date", zap.String("hire_date", req.HireDate))
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}
	status := EmploymentStatus(req.EmploymentStatus)
	if !status.Valid() {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmploymentStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("update employee fetch existing failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	before := mapToResponse(*empl)
	wasTerminated := empl.EmploymentStatus == StatusTerminated

	empl.FirstName = strings.TrimSpace(req.FirstName)
	empl.LastName = strings.TrimSpace(req.LastName)
	empl.Email = strings.ToLower(strings.TrimSpace(req.Email))
	empl.Phone = req.Phone
	empl.PositionID = uuidPtr(req.PositionID)
	empl.DepartmentID = uuidPtr(req.DepartmentID)
	empl.ManagerID = uuidPtr(req.ManagerID)
	empl.HireDate = hireDate
	empl.EmploymentStatus = status
	switch {
	case status == StatusTerminated && empl.TerminationDate == nil:
		today := s.today()
		empl.TerminationDate = &today
	case status != StatusTerminated:
		empl.TerminationDate = nil
	}

	if err := s.checkReferences(ctx, qtx, empl); err != nil {
		return EmployeeResponse{}, err
	}

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if !wasTerminated && status == StatusTerminated {
		if err := s.enqueueLifecycleEvent(ctx, tx, events.EmployeeTerminated, empl); err != nil {
			s.logger.Error("update employee outbox persist failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)

	resp := mapToResponse(*empl)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceEmployee,
		ResourceID:   resp.ID,
		OldValue:     before,
		NewValue:     resp,
	})

	s.logger.Info("update employee success", zap.String("employee_id", id))
	return resp, nil
}

// Delete terminates the employee; the row is kept because leave history
// and balances reference it.
func (s *service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete employee requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("delete employee fetch failed", zap.String("employee_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if empl.EmploymentStatus == StatusTerminated {
		return employeeerrors.ErrAlreadyTerminated
	}
	before := mapToResponse(*empl)

	today := s.today()
	empl.EmploymentStatus = StatusTerminated
	empl.TerminationDate = &today

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.enqueueLifecycleEvent(ctx, tx, events.EmployeeTerminated, empl); err != nil {
		s.logger.Error("delete employee outbox persist failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	s.invalidateOptions(ctx)

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: domain.ResourceEmployee,
		ResourceID:   id,
		OldValue:     before,
		NewValue:     mapToResponse(*empl),
	})

	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) checkReferences(ctx context.Context, qtx Repository, empl *Employee) error {
	if empl.DepartmentID != nil {
		ok, err := qtx.DepartmentExists(ctx, empl.DepartmentID.String())
		if err != nil {
			s.logger.Error("check department failed", zap.Error(err))
			return err
		}
		if !ok {
			s.logger.Warn("employee department not found", zap.String("department_id", empl.DepartmentID.String()))
			return employeeerrors.ErrDepartmentNotFound
		}
	}

	if empl.PositionID != nil {
		ok, err := qtx.PositionExists(ctx, empl.PositionID.String())
		if err != nil {
			s.logger.Error("check position failed", zap.Error(err))
			return err
		}
		if !ok {
			s.logger.Warn("employee position not found", zap.String("position_id", empl.PositionID.String()))
			return employeeerrors.ErrPositionNotFound
		}
	}

	if empl.ManagerID != nil {
		if *empl.ManagerID == empl.ID {
			return employeeerrors.ErrSelfManager
		}
		if _, err := qtx.FindByID(ctx, empl.ManagerID.String()); err != nil {
			if errors.Is(mapRepositoryError(err), employeeerrors.ErrEmployeeNotFound) {
				return employeeerrors.ErrManagerNotFound
			}
			s.logger.Error("check manager failed", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *service) enqueueLifecycleEvent(ctx context.Context, tx *sql.Tx, eventType string, empl *Employee) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	payload := events.EmployeeLifecycleEvent{
		EventType:  eventType,
		RequestID:  rid,
		EmployeeID: empl.ID.String(),
		HireDate:   empl.HireDate.Format(dateLayout),
		OccurredAt: s.now().UTC(),
	}
	if empl.TerminationDate != nil {
		payload.TerminationDate = empl.TerminationDate.Format(dateLayout)
	}

	event, err := kafka.NewEvent("employee", empl.ID.String(), eventType, events.EmployeeLifecycleTopic, rid, payload)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

func (s *service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               empl.ID.String(),
		EmployeeNumber:   empl.EmployeeNumber,
		FirstName:        empl.FirstName,
		LastName:         empl.LastName,
		FullName:         empl.FullName(),
		Email:            empl.Email,
		Phone:            empl.Phone,
		PositionID:       uuidToString(empl.PositionID),
		DepartmentID:     uuidToString(empl.DepartmentID),
		ManagerID:        uuidToString(empl.ManagerID),
		EmploymentStatus: string(empl.EmploymentStatus),
		HireDate:         empl.HireDate.Format(dateLayout),
	}
	if empl.TerminationDate != nil {
		resp.TerminationDate = empl.TerminationDate.Format(dateLayout)
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
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
