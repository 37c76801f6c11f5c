package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/employee"
	"github.com/mrpavithran/Hrms-Backend/internal/events"
	"github.com/mrpavithran/Hrms-Backend/internal/leave"
	leaveerrors "github.com/mrpavithran/Hrms-Backend/internal/leave/errors"
	leaveMock "github.com/mrpavithran/Hrms-Backend/internal/leave/mock"
	"github.com/mrpavithran/Hrms-Backend/internal/leavebalance"
	leavebalanceMock "github.com/mrpavithran/Hrms-Backend/internal/leavebalance/mock"
	"github.com/mrpavithran/Hrms-Backend/internal/leavepolicy"
	leavepolicyMock "github.com/mrpavithran/Hrms-Backend/internal/leavepolicy/mock"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	kafkaMock "github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka/mock"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingAuditor struct {
	entries []audit.Entry
}

func (r *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

type serviceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	service     leave.Service
	repo        *leaveMock.MockRepository
	balanceRepo *leavebalanceMock.MockRepository
	policyRepo  *leavepolicyMock.MockRepository
	outbox      *kafkaMock.MockOutboxRepository
	auditor     *recordingAuditor
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	repo := leaveMock.NewMockRepository(ctrl)
	balanceRepo := leavebalanceMock.NewMockRepository(ctrl)
	policyRepo := leavepolicyMock.NewMockRepository(ctrl)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)
	auditor := &recordingAuditor{}

	repo.EXPECT().WithTx(gomock.Any()).Return(repo).AnyTimes()
	balanceRepo.EXPECT().WithTx(gomock.Any()).Return(balanceRepo).AnyTimes()
	policyRepo.EXPECT().WithTx(gomock.Any()).Return(policyRepo).AnyTimes()
	outbox.EXPECT().WithTx(gomock.Any()).Return(outbox).AnyTimes()

	svc := leave.NewService(db, repo, balanceRepo, policyRepo, outbox, auditor, zap.NewNop())
	t.Cleanup(func() { db.Close() })

	return &serviceDeps{
		db:          db,
		sqlMock:     sqlMock,
		service:     svc,
		repo:        repo,
		balanceRepo: balanceRepo,
		policyRepo:  policyRepo,
		outbox:      outbox,
		auditor:     auditor,
	}
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func withActor(role domain.Role, employeeID string) context.Context {
	return contextutil.WithActor(context.Background(), contextutil.Actor{
		UserID:     uuid.NewString(),
		EmployeeID: employeeID,
		Role:       role.String(),
	})
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func day(v string) time.Time {
	t, _ := time.Parse("2006-01-02", v)
	return t
}

func activeEmployee(id uuid.UUID) *employee.Employee {
	return &employee.Employee{ID: id, FirstName: "Siti", LastName: "Rahma", EmploymentStatus: employee.StatusActive}
}

func annualPolicy(id uuid.UUID, active bool) *leavepolicy.LeavePolicy {
	return &leavepolicy.LeavePolicy{
		ID:          id,
		Name:        "Annual Leave",
		LeaveType:   leavepolicy.TypeAnnual,
		DaysAllowed: dec("20"),
		IsActive:    active,
	}
}

func ledger(employeeID, policyID uuid.UUID, used, remaining string) *leavebalance.LeaveBalance {
	return &leavebalance.LeaveBalance{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		PolicyID:      policyID,
		Year:          time.Now().UTC().Year(),
		DaysUsed:      dec(used),
		DaysRemaining: dec(remaining),
	}
}

func pendingRequest(employeeID, policyID uuid.UUID) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		PolicyID:    policyID,
		BalanceYear: time.Now().UTC().Year(),
		StartDate:   day("2025-01-01"),
		EndDate:     day("2025-01-03"),
		Days:        3,
		Reason:      "family trip",
		Status:      leave.StatusPending,
		AppliedAt:   time.Now().UTC(),
	}
}

func TestLeaveService_Create(t *testing.T) {
	empID := uuid.New()
	policyID := uuid.New()
	year := time.Now().UTC().Year()

	validReq := func() leave.CreateLeaveRequest {
		return leave.CreateLeaveRequest{
			PolicyID:  policyID.String(),
			StartDate: "2025-01-01",
			EndDate:   "2025-01-03",
			Reason:    " family trip ",
		}
	}

	t.Run("success leaves the balance untouched", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, true), nil)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), year).
			Return(ledger(empID, policyID, "5", "15"), nil)
		deps.repo.EXPECT().HasOverlap(ctx, empID.String(), day("2025-01-01"), day("2025-01-03"), "").Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, l *leave.LeaveRequest) error {
				assert.Equal(t, 3, l.Days)
				assert.Equal(t, leave.StatusPending, l.Status)
				assert.Equal(t, year, l.BalanceYear)
				assert.Equal(t, "family trip", l.Reason)
				assert.NotNil(t, l.Attachments)
				return nil
			})
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				assert.Equal(t, events.LeaveRequestCreated, e.EventType)
				assert.Equal(t, events.LeaveLifecycleTopic, e.Topic)
				return nil
			})

		resp, err := deps.service.Create(ctx, validReq())

		assert.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "Siti Rahma", resp.EmployeeName)
		assert.Equal(t, "ANNUAL", resp.LeaveType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.Len(t, deps.auditor.entries, 1)
		assert.Equal(t, audit.ActionCreate, deps.auditor.entries[0].Action)
		assert.Equal(t, domain.ResourceLeaveRequest, deps.auditor.entries[0].ResourceType)
	})

	t.Run("negative unauthenticated", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(context.Background(), validReq())

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("negative employee filing for someone else", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validReq()
		req.EmployeeID = uuid.NewString()

		_, err := deps.service.Create(withActor(domain.RoleEmployee, empID.String()), req)

		assert.ErrorIs(t, err, leaveerrors.ErrForbidden)
	})

	t.Run("negative bad date format", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validReq()
		req.StartDate = "01/02/2025"

		_, err := deps.service.Create(withActor(domain.RoleEmployee, empID.String()), req)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("negative employee not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, uuid.NewString())
		req := validReq()
		req.EmployeeID = empID.String()

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
		assert.Empty(t, deps.auditor.entries)
	})

	t.Run("negative terminated employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		empl := activeEmployee(empID)
		empl.EmploymentStatus = employee.StatusTerminated

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(empl, nil)

		_, err := deps.service.Create(ctx, validReq())

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeInactive)
	})

	t.Run("negative inactive policy", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, false), nil)

		_, err := deps.service.Create(ctx, validReq())

		assert.ErrorIs(t, err, leaveerrors.ErrPolicyInactive)
	})

	t.Run("negative unknown policy", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Create(ctx, validReq())

		assert.ErrorIs(t, err, leaveerrors.ErrPolicyNotFound)
	})

	t.Run("negative start after end", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := validReq()
		req.StartDate, req.EndDate = "2025-01-05", "2025-01-01"

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, true), nil)

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidRange)
	})

	t.Run("negative no balance row for the year", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, true), nil)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), year).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Create(ctx, validReq())

		assert.ErrorIs(t, err, leaveerrors.ErrNoBalance)
	})

	t.Run("negative five days against two remaining", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := validReq()
		req.EndDate = "2025-01-05"

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, true), nil)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), year).
			Return(ledger(empID, policyID, "18", "2"), nil)

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
	})

	t.Run("negative overlapping request", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, true), nil)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), year).
			Return(ledger(empID, policyID, "0", "20"), nil)
		deps.repo.EXPECT().HasOverlap(ctx, empID.String(), gomock.Any(), gomock.Any(), "").Return(true, nil)

		_, err := deps.service.Create(ctx, validReq())

		assert.ErrorIs(t, err, leaveerrors.ErrOverlappingRequest)
	})

	t.Run("negative outbox failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindEmployeeForUpdate(ctx, empID.String()).Return(activeEmployee(empID), nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, true), nil)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), year).
			Return(ledger(empID, policyID, "0", "20"), nil)
		deps.repo.EXPECT().HasOverlap(ctx, empID.String(), gomock.Any(), gomock.Any(), "").Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("outbox down"))

		_, err := deps.service.Create(ctx, validReq())

		assert.EqualError(t, err, "outbox down")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.Empty(t, deps.auditor.entries)
	})
}

func TestLeaveService_Update(t *testing.T) {
	empID := uuid.New()
	mgrID := uuid.New()
	policyID := uuid.New()

	t.Run("manager approves a direct report and the ledger moves", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleManager, mgrID.String())
		req := pendingRequest(empID, policyID)
		bal := ledger(empID, policyID, "5", "15")

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().IsDirectReport(ctx, mgrID.String(), empID.String()).Return(true, nil).Times(2)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), req.BalanceYear).Return(bal, nil)
		deps.balanceRepo.EXPECT().Update(ctx, bal).
			DoAndReturn(func(_ context.Context, b *leavebalance.LeaveBalance) error {
				assert.True(t, b.DaysUsed.Equal(dec("8")))
				assert.True(t, b.DaysRemaining.Equal(dec("12")))
				return nil
			})
		deps.repo.EXPECT().Update(ctx, req).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				assert.Equal(t, events.LeaveRequestStatusChanged, e.EventType)
				return nil
			})

		resp, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.Equal(t, mgrID.String(), *resp.ApprovedBy)
		assert.NotNil(t, resp.ApprovedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.Len(t, deps.auditor.entries, 1)
		assert.Equal(t, audit.ActionUpdate, deps.auditor.entries[0].Action)
		assert.Equal(t, "PENDING", deps.auditor.entries[0].OldValue.(leave.LeaveResponse).Status)
		assert.Equal(t, "APPROVED", deps.auditor.entries[0].NewValue.(leave.LeaveResponse).Status)
	})

	t.Run("negative approval beyond the remaining balance", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, uuid.NewString())
		req := pendingRequest(empID, policyID)
		req.Days = 5

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), req.BalanceYear).
			Return(ledger(empID, policyID, "18", "2"), nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.Empty(t, deps.auditor.entries)
	})

	t.Run("negative approver without an employee record", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleAdmin, "")
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrApproverRequired)
	})

	t.Run("negative manager deciding own request", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleManager, mgrID.String())
		req := pendingRequest(mgrID, policyID)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrForbidden)
	})

	t.Run("negative manager outside the reporting line", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleManager, mgrID.String())
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().IsDirectReport(ctx, mgrID.String(), empID.String()).Return(false, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative approved to approved", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, uuid.NewString())
		req := pendingRequest(empID, policyID)
		req.Status = leave.StatusApproved

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidTransition)
	})

	t.Run("negative rejected to approved", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, uuid.NewString())
		req := pendingRequest(empID, policyID)
		req.Status = leave.StatusRejected

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidTransition)
	})

	t.Run("negative reject without reason", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, uuid.NewString())
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "REJECTED", RejectionReason: "  "})

		assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
	})

	t.Run("reject records the reason without touching the ledger", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, uuid.NewString())
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().Update(ctx, req).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "rejected", RejectionReason: "peak season"})

		assert.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, "peak season", *resp.RejectionReason)
		assert.NotNil(t, resp.RejectedAt)
	})

	t.Run("cancel after approval restores the ledger", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, uuid.NewString())
		req := pendingRequest(empID, policyID)
		req.Status = leave.StatusApproved
		bal := ledger(empID, policyID, "8", "12")

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.policyRepo.EXPECT().FindByID(ctx, policyID.String()).Return(annualPolicy(policyID, true), nil)
		deps.balanceRepo.EXPECT().FindForUpdate(ctx, empID.String(), policyID.String(), req.BalanceYear).Return(bal, nil)
		deps.balanceRepo.EXPECT().Update(ctx, bal).
			DoAndReturn(func(_ context.Context, b *leavebalance.LeaveBalance) error {
				assert.True(t, b.DaysUsed.Equal(dec("5")))
				assert.True(t, b.DaysRemaining.Equal(dec("15")))
				return nil
			})
		deps.repo.EXPECT().Update(ctx, req).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "CANCELLED", CancellationReason: "plans changed"})

		assert.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, "plans changed", *resp.CancellationReason)
		assert.NotNil(t, resp.CancelledAt)
	})

	t.Run("owner withdraws a pending request", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().Update(ctx, req).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "CANCELLED"})

		assert.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Nil(t, resp.CancellationReason)
	})

	t.Run("negative owner cancelling an approved request", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := pendingRequest(empID, policyID)
		req.Status = leave.StatusApproved

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "CANCELLED"})

		assert.ErrorIs(t, err, leaveerrors.ErrForbidden)
	})

	t.Run("resubmit clears the rejection", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := pendingRequest(empID, policyID)
		reason := "peak season"
		rejectedAt := time.Now().UTC()
		req.Status = leave.StatusRejected
		req.RejectionReason = &reason
		req.RejectedAt = &rejectedAt

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().HasOverlap(ctx, empID.String(), req.StartDate, req.EndDate, req.ID.String()).Return(false, nil)
		deps.repo.EXPECT().Update(ctx, req).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "PENDING"})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Nil(t, resp.RejectionReason)
		assert.Nil(t, resp.RejectedAt)
	})

	t.Run("negative resubmit into an overlap", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := pendingRequest(empID, policyID)
		req.Status = leave.StatusRejected

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().HasOverlap(ctx, empID.String(), req.StartDate, req.EndDate, req.ID.String()).Return(true, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "PENDING"})

		assert.ErrorIs(t, err, leaveerrors.ErrOverlappingRequest)
	})

	t.Run("negative other employee's request is hidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, uuid.NewString())
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "CANCELLED"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative unknown status", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, "")
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		_, err := deps.service.Update(ctx, req.ID.String(), leave.UpdateLeaveRequest{Status: "ARCHIVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown status on missing request is not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, "")
		id := uuid.NewString()

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, id, leave.UpdateLeaveRequest{Status: "ARCHIVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, "")
		id := uuid.NewString()

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, id, leave.UpdateLeaveRequest{Status: "APPROVED"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestLeaveService_Delete(t *testing.T) {
	empID := uuid.New()
	policyID := uuid.New()

	t.Run("owner deletes a pending request", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().Delete(ctx, req.ID.String()).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				assert.Equal(t, events.LeaveRequestDeleted, e.EventType)
				return nil
			})

		assert.NoError(t, deps.service.Delete(ctx, req.ID.String()))
		assert.Equal(t, audit.ActionDelete, deps.auditor.entries[0].Action)
		assert.Nil(t, deps.auditor.entries[0].NewValue)
	})

	for _, status := range []leave.Status{leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled} {
		t.Run("negative "+strings.ToLower(string(status))+" request", func(t *testing.T) {
			deps := setupServiceTest(t)
			ctx := withActor(domain.RoleHR, uuid.NewString())
			req := pendingRequest(empID, policyID)
			req.Status = status

			expectTx(deps.sqlMock, false)
			deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

			assert.ErrorIs(t, deps.service.Delete(ctx, req.ID.String()), leaveerrors.ErrInvalidState)
			assert.Empty(t, deps.auditor.entries)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("negative owner deleting a decided request", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())
		req := pendingRequest(empID, policyID)
		req.Status = leave.StatusRejected

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)

		assert.ErrorIs(t, deps.service.Delete(ctx, req.ID.String()), leaveerrors.ErrInvalidState)
	})

	t.Run("negative manager deleting a report's request", func(t *testing.T) {
		deps := setupServiceTest(t)
		mgrID := uuid.NewString()
		ctx := withActor(domain.RoleManager, mgrID)
		req := pendingRequest(empID, policyID)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().IsDirectReport(ctx, mgrID, empID.String()).Return(true, nil)

		assert.ErrorIs(t, deps.service.Delete(ctx, req.ID.String()), leaveerrors.ErrForbidden)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		assert.ErrorIs(t, deps.service.Delete(withActor(domain.RoleHR, ""), "nope"), leaveerrors.ErrInvalidLeaveID)
	})
}

func TestLeaveService_GetAll(t *testing.T) {
	empID := uuid.New()

	t.Run("employee sees only own requests", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, empID.String())

		deps.repo.EXPECT().FindAll(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, f leave.ListFilter) ([]leave.LeaveRequest, int64, error) {
				assert.False(t, f.Visibility.All)
				assert.False(t, f.Visibility.IncludeReports)
				assert.Equal(t, empID.String(), f.Visibility.EmployeeID)
				assert.Equal(t, leave.StatusPending, f.Status)
				assert.Equal(t, 1, f.Page)
				assert.Equal(t, 10, f.PageSize)
				return []leave.LeaveRequest{*pendingRequest(empID, uuid.New())}, 1, nil
			})

		resp, total, err := deps.service.GetAll(ctx, leave.ListLeaveRequestsRequest{Status: "pending"})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, resp, 1)
	})

	t.Run("hr sees everything", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, "")

		deps.repo.EXPECT().FindAll(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, f leave.ListFilter) ([]leave.LeaveRequest, int64, error) {
				assert.True(t, f.Visibility.All)
				assert.Equal(t, day("2025-01-01"), *f.From)
				return nil, 0, nil
			})

		_, _, err := deps.service.GetAll(ctx, leave.ListLeaveRequestsRequest{From: "2025-01-01"})

		assert.NoError(t, err)
	})

	t.Run("negative from after to", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, _, err := deps.service.GetAll(withActor(domain.RoleHR, ""), leave.ListLeaveRequestsRequest{From: "2025-02-01", To: "2025-01-01"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidRange)
	})

	t.Run("negative unknown status filter", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, _, err := deps.service.GetAll(withActor(domain.RoleHR, ""), leave.ListLeaveRequestsRequest{Status: "DONE"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
	})
}

func TestLeaveService_GetByID(t *testing.T) {
	empID := uuid.New()
	mgrID := uuid.New()

	t.Run("manager reads a direct report", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleManager, mgrID.String())
		req := pendingRequest(empID, uuid.New())

		deps.repo.EXPECT().FindByID(ctx, req.ID.String()).Return(req, nil)
		deps.repo.EXPECT().IsDirectReport(ctx, mgrID.String(), empID.String()).Return(true, nil)

		resp, err := deps.service.GetByID(ctx, req.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, 3, resp.Days)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(withActor(domain.RoleHR, ""), "x")

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveID)
	})
}
