package payroll_test

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	auditMock "github.com/mrpavithran/Hrms-Backend/internal/audit/mock"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/employee"
	"github.com/mrpavithran/Hrms-Backend/internal/payroll"
	payrollerrors "github.com/mrpavithran/Hrms-Backend/internal/payroll/errors"
	payrollMock "github.com/mrpavithran/Hrms-Backend/internal/payroll/mock"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  payroll.Service
	repo     *payrollMock.MockRepository
	recorder *auditMock.MockRecorder
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	repo := payrollMock.NewMockRepository(ctrl)
	recorder := auditMock.NewMockRecorder(ctrl)

	svc := payroll.NewService(db, repo, recorder, zap.NewNop())
	t.Cleanup(func() { db.Close() })

	return &serviceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo, recorder: recorder}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
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

func floatPtr(v float64) *float64 { return &v }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStatus_CanTransition(t *testing.T) {
	assert.True(t, payroll.StatusDraft.CanTransition(payroll.StatusProcessed))
	assert.True(t, payroll.StatusDraft.CanTransition(payroll.StatusCancelled))
	assert.True(t, payroll.StatusProcessed.CanTransition(payroll.StatusPaid))
	assert.True(t, payroll.StatusProcessed.CanTransition(payroll.StatusCancelled))

	assert.False(t, payroll.StatusDraft.CanTransition(payroll.StatusPaid))
	assert.False(t, payroll.StatusPaid.CanTransition(payroll.StatusCancelled))
	assert.False(t, payroll.StatusCancelled.CanTransition(payroll.StatusDraft))
	assert.False(t, payroll.StatusProcessed.CanTransition(payroll.StatusProcessed))
}

func TestPayrollService_Create(t *testing.T) {
	employeeID := uuid.NewString()
	req := payroll.CreatePayrollRequest{
		EmployeeID:  employeeID,
		PeriodStart: "2026-03-01",
		PeriodEnd:   "2026-03-31",
		BaseSalary:  floatPtr(5000),
		Allowance:   250.255,
		Deduction:   100,
	}

	t.Run("success computes net and starts as draft", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleHR, "")

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().HasOverlappingPeriod(ctx, employeeID, date(2026, 3, 1), date(2026, 3, 31), "").Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, p *payroll.Payroll) error {
				assert.Equal(t, payroll.StatusDraft, p.Status)
				assert.True(t, p.NetSalary.Equal(dec("5150.26")), p.NetSalary.String())
				assert.NotNil(t, p.CreatedBy)
				return nil
			})
		deps.recorder.EXPECT().Record(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Entry) error {
				assert.Equal(t, audit.ActionCreate, e.Action)
				assert.Equal(t, domain.ResourcePayroll, e.ResourceType)
				return nil
			})

		resp, err := deps.service.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, 5150.26, resp.NetSalary)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative overlapping period", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().HasOverlappingPeriod(ctx, employeeID, gomock.Any(), gomock.Any(), "").Return(true, nil)

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollOverlap)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(false, nil)

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, payrollerrors.ErrEmployeeNotFound)
	})

	t.Run("negative validation before any query", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(r *payroll.CreatePayrollRequest)
			want   error
		}{
			{"period reversed", func(r *payroll.CreatePayrollRequest) { r.PeriodStart = "2026-04-01" }, payrollerrors.ErrInvalidPeriod},
			{"malformed date", func(r *payroll.CreatePayrollRequest) { r.PeriodEnd = "31-03-2026" }, payrollerrors.ErrInvalidDate},
			{"negative allowance", func(r *payroll.CreatePayrollRequest) { r.Allowance = -1 }, payrollerrors.ErrNegativeAmount},
			{"deduction above gross", func(r *payroll.CreatePayrollRequest) { r.Deduction = 6000 }, payrollerrors.ErrNegativeNetSalary},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				deps := setupServiceTest(t)
				bad := req
				tc.mutate(&bad)

				_, err := deps.service.Create(context.Background(), bad)

				assert.ErrorIs(t, err, tc.want)
				assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
			})
		}
	})
}

func TestPayrollService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	employeeID := uuid.New()
	req := payroll.UpdatePayrollRequest{
		PeriodStart: "2026-03-01",
		PeriodEnd:   "2026-03-31",
		BaseSalary:  floatPtr(6000),
	}

	t.Run("success excludes itself from overlap", func(t *testing.T) {
		deps := setupServiceTest(t)
		row := &payroll.Payroll{ID: uuid.MustParse(id), EmployeeID: employeeID, Status: payroll.StatusDraft, BaseSalary: dec("5000")}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(row, nil)
		deps.repo.EXPECT().HasOverlappingPeriod(ctx, employeeID.String(), date(2026, 3, 1), date(2026, 3, 31), id).Return(false, nil)
		deps.repo.EXPECT().Update(ctx, row).Return(nil)
		deps.recorder.EXPECT().Record(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Entry) error {
				assert.Equal(t, 5000.0, e.OldValue.(payroll.PayrollResponse).BaseSalary)
				return nil
			})

		resp, err := deps.service.Update(ctx, id, req)

		require.NoError(t, err)
		assert.Equal(t, 6000.0, resp.NetSalary)
	})

	for _, status := range []payroll.Status{payroll.StatusProcessed, payroll.StatusPaid, payroll.StatusCancelled} {
		t.Run("negative "+string(status)+" is frozen", func(t *testing.T) {
			deps := setupServiceTest(t)

			expectTx(t, deps.sqlMock, false)
			deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
			deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(&payroll.Payroll{Status: status}, nil)

			_, err := deps.service.Update(ctx, id, req)

			assert.ErrorIs(t, err, payrollerrors.ErrNotDraft)
		})
	}

	t.Run("negative not found", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, id, req)

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollNotFound)
	})
}

func TestPayrollService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("draft is deleted", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(&payroll.Payroll{ID: uuid.MustParse(id), Status: payroll.StatusDraft}, nil)
		deps.repo.EXPECT().Delete(ctx, id).Return(nil)
		deps.recorder.EXPECT().Record(ctx, gomock.Any()).Return(nil)

		assert.NoError(t, deps.service.Delete(ctx, id))
	})

	t.Run("negative processed is kept", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(&payroll.Payroll{Status: payroll.StatusProcessed}, nil)

		assert.ErrorIs(t, deps.service.Delete(ctx, id), payrollerrors.ErrNotDraft)
	})
}

func TestPayrollService_Transition(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("process stamps processed_at", func(t *testing.T) {
		deps := setupServiceTest(t)
		row := &payroll.Payroll{ID: uuid.MustParse(id), Status: payroll.StatusDraft}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(row, nil)
		deps.repo.EXPECT().Update(ctx, row).Return(nil)
		deps.recorder.EXPECT().Record(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Entry) error {
				assert.Equal(t, "DRAFT", e.OldValue.(payroll.PayrollResponse).Status)
				assert.Equal(t, "PROCESSED", e.NewValue.(payroll.PayrollResponse).Status)
				return nil
			})

		resp, err := deps.service.Transition(ctx, id, payroll.StatusProcessed)

		require.NoError(t, err)
		assert.NotNil(t, resp.ProcessedAt)
		assert.Nil(t, resp.PaidAt)
	})

	t.Run("negative draft cannot be paid", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(&payroll.Payroll{Status: payroll.StatusDraft}, nil)

		_, err := deps.service.Transition(ctx, id, payroll.StatusPaid)

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidTransition)
	})

	t.Run("negative paid is terminal", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDForUpdate(ctx, id).Return(&payroll.Payroll{Status: payroll.StatusPaid}, nil)

		_, err := deps.service.Transition(ctx, id, payroll.StatusCancelled)

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidTransition)
	})
}

func TestPayrollService_Visibility(t *testing.T) {
	id := uuid.NewString()
	owner := uuid.New()
	row := &payroll.Payroll{ID: uuid.MustParse(id), EmployeeID: owner, Status: payroll.StatusDraft}

	t.Run("owner reads own payroll", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleEmployee, owner.String())
		deps.repo.EXPECT().FindByID(ctx, id).Return(row, nil)

		_, err := deps.service.GetByID(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("manager does not see a report's payroll", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := withActor(domain.RoleManager, uuid.NewString())
		deps.repo.EXPECT().FindByID(ctx, id).Return(row, nil)

		_, err := deps.service.GetByID(ctx, id)
		assert.ErrorIs(t, err, payrollerrors.ErrPayrollNotFound)
	})

	t.Run("list is limited to own rows without reports", func(t *testing.T) {
		deps := setupServiceTest(t)
		managerID := uuid.NewString()
		ctx := withActor(domain.RoleManager, managerID)
		deps.repo.EXPECT().FindAll(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, f payroll.ListFilter) ([]payroll.Payroll, int64, error) {
				assert.Equal(t, domain.Visibility{EmployeeID: managerID}, f.Visibility)
				return nil, 0, nil
			})

		_, _, err := deps.service.GetAll(ctx, payroll.ListPayrollsRequest{})
		assert.NoError(t, err)
	})

	t.Run("account without employee lists nothing", func(t *testing.T) {
		deps := setupServiceTest(t)

		rows, total, err := deps.service.GetAll(withActor(domain.RoleEmployee, ""), payroll.ListPayrollsRequest{})

		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Zero(t, total)
	})
}

func TestPayrollService_Payslip(t *testing.T) {
	id := uuid.NewString()
	owner := uuid.New()
	ctx := withActor(domain.RoleEmployee, owner.String())

	t.Run("processed payroll renders workbook", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, id).Return(&payroll.Payroll{
			ID:          uuid.MustParse(id),
			EmployeeID:  owner,
			Employee:    &employee.Employee{EmployeeNumber: "EMP-001", FirstName: "Dewi", LastName: "Lestari"},
			PeriodStart: date(2026, 3, 1),
			PeriodEnd:   date(2026, 3, 31),
			BaseSalary:  dec("5000"),
			Allowance:   dec("250"),
			Deduction:   dec("100"),
			NetSalary:   dec("5150"),
			Status:      payroll.StatusProcessed,
		}, nil)

		data, err := deps.service.Payslip(ctx, id)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		name, _ := f.GetCellValue("Payslip", "B1")
		net, _ := f.GetCellValue("Payslip", "B9")
		assert.Equal(t, "Dewi Lestari", name)
		assert.Equal(t, "5150.00", net)
	})

	t.Run("negative draft has no payslip", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, id).Return(&payroll.Payroll{EmployeeID: owner, Status: payroll.StatusDraft}, nil)

		_, err := deps.service.Payslip(ctx, id)
		assert.ErrorIs(t, err, payrollerrors.ErrPayslipNotReady)
	})
}
