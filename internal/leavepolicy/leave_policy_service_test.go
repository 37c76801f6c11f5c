package leavepolicy_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/leavepolicy"
	leavepolicyerrors "github.com/mrpavithran/Hrms-Backend/internal/leavepolicy/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn       func(ctx context.Context, p *leavepolicy.LeavePolicy) error
	findAllFn      func(ctx context.Context, f leavepolicy.ListFilter) ([]leavepolicy.LeavePolicy, int64, error)
	findByIDFn     func(ctx context.Context, id string) (*leavepolicy.LeavePolicy, error)
	isReferencedFn func(ctx context.Context, id string) (bool, error)
	updateFn       func(ctx context.Context, p *leavepolicy.LeavePolicy) error
}

func (f *fakeRepo) WithTx(*sql.Tx) leavepolicy.Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, p *leavepolicy.LeavePolicy) error {
	return f.createFn(ctx, p)
}
func (f *fakeRepo) FindAll(ctx context.Context, filter leavepolicy.ListFilter) ([]leavepolicy.LeavePolicy, int64, error) {
	return f.findAllFn(ctx, filter)
}
func (f *fakeRepo) FindActive(context.Context) ([]leavepolicy.LeavePolicy, error) { return nil, nil }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*leavepolicy.LeavePolicy, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	return f.isReferencedFn(ctx, id)
}
func (f *fakeRepo) Update(ctx context.Context, p *leavepolicy.LeavePolicy) error {
	return f.updateFn(ctx, p)
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (r *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func newService(t *testing.T, repo leavepolicy.Repository) (leavepolicy.Service, sqlmock.Sqlmock, *recordingAuditor) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	auditor := &recordingAuditor{}
	return leavepolicy.NewService(db, repo, auditor, zap.NewNop()), mock, auditor
}

func TestLeavePolicyService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success always active", func(t *testing.T) {
		repo := &fakeRepo{createFn: func(_ context.Context, p *leavepolicy.LeavePolicy) error {
			assert.True(t, p.IsActive)
			assert.Equal(t, leavepolicy.TypeAnnual, p.LeaveType)
			assert.True(t, p.DaysAllowed.Equal(decimal.RequireFromString("20.5")))
			return nil
		}}
		svc, _, auditor := newService(t, repo)

		resp, err := svc.Create(ctx, leavepolicy.CreateLeavePolicyRequest{
			Name:        "Annual Leave",
			LeaveType:   "annual",
			DaysAllowed: floatPtr(20.5),
		})

		assert.NoError(t, err)
		assert.Equal(t, 20.5, resp.DaysAllowed)
		assert.Len(t, auditor.entries, 1)
	})

	t.Run("negative days", func(t *testing.T) {
		svc, _, _ := newService(t, &fakeRepo{})

		_, err := svc.Create(ctx, leavepolicy.CreateLeavePolicyRequest{Name: "X", LeaveType: "SICK", DaysAllowed: floatPtr(-1)})

		assert.ErrorIs(t, err, leavepolicyerrors.ErrNegativeDays)
	})

	t.Run("negative unknown type", func(t *testing.T) {
		svc, _, _ := newService(t, &fakeRepo{})

		_, err := svc.Create(ctx, leavepolicy.CreateLeavePolicyRequest{Name: "X", LeaveType: "SABBATICAL", DaysAllowed: floatPtr(1)})

		assert.ErrorIs(t, err, leavepolicyerrors.ErrInvalidLeaveType)
	})

	t.Run("negative duplicate name", func(t *testing.T) {
		repo := &fakeRepo{createFn: func(context.Context, *leavepolicy.LeavePolicy) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "leave_policies_name_key"}
		}}
		svc, _, _ := newService(t, repo)

		_, err := svc.Create(ctx, leavepolicy.CreateLeavePolicyRequest{Name: "Sick", LeaveType: "SICK", DaysAllowed: floatPtr(12)})

		assert.ErrorIs(t, err, leavepolicyerrors.ErrPolicyNameExists)
	})
}

func TestLeavePolicyService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := func() *leavepolicy.LeavePolicy {
		return &leavepolicy.LeavePolicy{
			ID:          id,
			Name:        "Annual Leave",
			LeaveType:   leavepolicy.TypeAnnual,
			DaysAllowed: decimal.NewFromInt(20),
			IsActive:    true,
		}
	}

	t.Run("days correction allowed while referenced", func(t *testing.T) {
		repo := &fakeRepo{
			findByIDFn: func(context.Context, string) (*leavepolicy.LeavePolicy, error) { return stored(), nil },
			isReferencedFn: func(context.Context, string) (bool, error) {
				t.Fatal("reference check not expected when identity is unchanged")
				return false, nil
			},
			updateFn: func(_ context.Context, p *leavepolicy.LeavePolicy) error {
				assert.True(t, p.DaysAllowed.Equal(decimal.NewFromInt(22)))
				return nil
			},
		}
		svc, mock, auditor := newService(t, repo)
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Update(ctx, id.String(), leavepolicy.UpdateLeavePolicyRequest{
			Name:        "Annual Leave",
			LeaveType:   "ANNUAL",
			DaysAllowed: floatPtr(22),
		})

		assert.NoError(t, err)
		assert.Equal(t, float64(22), resp.DaysAllowed)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, float64(20), auditor.entries[0].OldValue.(leavepolicy.LeavePolicyResponse).DaysAllowed)
	})

	t.Run("negative rename while referenced", func(t *testing.T) {
		repo := &fakeRepo{
			findByIDFn:     func(context.Context, string) (*leavepolicy.LeavePolicy, error) { return stored(), nil },
			isReferencedFn: func(context.Context, string) (bool, error) { return true, nil },
		}
		svc, mock, _ := newService(t, repo)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Update(ctx, id.String(), leavepolicy.UpdateLeavePolicyRequest{
			Name:        "Vacation",
			LeaveType:   "ANNUAL",
			DaysAllowed: floatPtr(20),
		})

		assert.ErrorIs(t, err, leavepolicyerrors.ErrPolicyInUse)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rename allowed while unreferenced", func(t *testing.T) {
		repo := &fakeRepo{
			findByIDFn:     func(context.Context, string) (*leavepolicy.LeavePolicy, error) { return stored(), nil },
			isReferencedFn: func(context.Context, string) (bool, error) { return false, nil },
			updateFn:       func(context.Context, *leavepolicy.LeavePolicy) error { return nil },
		}
		svc, mock, _ := newService(t, repo)
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Update(ctx, id.String(), leavepolicy.UpdateLeavePolicyRequest{
			Name:        "Sick Leave",
			LeaveType:   "SICK",
			DaysAllowed: floatPtr(10),
		})

		assert.NoError(t, err)
		assert.Equal(t, "SICK", resp.LeaveType)
	})

	t.Run("negative not found", func(t *testing.T) {
		repo := &fakeRepo{findByIDFn: func(context.Context, string) (*leavepolicy.LeavePolicy, error) {
			return nil, gorm.ErrRecordNotFound
		}}
		svc, mock, _ := newService(t, repo)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Update(ctx, id.String(), leavepolicy.UpdateLeavePolicyRequest{Name: "X", LeaveType: "SICK", DaysAllowed: floatPtr(1)})

		assert.ErrorIs(t, err, leavepolicyerrors.ErrPolicyNotFound)
	})
}

func TestLeavePolicyService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("deactivates", func(t *testing.T) {
		repo := &fakeRepo{
			findByIDFn: func(context.Context, string) (*leavepolicy.LeavePolicy, error) {
				return &leavepolicy.LeavePolicy{ID: id, IsActive: true}, nil
			},
			updateFn: func(_ context.Context, p *leavepolicy.LeavePolicy) error {
				assert.False(t, p.IsActive)
				return nil
			},
		}
		svc, mock, auditor := newService(t, repo)
		mock.ExpectBegin()
		mock.ExpectCommit()

		assert.NoError(t, svc.Delete(ctx, id.String()))
		assert.Equal(t, audit.ActionDelete, auditor.entries[0].Action)
	})

	t.Run("negative already inactive", func(t *testing.T) {
		repo := &fakeRepo{findByIDFn: func(context.Context, string) (*leavepolicy.LeavePolicy, error) {
			return &leavepolicy.LeavePolicy{ID: id}, nil
		}}
		svc, mock, _ := newService(t, repo)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.ErrorIs(t, svc.Delete(ctx, id.String()), leavepolicyerrors.ErrAlreadyInactive)
	})

	t.Run("negative update failure", func(t *testing.T) {
		repo := &fakeRepo{
			findByIDFn: func(context.Context, string) (*leavepolicy.LeavePolicy, error) {
				return &leavepolicy.LeavePolicy{ID: id, IsActive: true}, nil
			},
			updateFn: func(context.Context, *leavepolicy.LeavePolicy) error { return errors.New("db down") },
		}
		svc, mock, auditor := newService(t, repo)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.EqualError(t, svc.Delete(ctx, id.String()), "db down")
		assert.Empty(t, auditor.entries)
	})
}

func TestLeavePolicyService_GetAll(t *testing.T) {
	active := true
	repo := &fakeRepo{findAllFn: func(_ context.Context, f leavepolicy.ListFilter) ([]leavepolicy.LeavePolicy, int64, error) {
		assert.Equal(t, "SICK", f.LeaveType)
		assert.True(t, *f.Active)
		assert.Equal(t, 10, f.PageSize)
		return []leavepolicy.LeavePolicy{{ID: uuid.New(), Name: "Sick", LeaveType: leavepolicy.TypeSick, DaysAllowed: decimal.NewFromInt(12)}}, 1, nil
	}}
	svc, _, _ := newService(t, repo)

	resp, total, err := svc.GetAll(context.Background(), leavepolicy.ListLeavePoliciesRequest{LeaveType: "sick", Active: &active})

	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, float64(12), resp[0].DaysAllowed)
}
