package department_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/department"
	departmenterrors "github.com/mrpavithran/Hrms-Backend/internal/department/errors"
	departmentMock "github.com/mrpavithran/Hrms-Backend/internal/department/mock"
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
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   department.Service
	repo      *departmentMock.MockRepository
	redismock redismock.ClientMock
	auditor   *recordingAuditor
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	dbRedis, redisMock := redismock.NewClientMock()
	repo := departmentMock.NewMockRepository(ctrl)
	auditor := &recordingAuditor{}

	svc := department.NewService(db, repo, dbRedis, auditor, zap.NewNop())
	t.Cleanup(func() { db.Close() })

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		redismock: redisMock,
		auditor:   auditor,
	}
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

func TestDepartmentService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		expected := []department.DepartmentResponse{{ID: "d-1", Name: "HR"}, {ID: "d-2", Name: "IT"}}
		raw, _ := json.Marshal(expected)
		deps.redismock.ExpectGet(department.ActiveDepartmentsKey).SetVal(string(raw))

		resp, err := deps.service.GetAll(ctx, false)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, "HR", resp[0].Name)
	})

	t.Run("cache miss loads from db and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		depts := []department.Department{{ID: uuid.New(), Name: "Finance", IsActive: true}}
		deps.redismock.ExpectGet(department.ActiveDepartmentsKey).RedisNil()
		deps.repo.EXPECT().FindAll(ctx, false).Return(depts, nil)

		var stored []byte
		stored, _ = json.Marshal([]department.DepartmentResponse{{
			ID:        depts[0].ID.String(),
			Name:      "Finance",
			IsActive:  true,
			CreatedAt: "0001-01-01T00:00:00Z",
			UpdatedAt: "0001-01-01T00:00:00Z",
		}})
		deps.redismock.ExpectSet(department.ActiveDepartmentsKey, stored, department.CacheTTL).SetVal("OK")

		resp, err := deps.service.GetAll(ctx, false)

		assert.NoError(t, err)
		assert.Equal(t, "Finance", resp[0].Name)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("include inactive bypasses cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx, true).Return([]department.Department{{ID: uuid.New(), Name: "Old"}}, nil)

		resp, err := deps.service.GetAll(ctx, true)

		assert.NoError(t, err)
		assert.False(t, resp[0].IsActive)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative repository error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(department.ActiveDepartmentsKey).RedisNil()
		deps.repo.EXPECT().FindAll(ctx, false).Return(nil, errors.New("db down"))

		_, err := deps.service.GetAll(ctx, false)

		assert.EqualError(t, err, "db down")
	})
}

func TestDepartmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		managerID := uuid.NewString()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ManagerExists(ctx, managerID).Return(true, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, d *department.Department) error {
				assert.Equal(t, "Engineering", d.Name)
				assert.True(t, d.IsActive)
				return nil
			})
		deps.redismock.ExpectDel(department.ActiveDepartmentsKey).SetVal(1)

		resp, err := deps.service.Create(ctx, department.CreateDepartmentRequest{Name: " Engineering ", ManagerID: managerID})

		assert.NoError(t, err)
		assert.Equal(t, managerID, resp.ManagerID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.Len(t, deps.auditor.entries, 1)
	})

	t.Run("negative unknown manager", func(t *testing.T) {
		deps := setupServiceTest(t)
		managerID := uuid.NewString()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ManagerExists(ctx, managerID).Return(false, nil)

		_, err := deps.service.Create(ctx, department.CreateDepartmentRequest{Name: "X", ManagerID: managerID})

		assert.ErrorIs(t, err, departmenterrors.ErrManagerNotFound)
	})

	t.Run("negative inactive parent", func(t *testing.T) {
		deps := setupServiceTest(t)
		parentID := uuid.New()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, parentID.String()).Return(&department.Department{ID: parentID, IsActive: false}, nil)

		_, err := deps.service.Create(ctx, department.CreateDepartmentRequest{Name: "X", ParentID: parentID.String()})

		assert.ErrorIs(t, err, departmenterrors.ErrParentNotFound)
	})

	t.Run("negative duplicate name", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_departments_name"})

		_, err := deps.service.Create(ctx, department.CreateDepartmentRequest{Name: "HR"})

		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentAlreadyExists)
	})
}

func TestDepartmentService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("negative parent cycle", func(t *testing.T) {
		deps := setupServiceTest(t)
		child := uuid.New()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, Name: "Root", IsActive: true}, nil)
		deps.repo.EXPECT().FindByID(ctx, child.String()).Return(&department.Department{ID: child, ParentID: &id, IsActive: true}, nil)

		_, err := deps.service.Update(ctx, id.String(), department.UpdateDepartmentRequest{Name: "Root", ParentID: child.String()})

		assert.ErrorIs(t, err, departmenterrors.ErrParentCycle)
	})

	t.Run("negative self parent", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, IsActive: true}, nil)

		_, err := deps.service.Update(ctx, id.String(), department.UpdateDepartmentRequest{Name: "Root", ParentID: id.String()})

		assert.ErrorIs(t, err, departmenterrors.ErrParentCycle)
	})

	t.Run("success reactivates", func(t *testing.T) {
		deps := setupServiceTest(t)
		active := true

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, Name: "Old"}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(department.ActiveDepartmentsKey).SetVal(1)

		resp, err := deps.service.Update(ctx, id.String(), department.UpdateDepartmentRequest{Name: "New", IsActive: &active})

		assert.NoError(t, err)
		assert.True(t, resp.IsActive)
		assert.Equal(t, "New", resp.Name)
		assert.Equal(t, "Old", deps.auditor.entries[0].OldValue.(department.DepartmentResponse).Name)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, id.String(), department.UpdateDepartmentRequest{Name: "X"})

		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNotFound)
	})
}

func TestDepartmentService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success deactivates", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, IsActive: true}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, d *department.Department) error {
				assert.False(t, d.IsActive)
				return nil
			})
		deps.redismock.ExpectDel(department.ActiveDepartmentsKey).SetVal(1)

		assert.NoError(t, deps.service.Delete(ctx, id.String()))
		assert.Equal(t, audit.ActionDelete, deps.auditor.entries[0].Action)
	})

	t.Run("negative already inactive", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id}, nil)

		assert.ErrorIs(t, deps.service.Delete(ctx, id.String()), departmenterrors.ErrAlreadyInactive)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		assert.ErrorIs(t, deps.service.Delete(ctx, "nope"), departmenterrors.ErrInvalidDepartmentID)
	})
}
