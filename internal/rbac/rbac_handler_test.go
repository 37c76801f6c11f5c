package rbac

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeService struct {
	enforceFn     func(req domain.EnforceRequest) (bool, error)
	permissionsFn func(role domain.Role) ([]domain.Permission, error)
}

func (f *fakeService) LoadPolicy() error { return nil }

func (f *fakeService) Enforce(req domain.EnforceRequest) (bool, error) {
	return f.enforceFn(req)
}

func (f *fakeService) Permissions(role domain.Role) ([]domain.Permission, error) {
	return f.permissionsFn(role)
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error map[string]any  `json:"error"`
}

func newRouter(h *Handler, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	})
	r.POST("/rbac/enforce", h.Enforce)
	r.GET("/rbac/permissions", h.Permissions)
	return r
}

func TestHandler_Enforce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeService{enforceFn: func(req domain.EnforceRequest) (bool, error) {
			assert.Equal(t, domain.RoleManager, req.Role)
			return req.Resource == domain.ResourceEmployee && req.Action == domain.ActionRead, nil
		}}
		router := newRouter(NewHandler(svc, zap.NewNop()), "MANAGER")

		body, _ := json.Marshal(EnforceRequest{Resource: "employee", Action: "read"})
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		var resp domain.EnforceResponse
		assert.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.True(t, resp.Allowed)
	})

	t.Run("negative missing role", func(t *testing.T) {
		router := newRouter(NewHandler(&fakeService{}, zap.NewNop()), "")

		body, _ := json.Marshal(EnforceRequest{Resource: "employee", Action: "read"})
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("negative bad body", func(t *testing.T) {
		router := newRouter(NewHandler(&fakeService{}, zap.NewNop()), "HR")

		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBufferString(`{"resource":""}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Permissions(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeService{permissionsFn: func(role domain.Role) ([]domain.Permission, error) {
			return []domain.Permission{{Resource: "leave_request", Action: "read"}}, nil
		}}
		router := newRouter(NewHandler(svc, zap.NewNop()), "EMPLOYEE")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		var resp PermissionsResponse
		assert.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, domain.RoleEmployee, resp.Role)
		assert.Len(t, resp.Permissions, 1)
	})

	t.Run("negative service error", func(t *testing.T) {
		svc := &fakeService{permissionsFn: func(role domain.Role) ([]domain.Permission, error) {
			return nil, errors.New("boom")
		}}
		router := newRouter(NewHandler(svc, zap.NewNop()), "HR")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
