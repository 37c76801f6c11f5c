package leave_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/leave"
	leaveerrors "github.com/mrpavithran/Hrms-Backend/internal/leave/errors"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveService struct {
	CreateFn   func(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveResponse, error)
	GetAllFn   func(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]leave.LeaveResponse, int64, error)
	GetByIDFn  func(ctx context.Context, id string) (leave.LeaveResponse, error)
	UpdateFn   func(ctx context.Context, id string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error)
	DeleteFn   func(ctx context.Context, id string) error
	ExportFn   func(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]byte, error)
	CalendarFn func(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]byte, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeLeaveService) GetAll(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]leave.LeaveResponse, int64, error) {
	return f.GetAllFn(ctx, req)
}
func (f *fakeLeaveService) GetByID(ctx context.Context, id string) (leave.LeaveResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeLeaveService) Update(ctx context.Context, id string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeLeaveService) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}
func (f *fakeLeaveService) Export(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]byte, error) {
	return f.ExportFn(ctx, req)
}
func (f *fakeLeaveService) Calendar(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]byte, error) {
	return f.CalendarFn(ctx, req)
}

func setupRouter(h *leave.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/leave-requests", h.Create)
	r.GET("/leave-requests", h.GetAll)
	r.GET("/leave-requests/export", h.Export)
	r.GET("/leave-requests/calendar.ics", h.Calendar)
	r.GET("/leave-requests/:id", h.GetByID)
	r.PUT("/leave-requests/:id", h.Update)
	r.DELETE("/leave-requests/:id", h.Delete)
	return r
}

func TestLeaveHandler_Create(t *testing.T) {
	policyID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{
			CreateFn: func(_ context.Context, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, policyID, req.PolicyID)
				return leave.LeaveResponse{ID: uuid.NewString(), Status: "PENDING", Days: 3}, nil
			},
		}

		body := `{"policy_id":"` + policyID + `","start_date":"2025-01-01","end_date":"2025-01-03","reason":"trip"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(leave.NewHandler(svc)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
	})

	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(`{"policy_id":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(leave.NewHandler(&fakeLeaveService{})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("overlap maps to conflict", func(t *testing.T) {
		svc := &fakeLeaveService{
			CreateFn: func(context.Context, leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrOverlappingRequest
			},
		}

		body := `{"policy_id":"` + policyID + `","start_date":"2025-01-04","end_date":"2025-01-11","reason":"trip"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(leave.NewHandler(svc)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "OVERLAPPING_REQUEST")
	})

	t.Run("insufficient balance", func(t *testing.T) {
		svc := &fakeLeaveService{
			CreateFn: func(context.Context, leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrInsufficientBalance
			},
		}

		body := `{"policy_id":"` + policyID + `","start_date":"2025-01-01","end_date":"2025-01-05","reason":"trip"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(leave.NewHandler(svc)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_BALANCE")
	})
}

func TestLeaveHandler_GetAll(t *testing.T) {
	t.Run("passes filters and paginates", func(t *testing.T) {
		svc := &fakeLeaveService{
			GetAllFn: func(_ context.Context, req leave.ListLeaveRequestsRequest) ([]leave.LeaveResponse, int64, error) {
				assert.Equal(t, "APPROVED", req.Status)
				assert.Equal(t, 2, req.Page)
				return []leave.LeaveResponse{{ID: "l-1"}}, 11, nil
			},
		}

		w := httptest.NewRecorder()
		setupRouter(leave.NewHandler(svc)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leave-requests?status=APPROVED&page=2", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":11`)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeLeaveService{
			GetAllFn: func(context.Context, leave.ListLeaveRequestsRequest) ([]leave.LeaveResponse, int64, error) {
				return nil, 0, errors.New("db down")
			},
		}

		w := httptest.NewRecorder()
		setupRouter(leave.NewHandler(svc)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leave-requests", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestLeaveHandler_UpdateDelete(t *testing.T) {
	id := uuid.NewString()
	svc := &fakeLeaveService{
		GetByIDFn: func(context.Context, string) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		},
		UpdateFn: func(_ context.Context, got string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
			assert.Equal(t, id, got)
			if req.Status == "APPROVED" {
				return leave.LeaveResponse{}, leaveerrors.ErrInvalidTransition
			}
			return leave.LeaveResponse{ID: got, Status: req.Status}, nil
		},
		DeleteFn: func(context.Context, string) error {
			return leaveerrors.ErrInvalidState
		},
	}
	router := setupRouter(leave.NewHandler(svc))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leave-requests/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/leave-requests/"+id, strings.NewReader(`{"status":"CANCELLED"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/leave-requests/"+id, strings.NewReader(`{"status":"APPROVED"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/leave-requests/"+id, strings.NewReader(`{"status":"DONE"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/leave-requests/"+id, nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestLeaveHandler_ExportCalendar(t *testing.T) {
	svc := &fakeLeaveService{
		ExportFn: func(context.Context, leave.ListLeaveRequestsRequest) ([]byte, error) {
			return []byte("xlsx-bytes"), nil
		},
		CalendarFn: func(_ context.Context, req leave.ListLeaveRequestsRequest) ([]byte, error) {
			assert.Equal(t, "2025-01-01", req.From)
			return []byte("BEGIN:VCALENDAR"), nil
		},
	}
	router := setupRouter(leave.NewHandler(svc))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leave-requests/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leave-requests/calendar.ics?from=2025-01-01", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Equal(t, "BEGIN:VCALENDAR", w.Body.String())
}
