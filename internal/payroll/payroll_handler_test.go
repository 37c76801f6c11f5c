package payroll_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/payroll"
	payrollerrors "github.com/mrpavithran/Hrms-Backend/internal/payroll/errors"
	"github.com/stretchr/testify/assert"
)

type fakePayrollService struct {
	CreateFn     func(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error)
	GetAllFn     func(ctx context.Context, req payroll.ListPayrollsRequest) ([]payroll.PayrollResponse, int64, error)
	GetByIDFn    func(ctx context.Context, id string) (payroll.PayrollResponse, error)
	UpdateFn     func(ctx context.Context, id string, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error)
	DeleteFn     func(ctx context.Context, id string) error
	TransitionFn func(ctx context.Context, id string, to payroll.Status) (payroll.PayrollResponse, error)
	PayslipFn    func(ctx context.Context, id string) ([]byte, error)
}

func (f *fakePayrollService) Create(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakePayrollService) GetAll(ctx context.Context, req payroll.ListPayrollsRequest) ([]payroll.PayrollResponse, int64, error) {
	return f.GetAllFn(ctx, req)
}
func (f *fakePayrollService) GetByID(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakePayrollService) Update(ctx context.Context, id string, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakePayrollService) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}
func (f *fakePayrollService) Transition(ctx context.Context, id string, to payroll.Status) (payroll.PayrollResponse, error) {
	return f.TransitionFn(ctx, id, to)
}
func (f *fakePayrollService) Payslip(ctx context.Context, id string) ([]byte, error) {
	return f.PayslipFn(ctx, id)
}

func setupRouter(h *payroll.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payrolls", h.Create)
	r.GET("/payrolls", h.GetAll)
	r.GET("/payrolls/:id", h.GetByID)
	r.GET("/payrolls/:id/payslip", h.Payslip)
	r.PUT("/payrolls/:id", h.Update)
	r.DELETE("/payrolls/:id", h.Delete)
	r.POST("/payrolls/:id/process", h.Process)
	r.POST("/payrolls/:id/pay", h.Pay)
	r.POST("/payrolls/:id/cancel", h.Cancel)
	return r
}

func TestPayrollHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakePayrollService{
			CreateFn: func(_ context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
				assert.Equal(t, 5000.0, *req.BaseSalary)
				return payroll.PayrollResponse{ID: uuid.NewString(), Status: "DRAFT", NetSalary: 5000}, nil
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payrolls", strings.NewReader(
			`{"employee_id":"`+uuid.NewString()+`","period_start":"2026-03-01","period_end":"2026-03-31","base_salary":5000}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(payroll.NewHandler(svc)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"DRAFT"`)
	})

	t.Run("validation error without base salary", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payrolls", strings.NewReader(
			`{"employee_id":"`+uuid.NewString()+`","period_start":"2026-03-01","period_end":"2026-03-31"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(payroll.NewHandler(&fakePayrollService{})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("overlap conflicts", func(t *testing.T) {
		svc := &fakePayrollService{
			CreateFn: func(context.Context, payroll.CreatePayrollRequest) (payroll.PayrollResponse, error) {
				return payroll.PayrollResponse{}, payrollerrors.ErrPayrollOverlap
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payrolls", strings.NewReader(
			`{"employee_id":"`+uuid.NewString()+`","period_start":"2026-03-01","period_end":"2026-03-31","base_salary":1}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(payroll.NewHandler(svc)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPayrollHandler_Transition(t *testing.T) {
	var got []payroll.Status
	svc := &fakePayrollService{
		TransitionFn: func(_ context.Context, _ string, to payroll.Status) (payroll.PayrollResponse, error) {
			got = append(got, to)
			if to == payroll.StatusPaid {
				return payroll.PayrollResponse{}, payrollerrors.ErrInvalidTransition
			}
			return payroll.PayrollResponse{Status: string(to)}, nil
		},
	}
	router := setupRouter(payroll.NewHandler(svc))
	id := uuid.NewString()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/process", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/pay", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/cancel", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []payroll.Status{payroll.StatusProcessed, payroll.StatusPaid, payroll.StatusCancelled}, got)
}

func TestPayrollHandler_Payslip(t *testing.T) {
	id := uuid.NewString()

	t.Run("download", func(t *testing.T) {
		svc := &fakePayrollService{
			PayslipFn: func(context.Context, string) ([]byte, error) { return []byte("xlsx"), nil },
		}

		w := httptest.NewRecorder()
		setupRouter(payroll.NewHandler(svc)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payrolls/"+id+"/payslip", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "payslip-"+id+".xlsx")
		assert.Equal(t, "xlsx", w.Body.String())
	})

	t.Run("draft not ready", func(t *testing.T) {
		svc := &fakePayrollService{
			PayslipFn: func(context.Context, string) ([]byte, error) { return nil, payrollerrors.ErrPayslipNotReady },
		}

		w := httptest.NewRecorder()
		setupRouter(payroll.NewHandler(svc)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payrolls/"+id+"/payslip", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
