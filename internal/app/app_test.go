package app_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/app"
	"github.com/mrpavithran/Hrms-Backend/internal/auth/token"
	"github.com/mrpavithran/Hrms-Backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "app-router-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "hrms", Env: "test"},
		Auth: config.AuthConfig{
			JWTSecret:       testSecret,
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		CORS:      config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{IPPerSecond: 100, IPBurst: 100},
	}
}

func newTestRouter(t *testing.T) (http.Handler, redismock.ClientMock) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	rdb, redisMock := redismock.NewClientMock()

	router, recorder, err := app.NewRouter(app.Deps{
		Config: testConfig(),
		Logger: zap.NewNop(),
		DB:     sqlDB,
		GORM:   gormDB,
		Redis:  rdb,
	})
	require.NoError(t, err)
	require.NotNil(t, recorder)

	return router, redisMock
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	m := token.NewManager(testSecret, time.Minute, time.Hour)
	raw, err := m.IssueAccess(uuid.NewString(), uuid.NewString(), role)
	require.NoError(t, err)
	return "Bearer " + raw
}

func TestNewRouter_Healthz(t *testing.T) {
	router, redisMock := newTestRouter(t)
	redisMock.ExpectPing().SetVal("PONG")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestNewRouter_Guards(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"leave list needs a token", http.MethodGet, "/api/v1/leave-requests", "", http.StatusUnauthorized},
		{"employee cannot list accounts", http.MethodGet, "/api/v1/users", bearer(t, "EMPLOYEE"), http.StatusForbidden},
		{"employee cannot export leave", http.MethodGet, "/api/v1/leave-requests/export", bearer(t, "EMPLOYEE"), http.StatusForbidden},
		{"employee cannot register accounts", http.MethodPost, "/api/v1/auth/register", bearer(t, "EMPLOYEE"), http.StatusForbidden},
		{"employee cannot create payrolls", http.MethodPost, "/api/v1/payrolls", bearer(t, "EMPLOYEE"), http.StatusForbidden},
		{"manager cannot process payrolls", http.MethodPost, "/api/v1/payrolls/" + uuid.NewString() + "/process", bearer(t, "MANAGER"), http.StatusForbidden},
		{"employee cannot create positions", http.MethodPost, "/api/v1/positions", bearer(t, "EMPLOYEE"), http.StatusForbidden},
		{"clock in needs a token", http.MethodPost, "/api/v1/attendances/clock-in", "", http.StatusUnauthorized},
		{"manager cannot edit attendance", http.MethodPut, "/api/v1/attendances/" + uuid.NewString(), bearer(t, "MANAGER"), http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/v1/payroll", bearer(t, "ADMIN"), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}
