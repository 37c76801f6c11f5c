package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/mrpavithran/Hrms-Backend/internal/attendance"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/auth"
	"github.com/mrpavithran/Hrms-Backend/internal/auth/token"
	"github.com/mrpavithran/Hrms-Backend/internal/config"
	"github.com/mrpavithran/Hrms-Backend/internal/department"
	"github.com/mrpavithran/Hrms-Backend/internal/employee"
	"github.com/mrpavithran/Hrms-Backend/internal/leave"
	"github.com/mrpavithran/Hrms-Backend/internal/leavebalance"
	"github.com/mrpavithran/Hrms-Backend/internal/leavepolicy"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	"github.com/mrpavithran/Hrms-Backend/internal/middleware"
	"github.com/mrpavithran/Hrms-Backend/internal/payroll"
	"github.com/mrpavithran/Hrms-Backend/internal/position"
	"github.com/mrpavithran/Hrms-Backend/internal/rbac"
	"github.com/mrpavithran/Hrms-Backend/internal/rbac/infra"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/counter"
	"github.com/mrpavithran/Hrms-Backend/internal/user"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newRecorder picks the audit sink: audit_logs plus outbox when auditing is
// enabled, the process log otherwise.
func newRecorder(cfg *config.Config, db *sql.DB, gormDB *gorm.DB, outbox kafka.OutboxRepository, logger *zap.Logger) audit.Recorder {
	if !cfg.Audit.Enabled {
		return audit.NewLogRecorder(logger)
	}
	return audit.NewDBRecorder(db, audit.NewRepository(gormDB), outbox, logger)
}

func registerModules(
	api *gin.RouterGroup,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	recorder audit.Recorder,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	policyRepo := leavepolicy.NewRepository(gormDB)
	balanceRepo := leavebalance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	positionRepo := position.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, logger)
	if err != nil {
		return err
	}

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authMW := middleware.AuthMiddleware(tokens)
	idempotency := middleware.Idempotency(rdb)

	// --- Services ---
	authService := auth.NewService(authRepo, tokens, recorder, logger)
	userService := user.NewService(userRepo, recorder, logger)
	auditService := audit.NewService(auditRepo, logger)
	departmentService := department.NewService(db, departmentRepo, rdb, recorder, logger)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, outboxRepo, rdb, recorder, logger)
	policyService := leavepolicy.NewService(db, policyRepo, recorder, logger)
	balanceService := leavebalance.NewService(db, balanceRepo, policyRepo, recorder, logger)
	leaveService := leave.NewService(db, leaveRepo, balanceRepo, policyRepo, outboxRepo, recorder, logger)
	positionService := position.NewService(db, positionRepo, rdb, recorder, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, attendance.Clock{
		LateAfter: cfg.Attendance.LateAfter,
		Location:  cfg.Attendance.Location(),
	}, recorder, logger)
	payrollService := payroll.NewService(db, payrollRepo, recorder, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		Secure:     cfg.Auth.CookieSecure || cfg.IsProduction(),
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	}, logger)
	userHandler := user.NewHandler(userService, logger)
	auditHandler := audit.NewHandler(auditService, logger)
	departmentHandler := department.NewHandler(departmentService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	policyHandler := leavepolicy.NewHandler(policyService, logger)
	balanceHandler := leavebalance.NewHandler(balanceService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	positionHandler := position.NewHandler(positionService, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	payrollHandler := payroll.NewHandler(payrollService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	auth.RegisterRoutes(api, authHandler, authMW, rbacService)
	user.RegisterRoutes(api, userHandler, authMW, rbacService)
	audit.RegisterRoutes(api, auditHandler, authMW, rbacService)
	department.RegisterRoutes(api, departmentHandler, authMW, rbacService)
	employee.RegisterRoutes(api, employeeHandler, authMW, rbacService, idempotency)
	leavepolicy.RegisterRoutes(api, policyHandler, authMW, rbacService)
	leavebalance.RegisterRoutes(api, balanceHandler, authMW, rbacService)
	leave.RegisterRoutes(api, leaveHandler, authMW, rbacService, idempotency)
	position.RegisterRoutes(api, positionHandler, authMW, rbacService)
	attendance.RegisterRoutes(api, attendanceHandler, authMW, rbacService)
	payroll.RegisterRoutes(api, payrollHandler, authMW, rbacService, idempotency)
	rbac.RegisterRoutes(api, rbacHandler, authMW)

	return nil
}
