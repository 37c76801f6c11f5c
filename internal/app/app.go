package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/bootstrap"
	"github.com/mrpavithran/Hrms-Backend/internal/config"
	"github.com/mrpavithran/Hrms-Backend/internal/messaging/kafka"
	"github.com/mrpavithran/Hrms-Backend/internal/middleware"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/connection"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/database"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps are the connections the HTTP API is built on.
type Deps struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sql.DB
	GORM   *gorm.DB
	Redis  *redis.Client
}

// NewRouter builds the gin engine with the global middleware chain and every
// module mounted under /api/v1. It returns the audit recorder it wired so the
// caller can reuse it for process-level entries.
func NewRouter(deps Deps) (*gin.Engine, audit.Recorder, error) {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(deps.Logger.Named("http")),
		middleware.CORS(cfg.CORS),
	)
	router.GET("/healthz", healthz(deps.DB, deps.Redis))

	recorder := newRecorder(cfg, deps.DB, deps.GORM, kafka.NewOutboxRepository(deps.DB), deps.Logger)

	api := router.Group("/api/v1")
	if cfg.RateLimit.IPPerSecond > 0 {
		api.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimit.IPPerSecond), max(cfg.RateLimit.IPBurst, 1)))
	}

	if err := registerModules(api, cfg, deps.DB, deps.GORM, deps.Redis, recorder, deps.Logger); err != nil {
		return nil, nil, err
	}
	return router, recorder, nil
}

// RunAPI connects to postgres and redis, applies migrations and serves the
// API until ctx is cancelled.
func RunAPI(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return err
		}
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	router, recorder, err := NewRouter(Deps{
		Config: cfg,
		Logger: logger,
		DB:     sqlDB,
		GORM:   gormDB,
		Redis:  rdb,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	return bootstrap.RunHTTPServer(ctx, router, cfg.Server, recorder, logger)
}

func healthz(db *sql.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		healthy := true

		if err := db.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}

		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "Dependency check failed", checks)
			return
		}
		response.Success(c, http.StatusOK, checks, nil)
	}
}
