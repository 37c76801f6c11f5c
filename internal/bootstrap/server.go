package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/config"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

// RunHTTPServer serves handler until ctx is cancelled, then drains open
// connections within cfg.ShutdownTimeout. The shutdown is written to the
// audit trail before the listener closes.
func RunHTTPServer(
	ctx context.Context,
	handler http.Handler,
	cfg config.ServerConfig,
	recorder audit.Recorder,
	logger *zap.Logger,
) error {
	log := logger.Named("http.server")

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	audit.RecordBestEffort(context.Background(), recorder, log, audit.Entry{
		Action:       audit.ActionServerShutdown,
		ResourceType: audit.ResourceSystem,
		NewValue:     map[string]string{"addr": server.Addr},
	})

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		return err
	}

	log.Info("server exited gracefully")
	return nil
}
