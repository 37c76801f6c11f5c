package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrpavithran/Hrms-Backend/internal/app"
	"github.com/mrpavithran/Hrms-Backend/internal/bootstrap"
	"github.com/mrpavithran/Hrms-Backend/internal/config"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunAPI(ctx, cfg, logger); err != nil {
		logger.Fatal("run api failed", zap.Error(err))
	}
}
