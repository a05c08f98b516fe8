package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/uloader/internal/app"
	"github.com/markdave123-py/uloader/internal/config"
	"github.com/markdave123-py/uloader/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	if err := logger.Init(cfg.LogLevel, cfg.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}

	go application.Server.Start()
	log.Info("uloader is running", zap.String("port", cfg.Port))

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
}
