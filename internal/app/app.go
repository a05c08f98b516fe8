package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/markdave123-py/uloader/internal/config"
	"github.com/markdave123-py/uloader/internal/core"
	"github.com/markdave123-py/uloader/internal/core/artifact"
	"github.com/markdave123-py/uloader/internal/core/batch_engine"
	"github.com/markdave123-py/uloader/internal/core/loader"
	"github.com/markdave123-py/uloader/internal/jobs"
	"github.com/markdave123-py/uloader/pkg/logger"
)

type App struct {
	Artifacts core.ArtifactStore
	Manager   *jobs.Manager
	Server    *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Get()

	var artifacts core.ArtifactStore
	var err error
	if cfg.ArtifactBucket != "" {
		artifacts, err = artifact.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init s3 artifact store: %w", err)
		}
		log.Info("artifact store ready", zap.String("backend", "s3"), zap.String("bucket", cfg.ArtifactBucket))
	} else {
		artifacts, err = artifact.NewLocalStore(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("init local artifact store: %w", err)
		}
		log.Info("artifact store ready", zap.String("backend", "local"), zap.String("dir", cfg.OutputDir))
	}

	partitioner := loader.NewDocconvPartitioner(false)
	processor := batch_engine.NewProcessor(partitioner, cfg.ItemTimeout)
	engine := batch_engine.NewEngine(processor, log)

	store := jobs.NewStore()
	manager := jobs.NewManager(store, engine, artifacts, cfg.JobRetention, cfg.ReaperInterval, log)
	manager.Start(ctx, cfg.QueueWorkers)

	server := NewServer(cfg, manager)

	return &App{Artifacts: artifacts, Manager: manager, Server: server}, nil
}
