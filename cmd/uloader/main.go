// Command uloader runs a batch configuration offline: resolve the sources,
// process them and write the result files, without going through the REST
// API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/uloader/internal/core/batch_engine"
	"github.com/markdave123-py/uloader/internal/core/loader"
	"github.com/markdave123-py/uloader/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the batch configuration JSON")
	workers := flag.Int("workers", 3, "default worker count when the config does not set max_workers")
	itemTimeout := flag.Duration("item-timeout", 0, "optional per-item processing deadline")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: uloader -config batch.json")
		os.Exit(2)
	}

	if err := logger.Init(*logLevel, true); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	bf, err := batch_engine.LoadBatchFile(*configPath)
	if err != nil {
		log.Fatal("could not load batch config", zap.Error(err))
	}
	cfg, err := bf.ProcessingConfig()
	if err != nil {
		log.Fatal("could not parse processing config", zap.Error(err))
	}

	batchID := fmt.Sprintf("batch_%s", time.Now().Format("20060102_150405"))
	engine := batch_engine.NewEngine(
		batch_engine.NewProcessor(loader.NewDocconvPartitioner(false), *itemTimeout),
		log,
	)

	result, err := engine.RunBatch(ctx, bf.Sources, cfg, bf.Options(*workers, batchID))
	if err != nil {
		log.Fatal("batch failed", zap.Error(err))
	}

	written, err := batch_engine.WriteOutputs(result, bf.Output, batchID)
	if err != nil {
		log.Fatal("could not write outputs", zap.Error(err))
	}

	log.Info("batch finished",
		zap.String("batch_id", batchID),
		zap.Int("total_items", result.TotalItems),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Strings("outputs", written))

	if result.Failed > 0 {
		for _, item := range result.Items {
			if item.Failure != nil {
				log.Warn("item failed",
					zap.String("source", item.Source),
					zap.String("kind", string(item.Failure.Kind)),
					zap.String("reason", item.Failure.Message))
			}
		}
		os.Exit(1)
	}
}
