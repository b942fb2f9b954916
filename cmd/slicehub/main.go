// Command slicehub runs the 3D-print slicing HTTP API: it accepts a source
// model, converts and orients it, validates it against the target
// technology's build volume, invokes the slicer, and returns a price
// estimate alongside a downloadable sliced artifact.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/slicehub/slicehub/common"
	"github.com/slicehub/slicehub/common/config"
	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/archive"
	"github.com/slicehub/slicehub/internal/httpapi"
	"github.com/slicehub/slicehub/internal/metrics"
	"github.com/slicehub/slicehub/internal/pipeline"
	"github.com/slicehub/slicehub/internal/pricing"
	"github.com/slicehub/slicehub/internal/profile"
	"github.com/slicehub/slicehub/internal/queue"
	"github.com/slicehub/slicehub/internal/ratelimit"
	"github.com/slicehub/slicehub/internal/subprocess"
	"github.com/slicehub/slicehub/middleware"
)

func main() {
	common.Init()
	logger.SetupLogger()

	startedAt := time.Now()

	pricingRegistry := pricing.New(config.ConfigsDir + "/pricing.json")
	if err := pricingRegistry.Load(); err != nil {
		logger.Logger.Fatal("failed to load pricing registry", zap.Error(err))
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if err := pricingRegistry.Watch(watchCtx); err != nil {
		logger.Logger.Warn("pricing hot-reload watcher disabled", zap.Error(err))
	}

	errorLog := logger.NewErrorLog(config.LogDir+"/log.json", config.LogRetentionDays)
	logger.StartErrorLogRetentionWorker(watchCtx, errorLog)

	limiter := ratelimit.New(config.SliceRateLimitMaxRequests, time.Duration(config.SliceRateLimitWindowMS)*time.Millisecond)

	sliceQueue := queue.New(config.MaxConcurrentSlices, config.MaxSliceQueueLength, time.Duration(config.MaxSliceQueueWaitMS)*time.Millisecond)
	sliceQueue.Start()

	runner := subprocess.New(config.DebugCommandLogs)
	catalog := profile.New(config.ConfigsDir, config.ProfileSearchDirs...)

	var recorder *metrics.PrometheusRecorder
	if config.MetricsEnabled {
		recorder = metrics.NewPrometheusRecorder()
		metrics.GlobalRecorder = recorder
	}

	deps := pipeline.Deps{
		Runner:  runner,
		Catalog: catalog,
		Pricing: pricingRegistry,
		ArchiveGuard: archive.Guard{
			MaxEntries:           config.MaxZipEntries,
			MaxUncompressedBytes: config.MaxZipUncompressedBytes,
		},
		InputDir:  config.InputDir,
		OutputDir: config.OutputDir,
		Now:       time.Now,
	}

	gin.SetMode(config.GinMode)
	engine := gin.New()
	engine.Use(gmw.NewLoggerMiddleware(logger.Logger), gin.Recovery(), middleware.Metrics())
	engine.MaxMultipartMemory = config.MaxUploadBytes

	httpapi.Register(engine, httpapi.Routes{
		Pricing:   pricingRegistry,
		Queue:     sliceQueue,
		Deps:      deps,
		ErrorLog:  errorLog,
		Limiter:   limiter,
		Recorder:  recorder,
		StartedAt: startedAt,
	})

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(config.ServerPort),
		Handler: engine,
	}

	if *common.Port != 0 {
		srv.Addr = ":" + strconv.Itoa(*common.Port)
	}

	go func() {
		logger.Logger.Info("slicehub listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("http server exited unexpectedly", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Logger.Info("shutdown signal received, draining in-flight requests", zap.Duration("timeout", config.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http server shutdown did not complete cleanly", zap.Error(err))
	}

	sliceQueue.Stop(config.ShutdownTimeout)
	stopWatch()

	logger.Logger.Info("slicehub stopped")
}
