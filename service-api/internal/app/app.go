package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/auth"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/encoder"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/progress"
	"deovr-bridge/pkg/redis"
	ctl "deovr-bridge/service-api/internal/controller"
	manifestService "deovr-bridge/service-api/internal/service/manifest"
	proxyService "deovr-bridge/service-api/internal/service/proxy"
	scenesService "deovr-bridge/service-api/internal/service/scenes"
	"deovr-bridge/service-api/internal/service/tasks"
)

type appServer struct {
	config *config.Config
	runner *tasks.Runner

	scenesController   *ctl.ScenesController
	manifestController *ctl.ManifestController
	streamController   *ctl.StreamController
	timelineController *ctl.TimelineController
	tasksController    *ctl.TasksController
}

// NewAppServer wires the full bridge: cache store, catalog client, encoder,
// token signer, batch task runner and the HTTP controllers on top of them.
func NewAppServer(cfg *config.Config) *appServer {
	// initialize the preview cache store
	store, err := assets.NewStore(context.Background(), &cfg.Cache)
	if err != nil {
		logger.Fatalf("failed to initialize cache store: %v", err)
	}

	// shared collaborators
	originCatalog := catalog.NewClient(&cfg.Origin)
	signer := auth.NewStreamTokenSigner(cfg.StreamToken.Secret)
	previewEncoder := encoder.NewFFmpegEncoder(&cfg.Origin, os.TempDir())

	settings := func() (*config.LibrarySettings, error) {
		return config.LoadLibrarySettings(cfg.Settings.Path)
	}

	// task progress lives in Redis when available so it survives restarts
	// and is visible from every replica
	tracker := progress.NewMemoryTracker()
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		tracker = progress.NewRedisTracker(redisClient)
	}

	// initialize services
	scenesSvc := scenesService.NewService(settings, originCatalog, cfg.PublicBaseURL)
	manifestSvc := manifestService.NewService(settings, originCatalog, store, signer, cfg.PublicBaseURL)
	proxySvc := proxyService.NewService(signer, cfg.Origin.BaseURL, cfg.Origin.APIToken)

	generationSvc := tasks.NewGenerationService(settings, originCatalog, previewEncoder, store)
	cleanupSvc := tasks.NewCleanupService(settings, originCatalog, store)
	runner := tasks.NewRunner(tracker, generationSvc, cleanupSvc)

	return &appServer{
		config:             cfg,
		runner:             runner,
		scenesController:   ctl.NewScenesController(scenesSvc),
		manifestController: ctl.NewManifestController(manifestSvc),
		streamController:   ctl.NewStreamController(proxySvc),
		timelineController: ctl.NewTimelineController(store),
		tasksController:    ctl.NewTasksController(runner),
	}
}

func (a *appServer) Serve() {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", a.config.Port),
		Handler: a.RegisterHandlers(),
	}

	scheduler := newScheduler(a.runner, &a.config.Tasks)
	scheduler.Start()

	// serve the server
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	logger.Infof("server started on port %s", a.config.Port)

	a.gracefulShutdown(server, scheduler)

	logger.Info("server shutdown complete")
}

func (a *appServer) gracefulShutdown(server *http.Server, scheduler *scheduler) {
	ctx, stopCtx := context.WithCancel(context.Background())

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP) // wait for the sigterm
		<-signals

		// stop scheduling new runs and cancel the active ones first
		scheduler.Stop()
		a.runner.Shutdown()

		err := server.Shutdown(ctx)
		if err != nil {
			logger.Error(err, "server shutdown error")
		} else {
			logger.Info("server graceful shutdown")
		}

		stopCtx()
	}()

	<-ctx.Done()
}
