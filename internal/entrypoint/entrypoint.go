package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jisho/internal/config"
	"github.com/mrlokans/jisho/internal/database"
	"github.com/mrlokans/jisho/internal/display"
	"github.com/mrlokans/jisho/internal/events"
	http_controllers "github.com/mrlokans/jisho/internal/http"
	"github.com/mrlokans/jisho/internal/importer"
	"github.com/mrlokans/jisho/internal/lifecycle"
	"github.com/mrlokans/jisho/internal/scheduler"
	"github.com/mrlokans/jisho/internal/services"
	"github.com/mrlokans/jisho/internal/settings"
	"github.com/mrlokans/jisho/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to let a running import finish)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Jisho v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Per-profile configuration lives next to the dictionary data
	repo := settings.NewRepository(db.DB)

	// Update notifications are logged; future consumers subscribe here
	notifier := events.NewNotifier()
	notifier.Subscribe(func(kind, reason string) {
		log.Printf("Store updated: %s (%s)", kind, reason)
	})

	// Keeper blocks shutdown while an import or purge is in flight
	keeper := lifecycle.NewKeeper()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var statsRefresher *tasks.StatsRefresher
	statsCache := &tasks.StatsCache{}
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRefreshStatsQueue(db, statsCache),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		statsRefresher = tasks.NewStatsRefresher(taskClient)
	}

	// Periodic stats refresh keeps the cached counters current
	var statsScheduler *scheduler.StatsRefreshScheduler
	if cfg.Stats.RefreshEnabled && statsRefresher != nil {
		statsScheduler = scheduler.NewStatsRefreshScheduler(statsRefresher, cfg.Stats.RefreshSchedule)
		if err := statsScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: failed to start stats refresh scheduler: %v", err)
		}
	}

	orchestrator := services.NewOrchestrator(services.OrchestratorConfig{
		Store:      &services.DatabaseStore{DB: db, BatchSize: cfg.Store.ImportBatchSize},
		Importer:   importer.NewImporter(),
		Settings:   settings.NewSynchronizer(repo),
		Notifier:   notifier,
		Stats:      statsRefresher,
		Sessions:   db,
		Normalizer: display.NewNormalizer(nil),
		Keeper:     keeper,
		Details: importer.Details{
			PrefixWildcardsSupported: cfg.Store.PrefixWildcardsSupported,
			BatchSize:                cfg.Store.ImportBatchSize,
		},
	})

	// Warm the stats cache on startup
	if statsRefresher != nil {
		statsRefresher.Refresh()
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Orchestrator: orchestrator,
		Database:     db,
		Settings:     repo,
		StatsCache:   statsCache,
		Version:      version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		// Let a running import or purge finish before tearing down
		if err := keeper.Wait(ctx); err != nil {
			log.Printf("WARNING: shutdown while an operation was still running: %v", err)
		}
		if statsScheduler != nil {
			statsScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
