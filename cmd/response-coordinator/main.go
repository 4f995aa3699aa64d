package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-response/internal/api"
	"github.com/mr1hm/go-disaster-response/internal/channel"
	"github.com/mr1hm/go-disaster-response/internal/config"
	"github.com/mr1hm/go-disaster-response/internal/directory"
	"github.com/mr1hm/go-disaster-response/internal/dispatch"
	"github.com/mr1hm/go-disaster-response/internal/estimate"
	"github.com/mr1hm/go-disaster-response/internal/logging"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/observability"
	"github.com/mr1hm/go-disaster-response/internal/repository"
	"github.com/mr1hm/go-disaster-response/internal/session"
	"github.com/mr1hm/go-disaster-response/internal/stream"
	"github.com/mr1hm/go-disaster-response/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path, cfg.DB.HistoryLimit)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	dir, err := directory.Load(cfg.Directory.Path)
	if err != nil {
		logging.Fatalf("Failed to load recipient directory: %v", err)
	}

	engine, err := estimate.NewEngine()
	if err != nil {
		logging.Fatalf("Failed to initialize estimation engine: %v", err)
	}

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	events := stream.NewBroadcaster()
	sender := channel.NewSimulated(cfg.Dispatch.SendLatency, clock)

	dispatcher, err := dispatch.New(dispatch.Config{
		Directory:   dir,
		Sender:      sender,
		Repo:        db,
		Events:      events,
		Metrics:     metrics,
		SendTimeout: cfg.Dispatch.SendTimeout,
		Clock:       clock,
	})
	if err != nil {
		logging.Fatalf("Failed to initialize dispatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := worker.NewQueue(cfg.Worker.Count, cfg.Worker.BufferSize,
		func(ctx context.Context, rec *models.NotificationRecord) error {
			_, err := dispatcher.Run(ctx, rec)
			return err
		}, metrics)
	queue.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.API.RateLimitRPS))

	handler := api.NewHandler(engine, dispatcher, queue, db, events, session.NewState(), metrics)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop accepting requests first, then drain queued dispatches before
	// canceling their context. Canceling first would fail in-flight sends
	// and leave their records unresolved.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	queue.Stop()
	cancel()
	events.Close()

	slog.Info("shutdown complete")
}
