package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedbackquest/internal/cache"
	"feedbackquest/internal/config"
	"feedbackquest/internal/logger"
	"feedbackquest/internal/repository"
	"feedbackquest/internal/scheduler"
	"feedbackquest/internal/service"
	"feedbackquest/internal/transport/rest"
	"feedbackquest/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Logger

	ctx := context.Background()

	log.Info("AI gateway configured",
		zap.String("base_url", cfg.AI.BaseURL),
		zap.String("model", cfg.AI.Model),
		zap.Duration("timeout", cfg.AI.Timeout),
		zap.Bool("api_key_set", cfg.AI.IsEnabled()))

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	db := mongoClient.Database(cfg.Mongo.Database)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("failed to ping Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize repositories
	questionRepo := repository.NewQuestionRepo(db)
	responseRepo := repository.NewResponseRepository(db)
	keypointRepo := repository.NewKeypointRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	if err := likeRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to ensure like indexes", zap.Error(err))
	}

	// Initialize caches
	progressCache := cache.NewProgressCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	keypointLock := cache.NewKeypointLock(rdb, cfg.AI.ExtractionLockTTL())

	// Initialize services
	gateway := service.NewGatewayClient(cfg.AI, log)
	authSvc := service.NewAuthService(cfg.JWT.Secret)
	evaluationSvc := service.NewEvaluationService(gateway, log)
	keypointSvc := service.NewKeypointService(questionRepo, responseRepo, keypointRepo, likeRepo, keypointLock, gateway, log)
	progressSvc := service.NewProgressService(progressCache, leaderboard, log)
	questionSvc := service.NewQuestionService(questionRepo, responseRepo)

	// wsHub implements service.Broadcaster
	wsHub := ws.NewHub(log)
	defer wsHub.Stop()
	progressSvc.SetBroadcaster(wsHub)

	var sched *scheduler.Scheduler
	if cfg.KeypointRefreshSchedule != "" {
		sched, err = scheduler.New(cfg.KeypointRefreshSchedule, keypointSvc, log)
		if err != nil {
			log.Fatal("failed to create scheduler", zap.Error(err))
		}
		sched.Start()
		log.Info("keypoint refresh scheduled", zap.String("schedule", cfg.KeypointRefreshSchedule))
	}

	router := rest.NewRouter(&rest.Container{
		Sessions:          authSvc,
		Tokens:            authSvc,
		Evaluator:         evaluationSvc,
		Keypoints:         keypointSvc,
		Progress:          progressSvc,
		Questions:         questionSvc,
		WSHub:             wsHub,
		Logger:            log,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
