package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workflow-go/internal/config"
	"workflow-go/internal/models"
	"workflow-go/internal/repository"
	"workflow-go/internal/router"
	"workflow-go/internal/storage"
	"workflow-go/pkg/redis_limiter"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "./config/config.yaml", "path to the config file")
	flag.Parse()

	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var store *repository.Store
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := models.InitDB(cfg)
		if err != nil {
			logger.WithError(err).Fatal("init database")
		}
		store = repository.NewGormStore(db)
		logger.WithField("path", cfg.Database.Path).Info("using sqlite store")
	default:
		store = repository.NewMemoryStore()
		logger.Info("using in-memory store")
	}

	blobs, err := storage.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		logger.WithError(err).Fatal("init upload storage")
	}

	var streams redis_limiter.Limiter
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddress(),
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("connect redis")
		}
		streams = redis_limiter.NewRedisLimiter(redisClient, cfg.Simulation.MaxStreamsPerUser, "workflow:streams:", time.Hour, logger)
	} else {
		streams = redis_limiter.NewLocalLimiter(cfg.Simulation.MaxStreamsPerUser)
	}

	r := router.SetupRouter(cfg, logger, store, blobs, streams)

	srv := &http.Server{
		Addr:              cfg.Server.GetAddress(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
