package router

import (
	"net/http"

	"workflow-go/internal/config"
	"workflow-go/internal/handler"
	"workflow-go/internal/middleware"
	"workflow-go/internal/repository"
	"workflow-go/internal/service"
	"workflow-go/internal/storage"
	"workflow-go/internal/utils"
	"workflow-go/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter wires services and handlers and returns the engine.
func SetupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	store *repository.Store,
	blobs storage.BlobStore,
	streams redis_limiter.Limiter,
) *gin.Engine {
	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(&cfg.CORS))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/health", health)

	jwtManager := utils.NewJWTManager(
		cfg.JWT.SecretKey,
		cfg.JWT.Algorithm,
		cfg.JWT.GetExpireDuration(),
	)

	authService := service.NewAuthService(store.Users, jwtManager)
	datasetService := service.NewDatasetService(store.Datasets, blobs, nil)
	simulationService := service.NewSimulationService(datasetService, nil, cfg.Simulation.GetInterval())

	authHandler := handler.NewAuthHandler(authService, logger)
	datasetHandler := handler.NewDatasetHandler(datasetService, logger)
	simulationHandler := handler.NewSimulationHandler(simulationService, streams, logger)

	api := r.Group(cfg.Server.BasePath)
	{
		api.GET("/health", health)

		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		authorized := api.Group("")
		authorized.Use(middleware.AuthMiddleware(authService))
		{
			authorized.GET("/auth/verify", authHandler.Verify)

			authorized.POST("/upload", middleware.BodyLimit(cfg.Upload.GetMaxBytes()), datasetHandler.Upload)
			authorized.GET("/datasets", datasetHandler.List)
			authorized.POST("/datasets/:id/date-ranges", datasetHandler.ValidateDateRanges)

			authorized.GET("/simulation/metrics", simulationHandler.Metrics)
			authorized.POST("/simulation/train", simulationHandler.Train)
			authorized.GET("/simulation/stream", simulationHandler.Stream)
		}
	}

	return r
}
