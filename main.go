package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FaizGusion00/fazztrack-backend/config"
	"github.com/FaizGusion00/fazztrack-backend/controllers"
	"github.com/FaizGusion00/fazztrack-backend/logger"
	"github.com/FaizGusion00/fazztrack-backend/middleware"
	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

func main() {
	cfg, log, err := bootstrap()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

// bootstrap loads configuration and installs the process-wide logger.
// Errors are returned to the caller since no logger exists yet.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	logger.Set(log)
	return cfg, log, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting FazzTrack API server...", zap.String("env", cfg.GoEnv))

	if err := config.ConnectDatabase(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database migration completed successfully")

	ctx := context.Background()
	deps := services.Deps{
		DB:            db,
		PublicBaseURL: cfg.PublicBaseURL,
	}

	gate, err := services.NewCasbinGate()
	if err != nil {
		return fmt.Errorf("failed to build authorization gate: %w", err)
	}
	deps.Gate = gate

	if cfg.AWSS3Bucket != "" {
		store, err := services.NewS3FileStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to configure S3 file store: %w", err)
		}
		deps.Files = store
	} else {
		log.Warn("AWS_S3_BUCKET not set, uploads are kept in memory")
	}

	if cfg.RedisAddr != "" {
		publisher, err := services.NewRedisEventPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer publisher.Close()
		deps.Events = publisher
	}

	services.InitRegistry(deps)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg.AllowedOrigins(), middleware.EnsureValidToken(cfg), middleware.LoadCurrentUser())

	port := ":" + cfg.Port
	log.Info("Server is running", zap.String("addr", "http://localhost"+port))
	return router.Run(port)
}

// setupRouter builds the API. authenticate validates the bearer token and
// loadUser resolves the acting staff member; tests substitute both.
func setupRouter(allowedOrigins []string, authenticate, loadUser gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// Public order tracking
		v1.POST("/tracking", controllers.TrackOrder)
		v1.GET("/tracking/order/:id", controllers.TrackOrderByID)

		// Profile creation only needs a valid token
		v1.POST("/users", authenticate, controllers.CreateUser)

		staff := v1.Group("", authenticate, loadUser)
		{
			staff.GET("/users/me", controllers.GetMyProfile)
			staff.PUT("/users/me", controllers.UpdateMyProfile)

			staff.POST("/orders", controllers.CreateOrder)
			staff.GET("/orders/:id", controllers.GetOrder)
			staff.GET("/orders/:id/details", controllers.GetOrderDetails)
			staff.PUT("/orders/:id", controllers.UpdateOrder)
			staff.POST("/orders/:id/status", controllers.UpdateOrderStatus)
			staff.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
			staff.POST("/orders/:id/approve", controllers.ApproveOrder)
			staff.DELETE("/orders/:id", controllers.DeleteOrder)
			staff.POST("/orders/:id/items", controllers.AddOrderItem)

			staff.PUT("/items/:id", controllers.UpdateOrderItem)
			staff.DELETE("/items/:id", controllers.DeleteOrderItem)

			staff.POST("/payments", controllers.CreatePayment)
			staff.GET("/payments/:id", controllers.GetPayment)
			staff.PUT("/payments/:id", controllers.UpdatePayment)
			staff.POST("/payments/:id/approve", controllers.ApprovePayment)
			staff.POST("/payments/:id/reject", controllers.RejectPayment)
			staff.DELETE("/payments/:id", controllers.DeletePayment)

			staff.POST("/designs", controllers.CreateDesign)
			staff.GET("/designs/:id", controllers.GetDesign)
			staff.PUT("/designs/:id", controllers.UpdateDesign)
			staff.POST("/designs/:id/upload", controllers.UploadDesignFile)
			staff.POST("/designs/:id/finalize", controllers.FinalizeDesign)
			staff.DELETE("/designs/:id", controllers.DeleteDesign)

			staff.POST("/jobs", controllers.CreateJob)
			staff.GET("/jobs/qr/:token", controllers.ScanJob)
			staff.GET("/jobs/:id", controllers.GetJob)
			staff.PUT("/jobs/:id", controllers.UpdateJob)
			staff.POST("/jobs/:id/start", controllers.StartJob)
			staff.POST("/jobs/:id/complete", controllers.CompleteJob)
			staff.POST("/jobs/:id/end", controllers.CompleteJob)
			staff.DELETE("/jobs/:id", controllers.DeleteJob)

			staff.POST("/files/upload", controllers.UploadFile)
			staff.GET("/files/:id", controllers.GetFile)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "FazzTrack API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database not initialised",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
