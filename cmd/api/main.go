// @title BandBooster Authoring API
// @version 1.0
// @description Authoring dashboard API for IELTS completion-style question groups.
// @host localhost:8080
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bandbooster-authoring/internal/adapter"
	"bandbooster-authoring/internal/adapter/storage"
	"bandbooster-authoring/internal/cache"
	"bandbooster-authoring/internal/config"
	"bandbooster-authoring/internal/database"
	"bandbooster-authoring/internal/handler"
	"bandbooster-authoring/internal/logger"
	"bandbooster-authoring/internal/middleware"
	"bandbooster-authoring/internal/port"
	"bandbooster-authoring/internal/repository"
	"bandbooster-authoring/internal/service"

	_ "bandbooster-authoring/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	groupRepository := repository.NewGroupDatabaseAdapter(db)
	passageRepository := repository.NewPassageDatabaseAdapter(db)
	revisionRepository := repository.NewRevisionDatabaseAdapter(db)
	staffRepository := repository.NewSQLXStaffRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize Redis client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Initialize uploader for diagram images. Without a configured
	// upload directory, images come back as ephemeral data URLs.
	var uploader port.Uploader
	if cfg.Storage.UploadDir != "" {
		uploader, err = storage.NewLocalUploader(cfg.Storage)
		if err != nil {
			appLogger.Fatal("Failed to initialize upload storage", zap.Error(err))
		}
	} else {
		appLogger.Warn("No upload directory configured; falling back to inline data URLs")
		uploader = storage.NewDataURLUploader()
	}

	// Initialize services
	groupCacheService := service.NewGroupCacheService(cacheAdapter, groupRepository, cfg.Cache.GroupTTL)
	authoringService := service.NewAuthoringService(groupRepository, passageRepository, revisionRepository, txManager, groupCacheService)
	passageService := service.NewPassageService(passageRepository)
	staffService := service.NewStaffService(staffRepository)

	authService, err := service.NewAuthService(staffRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	appLogger.Info("AuthService initialized")

	// Initialize handlers
	authoringHandler := handler.NewAuthoringHandler(authoringService, uploader)
	passageHandler := handler.NewPassageHandler(passageService)
	authHandler := handler.NewAuthHandler(authService, cfg)
	staffHandler := handler.NewStaffHandler(staffService)

	validationMiddleware := middleware.NewValidationMiddleware()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// Swagger and uploaded diagram images
	app.Get("/swagger/*", swagger.HandlerDefault)
	if cfg.Storage.UploadDir != "" {
		app.Static("/uploads", cfg.Storage.UploadDir)
	}

	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// Staff routes
	staffGroup := apiGroup.Group("/staff", middleware.Protected(authService))
	staffGroup.Get("/me", staffHandler.GetMyProfile)

	// Stateless authoring operations
	authoringGroup := apiGroup.Group("/authoring", middleware.Protected(authService))
	authoringGroup.Post("/count-blanks", authoringHandler.CountBlanks)
	authoringGroup.Post("/derive", authoringHandler.Derive)
	authoringGroup.Post("/preview", authoringHandler.Preview)
	authoringGroup.Post("/uploads", authoringHandler.UploadImage)

	// Passage routes
	passageGroup := apiGroup.Group("/passages", middleware.Protected(authService))
	passageGroup.Post("/", passageHandler.CreatePassage)
	passageGroup.Get("/", passageHandler.ListPassages)
	passageGroup.Get("/:passageId", validationMiddleware.ValidateIDParam("passageId"), passageHandler.GetPassage)
	passageGroup.Put("/:passageId", validationMiddleware.ValidateIDParam("passageId"), passageHandler.UpdatePassage)
	passageGroup.Get("/:passageId/groups", validationMiddleware.ValidateIDParam("passageId"), validationMiddleware.ValidateGroupTypeQuery(), authoringHandler.ListGroupsByPassage)

	// Question group routes
	groupGroup := apiGroup.Group("/groups", middleware.Protected(authService))
	groupGroup.Post("/", authoringHandler.CreateGroup)
	groupGroup.Get("/:groupId", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.GetGroup)
	groupGroup.Put("/:groupId", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.SaveGroup)
	groupGroup.Delete("/:groupId", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.DeleteGroup)
	groupGroup.Get("/:groupId/revisions", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.ListRevisions)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
