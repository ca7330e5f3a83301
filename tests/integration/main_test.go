package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"bandbooster-authoring/internal/adapter"
	"bandbooster-authoring/internal/adapter/storage"
	"bandbooster-authoring/internal/cache"
	"bandbooster-authoring/internal/config"
	dblogic "bandbooster-authoring/internal/database"
	"bandbooster-authoring/internal/handler"
	"bandbooster-authoring/internal/logger"
	"bandbooster-authoring/internal/middleware"
	"bandbooster-authoring/internal/repository"
	"bandbooster-authoring/internal/service"
	"bandbooster-authoring/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	app         *fiber.App
	logInstance *zap.Logger
	db          *sqlx.DB
	redisClient *redis.Client
	cfg         *config.Config

	// seededPassageID points at the first passage inserted from
	// passages.json; tests that only need "some passage" use it.
	seededPassageID string
)

type seedPassage struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func cloneResponseBody(resp *http.Response) (*bytes.Buffer, error) {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	return bytes.NewBuffer(bodyBytes), nil
}

func TestMain(m *testing.M) {
	os.Setenv("ENV", "test")

	loadedCfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	cfg = loadedCfg

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logInstance = logger.Get()
	defer func() {
		if logInstance != nil {
			_ = logInstance.Sync()
		}
	}()

	logInstance.Info("Starting integration tests")

	db, err = dblogic.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		logInstance.Fatal("Failed to connect to database", zap.Error(err))
	}

	redisClient, err = cache.NewRedisClient(cfg.Redis)
	if err != nil {
		logInstance.Fatal("Failed to connect to test Redis", zap.Error(err))
	}
	logInstance.Info("Successfully connected to test Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	if err := applyMigrations(db); err != nil {
		logInstance.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Uploads go to a throwaway directory so test runs never pollute
	// the configured upload dir.
	uploadDir, err := os.MkdirTemp("", "authoring-uploads-")
	if err != nil {
		logInstance.Fatal("Failed to create temp upload dir", zap.Error(err))
	}
	cfg.Storage.UploadDir = uploadDir
	uploader, err := storage.NewLocalUploader(cfg.Storage)
	if err != nil {
		logInstance.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	groupRepository := repository.NewGroupDatabaseAdapter(db)
	passageRepository := repository.NewPassageDatabaseAdapter(db)
	revisionRepository := repository.NewRevisionDatabaseAdapter(db)
	staffRepository := repository.NewSQLXStaffRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	groupCacheService := service.NewGroupCacheService(cacheAdapter, groupRepository, cfg.Cache.GroupTTL)
	authoringService := service.NewAuthoringService(groupRepository, passageRepository, revisionRepository, txManager, groupCacheService)
	passageService := service.NewPassageService(passageRepository)
	staffService := service.NewStaffService(staffRepository)

	authService, err := service.NewAuthService(staffRepository, cfg)
	if err != nil {
		logInstance.Fatal("Failed to create AuthService", zap.Error(err))
	}

	authoringHandler := handler.NewAuthoringHandler(authoringService, uploader)
	passageHandler := handler.NewPassageHandler(passageService)
	authHandler := handler.NewAuthHandler(authService, cfg)
	staffHandler := handler.NewStaffHandler(staffService)

	validationMiddleware := middleware.NewValidationMiddleware()

	app = fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Static("/uploads", cfg.Storage.UploadDir)

	apiGroup := app.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	staffGroup := apiGroup.Group("/staff", middleware.Protected(authService))
	staffGroup.Get("/me", staffHandler.GetMyProfile)

	authoringGroup := apiGroup.Group("/authoring", middleware.Protected(authService))
	authoringGroup.Post("/count-blanks", authoringHandler.CountBlanks)
	authoringGroup.Post("/derive", authoringHandler.Derive)
	authoringGroup.Post("/preview", authoringHandler.Preview)
	authoringGroup.Post("/uploads", authoringHandler.UploadImage)

	passageGroup := apiGroup.Group("/passages", middleware.Protected(authService))
	passageGroup.Post("/", passageHandler.CreatePassage)
	passageGroup.Get("/", passageHandler.ListPassages)
	passageGroup.Get("/:passageId", validationMiddleware.ValidateIDParam("passageId"), passageHandler.GetPassage)
	passageGroup.Put("/:passageId", validationMiddleware.ValidateIDParam("passageId"), passageHandler.UpdatePassage)
	passageGroup.Get("/:passageId/groups", validationMiddleware.ValidateIDParam("passageId"), validationMiddleware.ValidateGroupTypeQuery(), authoringHandler.ListGroupsByPassage)

	groupGroup := apiGroup.Group("/groups", middleware.Protected(authService))
	groupGroup.Post("/", authoringHandler.CreateGroup)
	groupGroup.Get("/:groupId", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.GetGroup)
	groupGroup.Put("/:groupId", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.SaveGroup)
	groupGroup.Delete("/:groupId", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.DeleteGroup)
	groupGroup.Get("/:groupId/revisions", validationMiddleware.ValidateIDParam("groupId"), authoringHandler.ListRevisions)

	if err := seedPassages(); err != nil {
		logInstance.Fatal("Failed to seed passages", zap.Error(err))
	}
	clearRedisCache(redisClient)

	code := m.Run()
	os.Exit(code)
}

// applyMigrations runs every *.up.sql in lexical order. The files are
// plain DDL with no version table, so a schema that already exists
// surfaces as ORA-00955; that is fine on repeated runs.
func applyMigrations(db *sqlx.DB) error {
	migrationsDir := filepath.Join("..", "..", "database", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		ddl, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.Exec(strings.TrimRight(strings.TrimSpace(string(ddl)), ";")); err != nil {
			if strings.Contains(err.Error(), "ORA-00955") {
				logInstance.Info("Migration already applied, skipping", zap.String("file", name))
				continue
			}
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		logInstance.Info("Applied migration", zap.String("file", name))
	}
	return nil
}

func seedPassages() error {
	file, err := os.ReadFile("passages.json")
	if err != nil {
		return fmt.Errorf("failed to read passages.json: %w", err)
	}

	var passages []seedPassage
	if err := json.Unmarshal(file, &passages); err != nil {
		return fmt.Errorf("failed to unmarshal passages.json: %w", err)
	}

	for _, p := range passages {
		passageID := util.NewULID()
		now := time.Now()
		_, err := db.Exec(
			"INSERT INTO passages (id, title, content, created_at, updated_at) VALUES (:1, :2, :3, :4, :5)",
			passageID, p.Title, p.Content, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed passage %q: %w", p.Title, err)
		}
		if seededPassageID == "" {
			seededPassageID = passageID
		}
		logInstance.Info("Passage seeded", zap.String("id", passageID), zap.String("title", p.Title))
	}
	return nil
}

func clearRedisCache(client *redis.Client) {
	if client == nil {
		logInstance.Warn("Redis client is nil, cannot clear cache.")
		return
	}
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		logInstance.Error("Failed to flush test Redis database", zap.Error(err))
	} else {
		logInstance.Info("Test Redis database flushed successfully.")
	}
}

func clearRedisCacheKey(client *redis.Client, key string) {
	if client == nil {
		return
	}
	if err := client.Del(context.Background(), key).Err(); err != nil {
		logInstance.Error("Failed to delete key from test Redis database", zap.String("key", key), zap.Error(err))
	}
}
