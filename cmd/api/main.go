// @title Study Deck API
// @version 1.0
// @description Turns study documents into flashcard sets and multiple-choice quizzes.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_ACCESS_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"study-deck/internal/adapter"
	"study-deck/internal/adapter/embedding"
	"study-deck/internal/adapter/extract"
	"study-deck/internal/adapter/flashcardgen"
	"study-deck/internal/adapter/storage"
	"study-deck/internal/cache"
	"study-deck/internal/config"
	"study-deck/internal/database"
	"study-deck/internal/handler"
	"study-deck/internal/logger"
	"study-deck/internal/middleware"
	"study-deck/internal/repository"
	"study-deck/internal/service"

	_ "study-deck/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.GetMigrateURL()); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.NewSQLXPostgresDB(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("Successfully connected to Redis")

	fileStore, err := storage.NewSupabaseFileStore(cfg.Supabase)
	if err != nil {
		appLogger.Fatal("Failed to create storage client", zap.Error(err))
	}

	generator, closeGenerator, err := flashcardgen.New(context.Background(), cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create flashcard generator", zap.Error(err), zap.String("provider", cfg.LLM.Provider))
	}
	defer closeGenerator()
	appLogger.Info("Flashcard generator initialized", zap.String("provider", cfg.LLM.Provider))

	embedder, err := embedding.New(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create embedder", zap.Error(err), zap.String("provider", cfg.LLM.Embedding.Provider))
	}
	if embedder != nil {
		appLogger.Info("Near-duplicate card filter enabled", zap.String("provider", cfg.LLM.Embedding.Provider))
	}

	// Repositories
	profileRepo := repository.NewSQLXProfileRepository(db)
	documentRepo := repository.NewSQLXDocumentRepository(db)
	setRepo := repository.NewSQLXFlashcardSetRepository(db)
	attemptRepo := repository.NewSQLXQuizAttemptRepository(db)
	subscriptionRepo := repository.NewSQLXSubscriptionRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Services
	authService, err := service.NewAuthService(cfg.Supabase)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	profileService := service.NewProfileService(profileRepo, cacheAdapter, cfg.CacheTTLs.Profile, cfg.Plans.FreeUploadLimit)
	flashcardService := service.NewFlashcardService(
		setRepo, documentRepo, profileRepo, profileService, txManager,
		fileStore, extract.NewRegistry(), generator, embedder, cacheAdapter, cfg,
	)
	sessionStore := service.NewQuizSessionStore(cacheAdapter, cfg.Quiz.SessionTTL)
	quizService := service.NewQuizService(flashcardService, sessionStore, attemptRepo, cfg.Quiz)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, profileRepo, profileService, txManager, fileStore, cfg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handler.Handlers{
		Health:        handler.NewHealthHandler(db, cacheAdapter),
		Profile:       handler.NewProfileHandler(profileService),
		Flashcards:    handler.NewFlashcardHandler(flashcardService),
		Quiz:          handler.NewQuizHandler(quizService),
		Subscriptions: handler.NewSubscriptionHandler(subscriptionService),
	}, middleware.Protected(authService, profileService), middleware.RequireAdmin())

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
