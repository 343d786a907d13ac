package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mytaskflow/backend/config"
	"github.com/mytaskflow/backend/database"
	"github.com/mytaskflow/backend/database/repositories"
	"github.com/mytaskflow/backend/handlers"
	"github.com/mytaskflow/backend/logger"
	"github.com/mytaskflow/backend/middleware"
	"github.com/mytaskflow/backend/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	customHandler := logger.NewHandler("TaskFlow", cfg.Log.Level)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting TaskFlow API",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("user_id", cfg.App.UserID))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...")
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Database ready")

	habitRepo := repositories.NewHabitRepository(db.BunDB())
	completionRepo := repositories.NewCompletionRepository(db.BunDB())
	statsRepo := repositories.NewStatsRepository(db.BunDB())
	rewardRepo := repositories.NewRewardRepository(db.BunDB())
	disciplineRepo := repositories.NewDisciplineRepository(db.BunDB())
	goalRepo := repositories.NewGoalRepository(db.BunDB())

	if err := statsRepo.EnsureExists(ctx, cfg.App.UserID); err != nil {
		slog.Error("Failed to seed stats row", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ledger := services.NewLedgerService(completionRepo, statsRepo)
	rewardSvc := services.NewRewardService(db.BunDB(), rewardRepo, statsRepo)
	disciplineSvc := services.NewDisciplineService(db.BunDB(), disciplineRepo, statsRepo)
	searchSvc := services.NewSearchService(habitRepo)
	archiveSvc := services.NewArchiveService(
		cfg.Spaces.Key,
		cfg.Spaces.Secret,
		cfg.Spaces.Region,
		cfg.Spaces.Bucket,
		cfg.Spaces.Root,
	)

	app := fiber.New(fiber.Config{
		AppName:      "TaskFlow API",
		ServerHeader: "TaskFlow",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000,http://localhost:8080",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{
		UserID:        cfg.App.UserID,
		Habits:        habitRepo,
		Stats:         statsRepo,
		Rewards:       rewardRepo,
		Disciplines:   disciplineRepo,
		Goals:         goalRepo,
		Ledger:        ledger,
		RewardSvc:     rewardSvc,
		DisciplineSvc: disciplineSvc,
		Search:        searchSvc,
		Archive:       archiveSvc,
		Resetter:      db,
		Pinger:        db,
	}
	stopLimiters := webApp.RegisterRoutes(app)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("Starting server", slog.String("address", address))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	stopLimiters()
	db.Close()

	slog.Info("Shutdown complete")
}
