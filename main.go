package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mockview-ai/backend/repository"
	"github.com/mockview-ai/backend/services"
)

func main() {
	// Setup structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	config := services.LoadConfig()

	var store repository.Store
	var gormRepo *repository.GORMRepository

	if config.Database.URL != "" {
		// Verify postgres connectivity up front so a bad DSN fails loudly
		if config.Database.Driver == "postgres" {
			pool, err := pgxpool.New(context.Background(), config.Database.URL)
			if err != nil {
				slog.Error("Failed to connect to database", "error", err)
				os.Exit(1)
			}
			if err := pool.Ping(context.Background()); err != nil {
				slog.Error("Database ping failed", "error", err)
				os.Exit(1)
			}
			pool.Close()
			slog.Info("Connected to database")
		}

		db, err := repository.OpenGORM(config.Database.Driver, config.Database.URL, repository.OpenOptions{
			LogLevel:     config.Database.LogLevel,
			MaxIdleConns: config.Database.MaxIdleConns,
			MaxOpenConns: config.Database.MaxOpenConns,
		})
		if err != nil {
			slog.Error("Failed to open database", "error", err, "driver", config.Database.Driver)
			os.Exit(1)
		}

		gormRepo = repository.NewGORMRepository(db)
		if err := gormRepo.AutoMigrate(); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		store = gormRepo
		slog.Info("Storage gateway initialized", "driver", config.Database.Driver)
	} else {
		store = repository.NewMemoryRepository()
		slog.Warn("Database URL not configured, using in-memory storage")
	}

	server := services.NewServer(config)
	server.SetStore(store, gormRepo)

	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}
