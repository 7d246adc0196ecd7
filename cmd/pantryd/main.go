package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"pantry/internal/config"
	"pantry/internal/database"
	"pantry/internal/server"
	"pantry/internal/state"
	"pantry/internal/storage"
	"pantry/internal/todo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr, logger); err != nil {
		logger.Error("pantryd stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer, logger *slog.Logger) error {
	defaultConfigPath, err := state.ConfigPath()
	if err != nil {
		return fmt.Errorf("state path: %w", err)
	}

	flags := flag.NewFlagSet("pantryd", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", defaultConfigPath, "path to config file")
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := loadEnvFile(*envFile); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database", "err", err)
		}
	}()

	todos := todo.NewStore(db)
	if cfg.Database.SkipMigrate {
		logger.Info("schema migration skipped")
	} else if err := todos.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	gcsOpener := storage.NewGCSOpener(cfg.ObjectStorage)
	defer func() {
		if err := gcsOpener.Close(); err != nil {
			logger.Warn("close gcs client", "err", err)
		}
	}()
	objectSettings := cfg.ObjectStorage
	gateway := storage.NewGateway(func() config.ObjectStorageConfig {
		return objectSettings.WithEnv(os.LookupEnv)
	}, storage.NewS3Opener(cfg.ObjectStorage), gcsOpener)

	logger.Info("object storage configured",
		"bucket_type", gateway.BucketType(),
		"bucket", objectSettings.WithEnv(os.LookupEnv).Bucket,
	)

	return server.New(cfg.Server, todos, gateway, logger).Run(ctx)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
