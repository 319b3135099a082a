package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/env"
	"github.com/nasermirzaei89/postdesk"
	"github.com/nasermirzaei89/postdesk/db/sqlite3"
	"github.com/nasermirzaei89/postdesk/fakeapi"
)

func main() {
	ctx := context.Background()

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "failed to load .env file", "error", err)
	}

	postdesk.SetupLogger()

	err = run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to run fakeapi", "error", err)
		os.Exit(1)
	}
}

const defaultPort = "8081"

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	db, err := sqlite3.NewDB(ctx, env.GetString("FAKEAPI_DB_DSN", sqlite3.DefaultDSN))
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	defer func() {
		err := db.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close database", "error", err)
		}
	}()

	err = sqlite3.MigrateUp(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	postRepo := sqlite3.NewPostRepository(db)

	if env.GetBool("FAKEAPI_SEED", true) {
		err = fakeapi.Seed(ctx, postRepo)
		if err != nil {
			return fmt.Errorf("failed to seed posts: %w", err)
		}
	}

	srv := postdesk.NewServer("FAKEAPI_", defaultPort)

	err = srv.Run(ctx, fakeapi.NewHandler(postRepo))
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}
