package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/postdesk"
	"github.com/nasermirzaei89/postdesk/cli"
	"github.com/nasermirzaei89/postdesk/contents"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "failed to load .env file", "error", err)
	}

	postdesk.SetupLogger()

	postRepo, err := postdesk.NewPostRepository()
	if err != nil {
		slog.ErrorContext(ctx, "failed to create post repository", "error", err)
		os.Exit(1)
	}

	session := cli.NewSession(contents.NewController(postRepo), os.Stdin, os.Stdout)

	err = session.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to run session", "error", err)
		os.Exit(1)
	}
}
