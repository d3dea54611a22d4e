package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/iudanet/webkit/internal/server"
	"github.com/iudanet/webkit/internal/server/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	if slices.Contains(args, "-version") || slices.Contains(args, "--version") {
		printVersion()
		return
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args, os.LookupEnv)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.Build(ctx, cfg, logger, Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("failed to close server", slog.Any("error", err))
		}
	}()

	logger.Info("webkit server starting",
		slog.String("version", Version),
		slog.String("address", cfg.Address),
		slog.String("db_driver", cfg.Database.Driver),
		slog.Bool("avatar_uploads", cfg.S3.Enabled()),
	)

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("webkit server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
