package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/webkit/internal/client/api"
	"github.com/iudanet/webkit/internal/client/cli"
	"github.com/iudanet/webkit/internal/client/iocli"
	"github.com/iudanet/webkit/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("webkit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	showVersion := fs.Bool("version", false, "Show version information")
	serverURL := fs.String("server", envOr("WEBKIT_SERVER", "http://localhost:8080"), "Server URL")
	dbPath := fs.String("db", envOr("WEBKIT_CLIENT_DB", "webkit-client.db"), "Path to local database")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cli.PrintUsage(os.Stdout)
			return nil
		}
		cli.PrintUsage(os.Stderr)
		return err
	}

	if *showVersion {
		printVersion()
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		cli.PrintUsage(os.Stderr)
		return errors.New("command required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		}
	}()

	c := cli.New(api.NewClient(*serverURL), store, iocli.NewStdio())
	return c.Run(ctx, rest[0], rest[1:])
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func printVersion() {
	fmt.Printf("WebKit Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
