package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"voto/internal/platform/config"
	"voto/internal/platform/logger"
	"voto/internal/registry/service"
	"voto/internal/seed"
	"voto/internal/storage/backend"
)

// seed loads users and candidates from CSV files into the store selected by
// VOTO_STORE and prints what happened to each row.
func main() {
	usersPath := flag.String("users", "", "CSV file with user rows")
	candidatesPath := flag.String("candidates", "", "CSV file with candidate rows")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *usersPath == "" && *candidatesPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -users users.csv -candidates candidates.csv")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, *usersPath, *candidatesPath); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger, usersPath, candidatesPath string) error {
	store, err := backend.Open(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer store.Close()

	users, closeUsers, err := openOptional(usersPath)
	if err != nil {
		return err
	}
	defer closeUsers()
	candidates, closeCandidates, err := openOptional(candidatesPath)
	if err != nil {
		return err
	}
	defer closeCandidates()

	loader := seed.NewLoader(service.New(store.Store, service.WithLogger(log)))
	report, err := loader.Load(ctx, users, candidates)
	report.Render(os.Stdout)
	return err
}

func openOptional(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
