package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/webkit/internal/avatars"
	"github.com/iudanet/webkit/internal/server/config"
	"github.com/iudanet/webkit/internal/server/storage"
	"github.com/iudanet/webkit/internal/server/storage/postgres"
	"github.com/iudanet/webkit/internal/server/storage/sqlite"
	"github.com/iudanet/webkit/internal/webapi"
)

// Build открывает хранилище и собирает сервер по конфигурации
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*Server, error) {
	store, err := OpenStorage(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	deps, err := newDeps(ctx, cfg, logger, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return New(cfg, logger, deps, version), nil
}

// OpenStorage открывает хранилище выбранного драйвера и применяет миграции
func OpenStorage(ctx context.Context, cfg config.DatabaseConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

func newDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger, store storage.Storage) (Deps, error) {
	registry := avatars.NewRegistry()
	services := []avatars.Service{
		avatars.NewGravatarService(cfg.Avatars.GravatarBaseURL),
		avatars.NewInitialsService(cfg.Avatars.InitialsBaseURL),
	}

	deps := Deps{
		Storage:  store,
		Tokens:   webapi.NewTokenManager(store, cfg.Auth.SecretKey, logger),
		Registry: registry,
	}

	if cfg.S3.Enabled() {
		presigner, err := avatars.NewS3Presigner(ctx, avatars.S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			Expires:      cfg.S3.PresignTTL,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return Deps{}, fmt.Errorf("failed to configure avatar uploads: %w", err)
		}
		deps.Presigner = presigner
		services = append(services, avatars.NewUploadService(store, presigner))
	} else {
		logger.Info("avatar uploads disabled: s3 bucket is not configured")
	}

	for _, svc := range services {
		if err := registry.Register(svc); err != nil {
			return Deps{}, err
		}
	}
	if err := registry.SetDefault(cfg.Avatars.DefaultService); err != nil {
		return Deps{}, fmt.Errorf("default avatar service: %w", err)
	}

	renderer, err := avatars.NewRenderer()
	if err != nil {
		return Deps{}, err
	}
	deps.Renderer = renderer

	return deps, nil
}
