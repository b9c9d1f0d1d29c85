package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/config"
	"github.com/sagarc03/snapvault/database"
	"github.com/sagarc03/snapvault/filesystem"
	snapvaulthttp "github.com/sagarc03/snapvault/http"
	"github.com/sagarc03/snapvault/keybackend"
	"github.com/sagarc03/snapvault/objectstore/minio"
	"github.com/sagarc03/snapvault/objectstore/s3"
)

// objectStorage is the configured object store plus, for the filesystem
// store, the endpoint that serves its presigned URLs.
type objectStorage struct {
	store   snapvault.ObjectStore
	objects *snapvaulthttp.ObjectConfig
	close   func()
}

// bucketCreator is implemented by remote stores that can create buckets.
type bucketCreator interface {
	EnsureBuckets(ctx context.Context, buckets ...string) error
}

func openDatabase(ctx context.Context, cfg database.Config) (database.Database, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("connected to database", "type", cfg.Type, "table", cfg.Tables.Photos)
	return db, nil
}

func openObjectStorage(ctx context.Context, cfg *config.Config) (*objectStorage, error) {
	switch cfg.Storage.Type {
	case "filesystem":
		return openFilesystem(cfg)
	case "s3":
		store, err := s3.New(ctx, s3.Options{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			AccessKey:    cfg.Storage.S3.AccessKey,
			SecretKey:    cfg.Storage.S3.SecretKey,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		return &objectStorage{store: store, close: func() {}}, nil
	case "minio":
		store, err := minio.New(minio.Options{
			Endpoint:  cfg.Storage.Minio.Endpoint,
			AccessKey: cfg.Storage.Minio.AccessKey,
			SecretKey: cfg.Storage.Minio.SecretKey,
			UseSSL:    cfg.Storage.Minio.UseSSL,
			Region:    cfg.Storage.Minio.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("open minio store: %w", err)
		}
		return &objectStorage{store: store, close: func() {}}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

func openFilesystem(cfg *config.Config) (*objectStorage, error) {
	fsCfg := cfg.Storage.Filesystem

	secrets, pair, err := keybackend.Load(fsCfg.Keys)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.Server.PublicURL, "/") + "/objects"
	presigner, err := snapvault.NewPresigner(baseURL, fsCfg.Region, fsCfg.Service, pair.AccessKey, pair.SecretKey)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(fsCfg.Path, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(fsCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage root: %w", err)
	}

	store, err := filesystem.NewStore(root, presigner, cfg.Storage.Buckets.Originals, cfg.Storage.Buckets.Edited)
	if err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("open filesystem store: %w", err)
	}

	return &objectStorage{
		store: store,
		objects: &snapvaulthttp.ObjectConfig{
			Store:         store,
			Verifier:      snapvault.NewSignatureVerifier(fsCfg.Region, fsCfg.Service, secrets),
			MaxUploadSize: cfg.Server.MaxUploadSize,
		},
		close: func() { _ = root.Close() },
	}, nil
}
