package agent

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	gormlogger "gorm.io/gorm/logger"

	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/blob"
	"github.com/mwantia/wind/pkg/blog"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/feed"
	"github.com/mwantia/wind/pkg/gallery"
	"github.com/mwantia/wind/pkg/log"
)

// Services bundles everything built from a BaseServerConfig. The CLI uses
// it directly; the agent registers its members in the service container.
type Services struct {
	Store   *store.SQLiteStore
	Photos  blob.Store
	Scratch blob.Store
	Gallery *gallery.Service
	Blog    *blog.Service
	Feed    *feed.Builder
	Cache   feed.Cache
}

func NewServices(ctx context.Context, cfg *config.BaseServerConfig, logger log.LoggerService) (*Services, error) {
	st, err := OpenStore(ctx, cfg.Metadata)
	if err != nil {
		return nil, err
	}

	svc := &Services{Store: st}
	if svc.Photos, err = OpenBlobStore(ctx, cfg.Blob); err != nil {
		svc.Close()
		return nil, err
	}
	if svc.Scratch, err = blob.NewLocalStore(cfg.Blob.ScratchRoot, ""); err != nil {
		svc.Close()
		return nil, err
	}

	svc.Gallery = gallery.NewService(cfg.Gallery, st, svc.Photos, svc.Scratch, logger)
	svc.Blog = blog.NewService(st, cfg.HTTP.PageSize, logger)

	svc.Cache = feed.NopCache{}
	if cfg.Feed.RedisAddr != "" {
		cache, err := feed.NewRedisCache(ctx, cfg.Feed.RedisAddr, cfg.Feed.RedisPassword, cfg.Feed.RedisDB)
		if err != nil {
			logger.Warn("Feed cache disabled: %v", err)
		} else {
			svc.Cache = cache
		}
	}

	if svc.Feed, err = feed.NewBuilder(cfg.Feed, svc.Blog, svc.Cache, logger); err != nil {
		svc.Close()
		return nil, err
	}

	return svc, nil
}

func (s *Services) Close() error {
	var err error
	if s.Cache != nil {
		err = s.Cache.Close()
	}
	if s.Store != nil {
		if cerr := s.Store.Close(); cerr != nil {
			err = cerr
		}
	}
	return err
}

// SQLiteConfig maps the configured sqlite options onto the store settings.
func SQLiteConfig(cfg config.MetadataSQLiteConfig) store.SQLiteConfig {
	sc := store.SQLiteConfig{
		Path:        cfg.Path,
		BusyTimeout: cfg.BusyTimeout,
	}
	if cfg.Debug {
		sc.LogLevel = gormlogger.Info
	}
	return sc
}

// OpenStore opens and migrates the sqlite metadata store.
func OpenStore(ctx context.Context, cfg config.MetadataServerConfig) (*store.SQLiteStore, error) {
	if cfg.Type != "" && cfg.Type != "sqlite" {
		return nil, fmt.Errorf("unsupported metadata store type %q", cfg.Type)
	}

	if err := afero.NewOsFs().MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	st, err := store.NewSQLiteStore(SQLiteConfig(cfg.SQLite))
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	if err := st.Connect(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	return st, nil
}

// OpenBlobStore returns the photo/asset store for the configured backend.
func OpenBlobStore(ctx context.Context, cfg config.BlobServerConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "", "local":
		return blob.NewLocalStore(cfg.LocalRoot, cfg.MediaURL)
	case "s3":
		s3, err := blob.NewS3Store(cfg.S3, cfg.MediaURL)
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3, nil
	}
	return nil, fmt.Errorf("unsupported blob backend %q", cfg.Backend)
}
