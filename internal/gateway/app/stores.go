package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	reportcache "lifestream/internal/cache/report"
	"lifestream/internal/gateway/config"
	"lifestream/internal/gateway/handler"
	"lifestream/internal/gateway/repository/archive"
	"lifestream/internal/gateway/repository/logstore"
	"lifestream/internal/gateway/repository/reportstore"
	"lifestream/internal/gateway/repository/sqldb"
)

type gatewayStores struct {
	logs    logstore.Store
	reports reportstore.Store
	archive archive.Store
	ping    handler.Pinger
	db      *sqldb.DB
}

func (s *gatewayStores) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	archiveStore, err := chooseArchiveStore(cfg)
	if err != nil {
		return nil, err
	}

	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := sqldb.OpenPostgres(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		log.Printf("journal store: postgres")
		return initSQLStores(cfg, db, archiveStore)
	}
	if path := strings.TrimSpace(cfg.SQLitePath); path != "" {
		db, err := sqldb.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
		}
		log.Printf("journal store: sqlite path=%s", path)
		return initSQLStores(cfg, db, archiveStore)
	}
	log.Printf("journal store: in-memory")
	return &gatewayStores{
		logs:    logstore.NewMemoryStore(cfg.Location()),
		reports: cachedReports(cfg, reportstore.NewMemoryStore()),
		archive: archiveStore,
	}, nil
}

func initSQLStores(cfg *config.Config, db *sqldb.DB, archiveStore archive.Store) (*gatewayStores, error) {
	if err := db.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &gatewayStores{
		logs:    logstore.NewSQLStore(db, cfg.Location()),
		reports: cachedReports(cfg, reportstore.NewSQLStore(db)),
		archive: archiveStore,
		ping:    db.PingContext,
		db:      db,
	}, nil
}

func cachedReports(cfg *config.Config, origin reportstore.Store) reportstore.Store {
	if cfg.Cache.Size < 0 {
		return origin
	}
	return reportcache.NewCachedStore(origin, reportcache.CacheConfig{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.Size,
	})
}

// chooseArchiveStore returns nil when archiving is disabled.
func chooseArchiveStore(cfg *config.Config) (archive.Store, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	s3Store, err := archive.NewS3Store(archive.S3Config{
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize archive s3 store: %w", err)
	}
	log.Printf("archive store: s3 bucket=%s endpoint=%s", cfg.Archive.Bucket, cfg.Archive.Endpoint)
	return s3Store, nil
}
