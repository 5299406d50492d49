package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sitepicker/internal/metro"
	"github.com/sells-group/sitepicker/internal/store"
	"github.com/sells-group/sitepicker/internal/upstream"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "sitepicker.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initDirectory loads the facility directory override when one is given,
// falling back to metro.directory_path and then the built-in directory.
func initDirectory(path string) (*metro.Directory, error) {
	if path == "" {
		path = cfg.Metro.DirectoryPath
	}
	if path == "" {
		return metro.DefaultDirectory(), nil
	}
	dir, err := metro.LoadDirectory(path)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("loaded facility directory", zap.String("path", path), zap.Int("facilities", len(dir.Facilities)))
	return dir, nil
}

// initUpstream returns nil when no upstream base URL is configured.
func initUpstream() upstream.Client {
	u := cfg.Upstream
	if u.BaseURL == "" {
		return nil
	}
	opts := []upstream.Option{upstream.WithAPIKey(u.APIKey)}
	if u.RateLimit > 0 {
		opts = append(opts, upstream.WithRateLimit(u.RateLimit))
	}
	if u.TimeoutSecs > 0 {
		opts = append(opts, upstream.WithTimeout(time.Duration(u.TimeoutSecs)*time.Second))
	}
	if u.MaxAttempts > 0 {
		opts = append(opts, upstream.WithMaxAttempts(u.MaxAttempts))
	}
	return upstream.NewClient(u.BaseURL, opts...)
}
