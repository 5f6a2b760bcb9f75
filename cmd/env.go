package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/province-map/internal/boundary"
	"github.com/sells-group/province-map/internal/config"
	"github.com/sells-group/province-map/internal/fetcher"
	"github.com/sells-group/province-map/internal/province"
	"github.com/sells-group/province-map/internal/provision"
	"github.com/sells-group/province-map/internal/store"
)

// appEnv bundles the components the subcommands share.
type appEnv struct {
	Provisioner *provision.Provisioner
	Store       store.Store
}

// Close releases the history database, if open.
func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

func initEnv(ctx context.Context, c *config.Config, mode string) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	env := &appEnv{}
	opts := provision.Options{
		Path: c.Data.GeoJSONPath,
		URLs: c.Data.GeoJSONURLs,
	}

	if c.Store.DatabaseURL != "" {
		st, err := store.NewSQLite(c.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		env.Store = st
		opts.Recorder = st
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    c.Fetch.UserAgent,
		Timeout:      time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxAttempts:  c.Fetch.MaxAttempts,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	p, err := provision.New(f, opts)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Provisioner = p
	return env, nil
}

// loadRecords ensures the boundary dataset and joins the cultural metadata
// onto it.
func (e *appEnv) loadRecords(ctx context.Context, provincesPath string) (*boundary.Dataset, []province.Record, error) {
	ds, err := e.Provisioner.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	provinces, err := province.LoadFile(ctx, provincesPath)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load cultural metadata")
	}

	key := boundary.ResolveFeatureKey(ds)
	records := province.BuildRecords(provinces, province.FeatureNameMap(ds, key))
	if missing := province.Unmatched(records); len(missing) > 0 {
		zap.L().Warn("provinces without a boundary feature",
			zap.String("feature_key", key),
			zap.Strings("provinces", missing),
		)
	}
	return ds, records, nil
}
