package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/phantompay/invoice-cli/internal/extract"
	"github.com/phantompay/invoice-cli/internal/pdftext"
	"github.com/phantompay/invoice-cli/internal/pipeline"
	"github.com/phantompay/invoice-cli/internal/store"
	"github.com/phantompay/invoice-cli/internal/textsource"
	"github.com/phantompay/invoice-cli/pkg/convex"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "invoice-cli.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initBuilder() (*extract.Builder, error) {
	if cfg.Pipeline.RulesFile == "" {
		return extract.NewBuilder(nil), nil
	}
	rules, err := extract.LoadRules(cfg.Pipeline.RulesFile)
	if err != nil {
		return nil, err
	}
	return extract.NewBuilder(rules), nil
}

func initResolver() (*textsource.Resolver, error) {
	extractor, err := pdftext.NewExtractor(cfg.PDFText)
	if err != nil {
		return nil, err
	}
	return textsource.NewResolver(extractor), nil
}

func initUploader() convex.Client {
	return convex.NewClient(cfg.Convex.URL,
		convex.WithProcessFunction(cfg.Convex.Function),
		convex.WithTimeout(time.Duration(cfg.Convex.TimeoutSecs)*time.Second),
		convex.WithRateLimit(cfg.Convex.RequestsPerSecond),
	)
}

// initPipeline wires the batch pipeline from config. The store is
// optional: a failure to open it disables run history rather than
// blocking the batch.
func initPipeline(ctx context.Context, withUploader bool) (*pipeline.Pipeline, func(), error) {
	resolver, err := initResolver()
	if err != nil {
		return nil, nil, err
	}
	builder, err := initBuilder()
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{}
	if withUploader {
		opts = append(opts, pipeline.WithUploader(initUploader()))
	}

	cleanup := func() {}
	if st, err := initStore(ctx); err != nil {
		zap.L().Warn("run history disabled", zap.Error(err))
	} else if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run history disabled", zap.Error(err))
		_ = st.Close()
	} else {
		opts = append(opts, pipeline.WithRecorder(st))
		cleanup = func() { _ = st.Close() }
	}

	return pipeline.New(resolver, builder, opts...), cleanup, nil
}
