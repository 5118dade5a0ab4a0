package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/config"
	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
)

// New builds the loader selected by cfg.Source. The returned close function
// releases any connections the loader holds and is never nil.
func New(ctx context.Context, cfg config.DatasetConfig, logger *zap.Logger) (crowd.Loader, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case config.SourceExcel:
		return NewExcelSource(cfg.Path, logger), noop, nil
	case config.SourceCSV:
		return NewCSVSource(cfg.Path), noop, nil
	case config.SourceHTTP:
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		return NewHTTPSource(client, cfg.URL, logger), noop, nil
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres pool init: %w", err)
		}
		// A failed ping is not fatal: queries degrade to empty results until
		// the database comes back.
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("postgres ping failed", zap.Error(err))
		}
		return NewPostgresSource(pool, cfg.Table, logger), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}
