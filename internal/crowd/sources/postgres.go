package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
	"github.com/MenukaRanasinghe/SmartSL/internal/metrics"
)

// PostgresSource reads the prediction table from a Postgres table with the
// columns place, date, hour, district and busyness_level. date is an integer
// day serial; hour and busyness_level are integers. Any column except place
// may be NULL.
type PostgresSource struct {
	pool   *pgxpool.Pool
	query  string
	logger *zap.Logger
}

func NewPostgresSource(pool *pgxpool.Pool, table string, logger *zap.Logger) *PostgresSource {
	return &PostgresSource{
		pool:   pool,
		query:  selectRowsQuery(table),
		logger: logger,
	}
}

// selectRowsQuery quotes table (optionally schema-qualified) as an identifier.
func selectRowsQuery(table string) string {
	ident := pgx.Identifier(strings.Split(table, "."))
	return fmt.Sprintf(
		"SELECT place, date, hour, district, busyness_level FROM %s", ident.Sanitize())
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Load(ctx context.Context) ([]crowd.Row, error) {
	rows, err := s.pool.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("%w: query predictions: %v", crowd.ErrDatasetUnavailable, err)
	}

	out, skipped, err := collectRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: iterate predictions: %v", crowd.ErrDatasetUnavailable, err)
	}
	if skipped.count > 0 {
		metrics.RowsSkipped(s.Name(), skipped.count)
		// A column of the wrong type fails every row; make that loud.
		s.logger.Error("skipped unreadable prediction rows; date, hour and busyness_level must be integers",
			zap.Int("skipped", skipped.count),
			zap.Int("read", len(out)),
			zap.Error(skipped.first))
	}
	return out, nil
}

type skippedRows struct {
	count int
	first error
}

// collectRows drains rows into prediction rows. Rows that fail to scan are
// counted rather than aborting the load. rows is closed on return.
func collectRows(rows pgx.Rows) ([]crowd.Row, skippedRows, error) {
	defer rows.Close()

	var (
		out     []crowd.Row
		skipped skippedRows
	)
	for rows.Next() {
		var (
			place, district   *string
			date, hour, level *int32
		)
		if err := rows.Scan(&place, &date, &hour, &district, &level); err != nil {
			if skipped.first == nil {
				skipped.first = err
			}
			skipped.count++
			continue
		}
		if place == nil || strings.TrimSpace(*place) == "" {
			continue
		}

		r := crowd.Row{Place: strings.TrimSpace(*place)}
		if district != nil {
			r.District = *district
		}
		r.Date = intPtr(date)
		r.Hour = intPtr(hour)
		if level != nil {
			r.Level = crowd.Level(*level)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, skipped, err
	}
	return out, skipped, nil
}

func intPtr(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
