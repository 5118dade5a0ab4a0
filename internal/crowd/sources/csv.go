package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
)

// CSVSource reads the prediction table from a CSV export with a header row.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string {
	return "csv"
}

func (s *CSVSource) Load(ctx context.Context) ([]crowd.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crowd.ErrDatasetUnavailable, err)
	}
	defer f.Close()

	return readCSV(f)
}

func readCSV(r io.Reader) ([]crowd.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	table, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", crowd.ErrDatasetUnavailable, err)
	}
	rows, err := parseTable(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crowd.ErrDatasetUnavailable, err)
	}
	return rows, nil
}
