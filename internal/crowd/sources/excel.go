package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
)

// ExcelSource reads the prediction table from the first sheet of an .xlsx file.
type ExcelSource struct {
	path   string
	logger *zap.Logger
}

func NewExcelSource(path string, logger *zap.Logger) *ExcelSource {
	return &ExcelSource{path: path, logger: logger}
}

func (s *ExcelSource) Name() string {
	return "xlsx"
}

func (s *ExcelSource) Load(ctx context.Context) ([]crowd.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("prediction workbook not found", zap.String("path", s.path))
		}
		return nil, fmt.Errorf("%w: %v", crowd.ErrDatasetUnavailable, err)
	}
	defer f.Close()

	return readWorkbook(f)
}

// readWorkbook parses the first sheet of an .xlsx stream. Raw cell values are
// used so date columns come back as day serials rather than formatted text.
func readWorkbook(r io.Reader) ([]crowd.Row, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", crowd.ErrDatasetUnavailable, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return []crowd.Row{}, nil
	}

	table, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", crowd.ErrDatasetUnavailable, sheets[0], err)
	}
	rows, err := parseTable(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crowd.ErrDatasetUnavailable, err)
	}
	return rows, nil
}
