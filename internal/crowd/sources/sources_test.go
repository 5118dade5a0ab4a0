package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/config"
	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
)

const sampleCSV = `place,date,hour,district,busyness_level
Galle Face,45726,10,Colombo,1
Lotus Tower,45726,11,Colombo,3
`

func writeWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	records := [][]interface{}{
		{"place", "date", "hour", "district", "busyness_level"},
		{"Galle Face", 45726, 10, "Colombo", 1},
		{"Sri Dalada Maligawa", 45726.5, 9, "Kandy", 4},
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		rec := rec
		require.NoError(t, f.SetSheetRow(sheet, cell, &rec))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestExcelSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.xlsx")
	writeWorkbook(t, path)

	src := NewExcelSource(path, zap.NewNop())
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Galle Face", rows[0].Place)
	assert.Equal(t, 45726, *rows[0].Date)
	assert.Equal(t, 10, *rows[0].Hour)
	assert.Equal(t, crowd.LevelQuiet, rows[0].Level)

	assert.Equal(t, "Kandy", rows[1].District)
	assert.Equal(t, 45726, *rows[1].Date)
	assert.Equal(t, crowd.LevelVeryBusy, rows[1].Level)
}

func TestExcelSourceMissingFile(t *testing.T) {
	src := NewExcelSource(filepath.Join(t.TempDir(), "nope.xlsx"), zap.NewNop())

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, crowd.ErrDatasetUnavailable)
}

func TestExcelSourceCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := NewExcelSource(path, zap.NewNop()).Load(context.Background())
	assert.ErrorIs(t, err, crowd.ErrDatasetUnavailable)
}

func TestCSVSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	rows, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Lotus Tower", rows[1].Place)
	assert.Equal(t, crowd.LevelBusy, rows[1].Level)
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	assert.ErrorIs(t, err, crowd.ErrDatasetUnavailable)
}

func TestHTTPSourceLoadCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL+"/predictions.csv", zap.NewNop())
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Galle Face", rows[0].Place)
}

func TestHTTPSourceLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.xlsx")
	writeWorkbook(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	rows, err := NewHTTPSource(srv.Client(), srv.URL+"/download", zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestHTTPSourceClientErrorIsNotRetried(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.Client(), srv.URL+"/predictions.csv", zap.NewNop()).Load(context.Background())
	assert.ErrorIs(t, err, crowd.ErrDatasetUnavailable)
	assert.Equal(t, 1, hits)
}

func TestDoRequestWithResilienceRetriesServerErrors(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{
		Client:  srv.Client(),
		Backoff: BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
	}
	resp, err := doRequestWithResilience(context.Background(), cfg, newCircuitBreaker("test"), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 3, hits)
}

func TestIsWorkbook(t *testing.T) {
	tests := []struct {
		url         string
		contentType string
		want        bool
	}{
		{"https://example.com/data.xlsx", "", true},
		{"https://example.com/data.XLSX?token=1", "text/plain", true},
		{"https://example.com/data.csv", "application/vnd.ms-excel", false},
		{"https://example.com/download", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"https://example.com/download", "text/csv", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isWorkbook(tt.url, tt.contentType), tt.url)
	}
}

func TestSelectRowsQuery(t *testing.T) {
	assert.Equal(t,
		`SELECT place, date, hour, district, busyness_level FROM "crowd_predictions"`,
		selectRowsQuery("crowd_predictions"))
	assert.Equal(t,
		`SELECT place, date, hour, district, busyness_level FROM "analytics"."crowd"`,
		selectRowsQuery("analytics.crowd"))
	assert.True(t, strings.Contains(selectRowsQuery(`bad"name`), `"bad""name"`))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	loader, closeFn, err := New(ctx, config.DatasetConfig{Source: config.SourceExcel, Path: "x.xlsx"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "xlsx", loader.Name())
	closeFn()

	loader, _, err = New(ctx, config.DatasetConfig{Source: config.SourceCSV, Path: "x.csv"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "csv", loader.Name())

	loader, _, err = New(ctx, config.DatasetConfig{Source: config.SourceHTTP, URL: "http://localhost/x.csv", HTTPTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "http", loader.Name())

	_, closeFn, err = New(ctx, config.DatasetConfig{Source: "ftp"}, zap.NewNop())
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
