package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/common"
	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
)

// HTTPSource downloads the prediction table (.xlsx or .csv) from a URL with
// retries and a circuit breaker.
type HTTPSource struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewHTTPSource(client *http.Client, rawURL string, logger *zap.Logger) *HTTPSource {
	return &HTTPSource{
		url: rawURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newCircuitBreaker("dataset-http"),
		logger:  logger,
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Load(ctx context.Context) ([]crowd.Row, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, s.url, nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", crowd.ErrDatasetUnavailable, s.url, err)
	}
	defer resp.Body.Close()

	if isWorkbook(s.url, resp.Header.Get("Content-Type")) {
		return readWorkbook(resp.Body)
	}
	return readCSV(resp.Body)
}

// isWorkbook decides between the .xlsx and .csv parsers, trusting the URL's
// extension over the content type.
func isWorkbook(rawURL, contentType string) bool {
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".xlsx":
			return true
		case ".csv":
			return false
		}
	}
	return common.HasAny(strings.ToLower(contentType), "spreadsheetml", "ms-excel")
}
