package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
	"github.com/caldera-ops/opsync/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20 // 32 MiB

// Ensure Connector implements the interface.
var _ driven.SourceFetcher = (*Connector)(nil)

// Config describes one source endpoint.
type Config struct {
	// Endpoint is the URL rows are fetched from.
	Endpoint string

	// Method is GET or POST. Empty defaults to GET.
	Method string

	// BearerToken, when set, is sent as a static bearer credential.
	BearerToken string

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration

	// RateLimit configures the request rate limiter.
	RateLimit RateLimitConfig
}

// Connector fetches raw rows from one external tabular endpoint.
type Connector struct {
	cfg         Config
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// envelope is the wrapped response shape some source deployments emit.
type envelope struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Data    []domain.RawRecord `json:"data"`
}

// New creates a connector for the configured endpoint.
func New(cfg Config) *Connector {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var client *http.Client
	if cfg.BearerToken != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.BearerToken},
		)
		client = oauth2.NewClient(context.Background(), ts)
		client.Timeout = timeout
	} else {
		client = &http.Client{Timeout: timeout}
	}

	return &Connector{
		cfg:         cfg,
		httpClient:  client,
		rateLimiter: NewRateLimiter(cfg.RateLimit),
	}
}

// Fetch retrieves all rows from the endpoint in source order.
func (c *Connector) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	method := strings.ToUpper(c.cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader("{}")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("resthttp: %s %s", method, c.cfg.Endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.rateLimiter.RecordRateLimitError(retryAfter)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			URL:        c.cfg.Endpoint,
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return parseRows(raw)
}

// Close releases idle connections held by the HTTP client.
func (c *Connector) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// parseRows decodes a response body as either a raw row array or a
// {status, message, data} envelope.
func parseRows(body []byte) ([]domain.RawRecord, error) {
	var rows []domain.RawRecord
	if err := json.Unmarshal(body, &rows); err == nil {
		if len(rows) == 0 {
			return nil, domain.ErrEmptyDataset
		}
		return rows, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if strings.EqualFold(env.Status, "error") {
		if env.Message != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceError, env.Message)
		}
		return nil, domain.ErrSourceError
	}
	if env.Status == "" && env.Data == nil {
		return nil, fmt.Errorf("%w: neither row array nor envelope", domain.ErrMalformedResponse)
	}
	if len(env.Data) == 0 {
		return nil, domain.ErrEmptyDataset
	}
	return env.Data, nil
}
