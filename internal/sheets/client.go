package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/edupricing/availability-go/internal/config"
	apperrors "github.com/edupricing/availability-go/internal/errors"
	"github.com/edupricing/availability-go/internal/logger"
	"github.com/edupricing/availability-go/internal/metrics"
)

// defaultBaseURL is the spreadsheet API root. Overridable for tests.
const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// Request kinds recorded in metrics.
const (
	kindMetadata = "metadata"
	kindValues   = "values"
	kindGrid     = "grid"
)

// Client is the HTTP client for the spreadsheet API. Every request is
// spaced by the rate limiter and authenticated with a bearer token the
// caller obtained via AccessToken. Requests are never retried: a failed
// call surfaces as UpstreamError and the orchestrator decides whether
// stale cache can cover for it.
type Client struct {
	httpClient  *http.Client
	limiter     *Limiter
	tokenSource oauth2.TokenSource
	baseURL     string
	metrics     *metrics.Metrics
	log         *logger.Logger
}

// NewClient creates a spreadsheet API client from the configured timeout
// and minimum inter-request delay.
func NewClient(cfg *config.Config, ts oauth2.TokenSource, m *metrics.Metrics, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.SheetsTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:     NewLimiter(cfg.SheetsMinDelay),
		tokenSource: ts,
		baseURL:     defaultBaseURL,
		metrics:     m,
		log:         log.WithModule("sheets"),
	}
}

// SetBaseURL points the client at a different API root. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// AccessToken returns a valid bearer token, exchanging or refreshing
// credentials as needed. The orchestrator calls this once per ingestion
// and shares the token across the parallel tab fetches.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("obtain access token: %w", err)
	}
	return token.AccessToken, nil
}

// get performs one rate-limited GET against the spreadsheet API and
// returns the response body. Any non-2xx status becomes an UpstreamError
// carrying that status; transport failures (including client timeouts)
// become an UpstreamError with status 0.
func (c *Client) get(ctx context.Context, kind, rawURL, token string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordSheetsRequest(kind, "error", time.Since(start).Seconds())
		return nil, apperrors.NewUpstreamError(rawURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	status := strconv.Itoa(resp.StatusCode)
	c.metrics.RecordSheetsRequest(kind, status, time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordUpstreamStatus(status)
		c.log.WithField("status", resp.StatusCode).WithField("kind", kind).
			Warn("spreadsheet API returned non-2xx status")
		return nil, apperrors.NewUpstreamError(rawURL, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError(rawURL, resp.StatusCode, fmt.Errorf("read response body: %w", err))
	}
	return body, nil
}
