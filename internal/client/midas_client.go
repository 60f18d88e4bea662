package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUpstreamStatus is returned when the chart API answers with a non-200 status
var ErrUpstreamStatus = errors.New("upstream returned non-OK status")

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// MidasClient fetches chart series from the Midas market data API
type MidasClient struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     uint64
	userAgent      string
	acceptLanguage string
	logger         *zap.Logger

	// initialInterval is the first retry delay
	initialInterval time.Duration
}

// NewMidasClient creates a new Midas API client
func NewMidasClient(cfg config.MidasConfig, logger *zap.Logger) *MidasClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
		burst = int(cfg.RequestsPerSec)
		if burst < 1 {
			burst = 1
		}
	}

	return &MidasClient{
		baseURL:         cfg.BaseURL,
		httpClient:      &http.Client{Timeout: timeout},
		limiter:         rate.NewLimiter(limit, burst),
		maxRetries:      cfg.MaxRetries,
		userAgent:       cfg.UserAgent,
		acceptLanguage:  cfg.AcceptLanguage,
		logger:          logger,
		initialInterval: 300 * time.Millisecond,
	}
}

// FetchChart returns the raw chart payload for a symbol and time range.
// Transport errors and 5xx responses are retried with exponential backoff.
func (c *MidasClient) FetchChart(ctx context.Context, symbol, timeRange string) ([]byte, error) {
	params := url.Values{}
	params.Set("code", symbol)
	params.Set("time", timeRange)
	reqURL := fmt.Sprintf("%s/midas_stock_time?%s", c.baseURL, params.Encode())

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "*/*")
		if c.acceptLanguage != "" {
			req.Header.Set("Accept-Language", c.acceptLanguage)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("Midas request failed",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.Int("attempt", attempt),
				zap.Duration("elapsed", time.Since(start)))
			return fmt.Errorf("failed to fetch chart: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
			c.logger.Warn("Midas non-OK response",
				zap.Int("statusCode", resp.StatusCode),
				zap.String("symbol", symbol),
				zap.Int("attempt", attempt))
			if resp.StatusCode >= http.StatusInternalServerError {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("failed to read chart response: %w", err)
		}
		body = data
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		c.logger.Error("Failed to fetch chart from Midas",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("time", timeRange))
		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	return body, nil
}
