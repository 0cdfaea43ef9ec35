package boi

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"form1325/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DateLayout is the day format of the series query and its rows.
	DateLayout   = "2006-01-02"
	seriesFormat = "csv-series"
)

// RestClientInterface defines the interface for the Bank of Israel statistics client.
type RestClientInterface interface {
	Series(ctx context.Context, currency string, from, to time.Time) (map[string]decimal.Decimal, error)
}

// RestClient is a client for the Bank of Israel SDMX statistics API.
// It implements the RestClientInterface.
type RestClient struct {
	client      *resty.Client
	logger      *zap.Logger
	limiter     *rate.Limiter
	maxAttempts int
}

// ensure RestClient implements the interface
var _ RestClientInterface = (*RestClient)(nil)

// NewRestClient creates a new Bank of Israel API client.
func NewRestClient(cfg *config.Rates, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &RestClient{
		client:      client,
		logger:      logger,
		limiter:     limiter,
		maxAttempts: attempts,
	}
}

// SeriesCode is the representative rate series of currency against the shekel.
func SeriesCode(currency string) string {
	return fmt.Sprintf("RER_%s_ILS", currency)
}

// Series fetches the published daily representative rates of currency
// between from and to, inclusive. Days without a publication are absent.
func (c *RestClient) Series(ctx context.Context, currency string, from, to time.Time) (map[string]decimal.Decimal, error) {
	req := c.client.R().
		SetQueryParams(map[string]string{
			"c[SERIES_CODE]": SeriesCode(currency),
			"format":         seriesFormat,
			"startperiod":    from.Format(DateLayout),
			"endperiod":      to.Format(DateLayout),
		}).
		SetHeader("Accept", "text/csv")

	resp, err := c.doRequest(ctx, http.MethodGet, "/", req)
	if err != nil {
		c.logger.Error("Failed to get exchange rate series", zap.String("currency", currency), zap.Error(err))
		return nil, fmt.Errorf("failed to get %s series: %w", SeriesCode(currency), err)
	}

	series, err := ParseSeries(bytes.NewReader(resp.Body()), currency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s series: %w", SeriesCode(currency), err)
	}
	c.logger.Debug("Fetched exchange rate series",
		zap.String("currency", currency),
		zap.Int("observations", len(series)),
	)
	return series, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	req.SetContext(ctx)
	for i := 0; i < c.maxAttempts; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}
		if i == c.maxAttempts-1 {
			break
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil {
		return nil, fmt.Errorf("request failed after %d attempts with status %s", c.maxAttempts, resp.Status())
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, err)
}
