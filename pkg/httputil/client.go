package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/histolib/pkg/config"
	"github.com/wonny/histolib/pkg/logger"
)

// Client is an HTTP client wrapper with request logging.
// Requests are issued exactly once; callers own any fallback behavior.
// ⭐ SSOT: 모든 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	userAgent  string
}

// New creates a new HTTP client from config
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(cfg *config.Config, log *logger.Logger) *Client {
	timeout := cfg.API.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		userAgent:  "histolib/1.0",
	}
}

// NewWithHTTPClient wraps an existing http.Client (httptest servers, custom transports)
func NewWithHTTPClient(hc *http.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: hc,
		logger:     log,
		userAgent:  "histolib/1.0",
	}
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return c.do(req)
}

// do executes the request once and logs the outcome
func (c *Client) do(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	url := req.URL.String()

	c.logger.WithFields(map[string]interface{}{
		"method": req.Method,
		"url":    url,
	}).Debug("HTTP request started")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method":   req.Method,
			"url":      url,
			"duration": duration,
			"error":    err.Error(),
		}).Warn("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      req.Method,
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// IsSuccess reports whether the status is in the 2xx range
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
