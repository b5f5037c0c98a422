package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds one feed retrieval, body included.
	DefaultTimeout = 15 * time.Second

	// maxFeedBytes caps how much of a response body is read.
	maxFeedBytes = 4 << 20
)

// Client retrieves raw feed documents over HTTPS.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

// NewClient creates a feed client. A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{},
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Fetch performs one GET of https://<host><locator> and returns the body.
// Non-2xx statuses, transport failures, and timeouts are returned as *FetchError.
// No retries are attempted.
func (c *Client) Fetch(ctx context.Context, host, locator string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hostURL(host)+locator, nil)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Locator: locator, Timeout: isTimeout(ctx, err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFeedBytes))
		return nil, &FetchError{Locator: locator, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, &FetchError{Locator: locator, Timeout: isTimeout(ctx, err), Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// hostURL accepts a bare host ("weather.gc.ca") or a full origin
// ("http://127.0.0.1:8080") and returns the origin without a trailing slash.
func hostURL(host string) string {
	if strings.Contains(host, "://") {
		return strings.TrimRight(host, "/")
	}
	return "https://" + strings.TrimRight(host, "/")
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
