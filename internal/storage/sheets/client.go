// Package sheets is a storage backend for a spreadsheet-style row service:
// a remote API exposing tables of rows over HTTPS, authenticated with a
// bearer token. The log listing goes through a short-lived read cache that is
// invalidated after every write; the open-entry lookup always hits the
// service so start/end decisions never act on a cached view.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a row-service client. The token is carried on every
// request via an oauth2 static token source.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sheet API request", "method", method, "path", path)

	var resp *http.Response
	maxRetries := 3
	requestStart := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries {
				c.logger.Error("sheet API transport error", "method", method, "path", path, "error", err, "elapsed", time.Since(requestStart))
				return nil, 0, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("sheet API transport error, retrying", "method", method, "path", path, "attempt", attempt+1, "error", err)
			time.Sleep(backoff(attempt))
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("sheet API failed after retries", "method", method, "path", path, "status", resp.StatusCode, "attempts", maxRetries+1)
				return nil, resp.StatusCode, fmt.Errorf("sheet API returned status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.logger.Debug("sheet API retryable error", "method", method, "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			time.Sleep(backoff(attempt))
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("sheet API response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, resp.StatusCode, fmt.Errorf("sheet API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return respBody, resp.StatusCode, nil
}

func (c *Client) getRows(ctx context.Context, table string, params url.Values, out interface{}) error {
	path := "/tables/" + table + "/rows"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	data, _, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s rows: %w", table, err)
	}
	return nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
