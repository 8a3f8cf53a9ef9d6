package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client executes authenticated requests against a remote log collector.
type Client struct {
	baseURL    string
	httpClient *http.Client
	name       string
	token      string
}

// NewClient constructs a collector client that authenticates using Basic Auth.
func NewClient(baseURL, name, token string) (*Client, error) {
	normalizedURL, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, errors.New("client name is required")
	}

	if token == "" {
		return nil, errors.New("client token is required")
	}

	return &Client{
		baseURL: normalizedURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		name:  name,
		token: token,
	}, nil
}

// WithHTTPClient overrides the default http.Client. Primarily useful for testing.
func (c *Client) WithHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Heartbeat(ctx context.Context) error {
	path := fmt.Sprintf("/api/sources/%s/heartbeat", url.PathEscape(c.name))
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return fmt.Errorf("create heartbeat request: %w", err)
	}

	return c.do(req)
}

// SendLog posts one JSON encoded log entry.
func (c *Client) SendLog(ctx context.Context, body io.Reader) error {
	path := fmt.Sprintf("/api/sources/%s/logs", url.PathEscape(c.name))
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return fmt.Errorf("create send log request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("backend base URL is required")
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid backend base URL: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid backend base URL: %s", raw)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return strings.TrimSuffix(parsed.String(), "/"), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(c.name, c.token)
	return req, nil
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return fmt.Errorf("execute request: network error contacting %s: %w", req.URL.Hostname(), err)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("execute request: %w", urlErr.Err)
		}
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return nil
}
