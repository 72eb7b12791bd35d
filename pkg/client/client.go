// Package client is a Go client for the course service REST API. Reads are
// cached by tag and mutations invalidate the tags they affect, so Watch
// subscriptions refetch after every successful write.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/joho/godotenv"
)

// EnvBaseURL names the variable holding the API root, e.g. http://localhost:8080/api/v1
const EnvBaseURL = "COURSE_API_URL"

const defaultTimeout = 30 * time.Second

type Config struct {
	// BaseURL defaults to $COURSE_API_URL
	BaseURL    string
	HTTPClient *http.Client
	// SessionFile is where remembered sessions are kept; empty disables persistence
	SessionFile string
	// CacheTTL bounds how long reads are served from cache; zero keeps them until invalidated
	CacheTTL time.Duration
	Logger   *slog.Logger
	// OnSessionExpired runs after an expired session was cleared
	OnSessionExpired func()
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	sessions  *Sessions
	cache     *cache.TagCache
	logger    *slog.Logger
	onExpired func()
}

// New creates a client. A .env file in the working directory is honoured.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		cfg.BaseURL = os.Getenv(EnvBaseURL)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s is not set", EnvBaseURL)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL:   base,
		http:      cfg.HTTPClient,
		sessions:  NewSessions(cfg.SessionFile),
		cache:     cache.NewTagCache(cache.NewMemoryStore(), cfg.CacheTTL, cfg.Logger),
		logger:    cfg.Logger,
		onExpired: cfg.OnSessionExpired,
	}, nil
}

// Sessions exposes the session store, e.g. to sign in or out.
func (c *Client) Sessions() *Sessions {
	return c.sessions
}

// Cache exposes the tag cache, mainly for Watch subscriptions.
func (c *Client) Cache() *cache.TagCache {
	return c.cache
}

// Logout forgets the session and every cached read.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	return c.cache.Reset(ctx)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session := c.sessions.Current(); session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	return req, nil
}

// send performs the request and turns failures into the client error taxonomy.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}
	defer resp.Body.Close()

	err = decodeError(resp)
	// watchers refetch during the reset; only the first expiry clears state
	if errors.Is(err, ErrSessionExpired) && c.sessions.Current() != nil {
		c.expire(req.Context())
	}
	return nil, err
}

func (c *Client) expire(ctx context.Context) {
	if err := c.sessions.Clear(); err != nil {
		c.logger.Warn("Failed to clear expired session", "error", err)
	}
	if err := c.cache.Reset(ctx); err != nil {
		c.logger.Warn("Failed to reset cache", "error", err)
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Download is a binary response with its suggested filename.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (c *Client) download(ctx context.Context, path string, query url.Values) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
	}
	d := &Download{ContentType: resp.Header.Get("Content-Type"), Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	return d, nil
}
