// Package backend is the REST client for the association's content backend.
// It wraps the response envelope (raw JSON body, 204 as nil, error message
// extraction) and the resource/action URL conventions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds backend client settings
type Config struct {
	BaseURL     string
	FileBaseURL string
	Timeout     time.Duration
	UserAgent   string
}

// Client talks to the backend REST API
type Client struct {
	log   zerolog.Logger
	cfg   Config
	http  *http.Client
	creds CredentialProvider
}

// New creates a backend client. A nil credential provider sends requests
// unauthenticated.
func New(cfg Config, creds CredentialProvider, log zerolog.Logger) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	if strings.TrimSpace(cfg.FileBaseURL) == "" {
		cfg.FileBaseURL = strings.TrimSuffix(cfg.BaseURL, "/api")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "acna-gateway"
	}
	if creds == nil {
		creds = StaticToken("")
	}
	return &Client{
		log:   log.With().Str("client", "backend").Logger(),
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		creds: creds,
	}, nil
}

// FileURL resolves a media path against the configured file base URL
func (c *Client) FileURL(path string) string {
	return FileURL(c.cfg.FileBaseURL, path)
}

// FileURL resolves path against base. Absolute http(s) URLs pass through
// unchanged; an empty path stays empty.
func FileURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(path), "http") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Do sends a request and returns the raw response body. A 204 response
// yields a nil body and nil error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	ctx = defaultCtx(ctx)
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("Backend request failed")
		return nil, &TransportError{Method: method, URL: u, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: u, Err: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return raw, nil
}

// DoJSON sends payload as a JSON body and decodes the response into a
// generic JSON value (numbers kept as json.Number). A 204 yields nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, payload any) (any, error) {
	var (
		body        io.Reader
		contentType string
	)
	if payload != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = &buf
		contentType = "application/json"
	}
	raw, err := c.Do(ctx, method, path, query, body, contentType)
	if err != nil {
		return nil, err
	}
	return decodeBody(raw)
}

// DoMultipart sends fields and files as multipart/form-data
func (c *Client) DoMultipart(ctx context.Context, method, path string, fields map[string]any, files []File) (any, error) {
	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return nil, err
	}
	raw, err := c.Do(ctx, method, path, nil, body, contentType)
	if err != nil {
		return nil, err
	}
	return decodeBody(raw)
}

func decodeBody(raw []byte) (any, error) {
	if raw == nil {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func defaultCtx(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
