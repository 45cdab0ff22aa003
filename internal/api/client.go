// Package api is the REST client for the metering backend. Every call
// carries the static API key; authenticated calls add the bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"overhead/internal/config"
)

// Client speaks to the backend. TokenFunc supplies the current bearer
// credential; OnUnauthorized is the single client-wide 401 policy (popup
// plus logout), fired only for calls that actually carried a token so a
// failed login does not tear down anything.
type Client struct {
	BaseURL        string
	APIKey         string
	HTTP           *http.Client
	Logger         *slog.Logger
	Limiter        *rate.Limiter
	TokenFunc      func() string
	OnUnauthorized func()

	timeout time.Duration
}

func New(cfg config.API, logger *slog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:  cfg.Key,
		HTTP:    &http.Client{Timeout: cfg.Timeout},
		Logger:  logger,
		Limiter: rate.NewLimiter(rate.Limit(cfg.Rate.PerSecond), cfg.Rate.Burst),
		timeout: cfg.Timeout,
	}
}

// postJSON sends body as JSON and decodes the reply into out (JSON when out
// is a struct/map pointer, raw text when out is *string, discarded when
// nil).
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(raw)
	}
	return c.do(ctx, http.MethodPost, path, nil, buf, "application/json", out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, "", out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return &Error{Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("API-KEY", c.APIKey)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	authenticated := false
	if c.TokenFunc != nil {
		if token := c.TokenFunc(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	c.Logger.Debug("api request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Err: err}
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && authenticated && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return &Error{Status: resp.StatusCode, Body: string(raw)}
	}

	switch dst := out.(type) {
	case nil:
	case *string:
		*dst = string(raw)
	default:
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, dst); err != nil {
				return &Error{Status: resp.StatusCode, Body: string(raw), Err: err}
			}
		}
	}
	return nil
}

func (c *Client) requestTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return 15 * time.Second
}
