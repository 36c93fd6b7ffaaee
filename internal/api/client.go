// Package api talks to the Scout REST backend. Every endpoint returns a
// Response envelope instead of a Go error; callers branch on Success.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	msgNetwork = "Network response was not ok"
	msgNoData  = "No data loaded"

	// statusRequestFailed is reported when no HTTP response was obtained.
	statusRequestFailed = http.StatusBadRequest
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// call describes one round trip. Exactly one of jsonBody and body is used.
type call struct {
	method      string
	path        string
	query       url.Values
	rawQuery    string
	jsonBody    any
	body        io.Reader
	contentType string

	failMsg  string
	emptyMsg string
	okMsg    string
}

func (r call) failure() string {
	if r.failMsg != "" {
		return r.failMsg
	}
	return msgNetwork
}

func (r call) empty() string {
	if r.emptyMsg != "" {
		return r.emptyMsg
	}
	if r.failMsg != "" {
		return r.failMsg
	}
	return msgNoData
}

func (c *Client) endpoint(r call) string {
	u := c.baseURL + r.path
	q := r.rawQuery
	if len(r.query) > 0 {
		if q != "" {
			q += "&"
		}
		q += r.query.Encode()
	}
	if q != "" {
		u += "?" + q
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, r call) (*http.Request, error) {
	body := r.body
	contentType := r.contentType
	if r.jsonBody != nil {
		buf, err := json.Marshal(r.jsonBody)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// roundTrip performs the request and returns the status and raw body. A
// non-nil error means no response was obtained.
func (c *Client) roundTrip(ctx context.Context, r call) (int, []byte, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return 0, nil, err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", r.method, "path", r.path, "err", err)
		return 0, nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("read response failed", "method", r.method, "path", r.path, "status", resp.StatusCode, "err", err)
		return 0, nil, fmt.Errorf("read %s %s: %w", r.method, r.path, err)
	}
	level := slog.LevelDebug
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "request", "method", r.method, "path", r.path, "status", resp.StatusCode, "duration", time.Since(start))
	return resp.StatusCode, data, nil
}

// fetch runs r, decodes a 2xx body into dst and asks pick for the payload.
// pick reporting false is a semantic failure: status 200, Success false.
func fetch[T any](ctx context.Context, c *Client, r call, dst any, pick func() (T, bool)) Response[T] {
	status, body, err := c.roundTrip(ctx, r)
	if err != nil {
		return failed[T](statusRequestFailed, r.failure())
	}
	if status < 200 || status > 299 {
		msg := r.failure()
		if detail := errorDetail(body); detail != "" {
			msg = detail
		}
		return failed[T](status, msg)
	}
	if dst != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, dst); err != nil {
			c.logger.Warn("decode response failed", "method", r.method, "path", r.path, "err", err)
			return failed[T](http.StatusOK, r.empty())
		}
	}
	data, ok := pick()
	if !ok {
		return failed[T](http.StatusOK, r.empty())
	}
	return Response[T]{Data: data, Message: r.okMsg, StatusCode: http.StatusOK, Success: true}
}

// listing fetches a {"data": [...]} body. The payload is never nil.
func listing[T any](ctx context.Context, c *Client, r call) Response[[]T] {
	var out struct {
		Data []T `json:"data"`
	}
	resp := fetch(ctx, c, r, &out, func() ([]T, bool) { return out.Data, true })
	if resp.Data == nil {
		resp.Data = []T{}
	}
	return resp
}

func errorDetail(body []byte) string {
	var out struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &out); err != nil || len(out.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(out.Detail, &s); err == nil {
		return s
	}
	// FastAPI validation errors carry a list of objects.
	return string(out.Detail)
}

func (c *Client) Health(ctx context.Context) Response[string] {
	var out struct {
		Health string `json:"health"`
	}
	return fetch(ctx, c, call{method: http.MethodGet, path: "/health"}, &out, func() (string, bool) {
		return out.Health, out.Health != ""
	})
}
