// Package api is the client for the order persistence service. Every record
// on the wire is snake_case; this package maps it to the orders model.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-order-console/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx response. Detail is the server's "detail" message
// when it sent one.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Detail string
	Body   string
}

func (e *StatusError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Body
	}
	if msg == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, msg)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.ClientMetrics
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// call describes one request. route is the path template used as the metrics
// label, path the concrete escaped path.
type call struct {
	method string
	route  string
	path   string
	query  url.Values
	in     any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	if cl.in != nil {
		b, err := json.Marshal(cl.in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", cl.method, cl.route, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", cl.method, cl.route, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if cl.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	label := cl.method + " " + cl.route
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Observe(label, "error", time.Since(start))
		c.log.Error().Err(err).Str("request_id", reqID).Str("route", label).Msg("api call failed")
		return fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()
	c.metrics.Observe(label, strconv.Itoa(resp.StatusCode), time.Since(start))
	c.log.Debug().
		Str("request_id", reqID).
		Str("route", label).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{
			Method: cl.method,
			Path:   cl.path,
			Code:   resp.StatusCode,
			Detail: detail(raw),
			Body:   strings.TrimSpace(string(raw)),
		}
	}
	if cl.out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

// detail pulls a string "detail" out of an error body. Validation errors
// carry a list there instead and are left to Body.
func detail(raw []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &e) != nil || len(e.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(e.Detail, &s) != nil {
		return ""
	}
	return s
}

func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
