package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/jrsteele09/aicp-web/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 10 << 20
)

// Client is the typed HTTP client for the AICP backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	tokens     oauth2.TokenSource
	tracer     oteltrace.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout on the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithHeader adds a default header sent on every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

func WithTracer(t oteltrace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[apiclient New] base URL must be http or https: %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		tracer: telemetry.Tracer("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithTokenSource returns a copy of the client that sends "Authorization: Bearer <token>"
// on authenticated operations. The receiver is not modified.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// call describes one remote operation
type call[T any] struct {
	op       string // operation name used in logs
	sentinel error  // error returned to the caller on any failure
	method   string
	route    string // path template, used as span name
	path     string // concrete escaped path
	body     any
	auth     bool
	// complete reports whether a decoded payload carries the data the operation exists to return
	complete func(T) bool
}

// do issues exactly one HTTP request and applies the uniform validation rule: a transport
// error, a non 2xx status or an absent payload fails the call with the operation's sentinel.
func do[T any](ctx context.Context, c *Client, cl call[T]) (T, error) {
	var zero T

	ctx, span := c.tracer.Start(ctx, cl.method+" "+cl.route,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.method", cl.method),
			attribute.String("http.route", cl.route),
			attribute.String("aicp.operation", cl.op),
		))
	defer span.End()

	status, payload, err := c.roundTrip(ctx, cl.method, cl.path, cl.body, cl.auth)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err == nil {
		payload = bytes.TrimSpace(payload)
		if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
			err = ErrNoData
		}
	}

	var out T
	if err == nil {
		if decodeErr := json.Unmarshal(payload, &out); decodeErr != nil {
			err = fmt.Errorf("decode response: %w", decodeErr)
		} else if cl.complete != nil && !cl.complete(out) {
			err = ErrNoData
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, cl.sentinel.Error())
		logging.FromContext(ctx).Error().
			Err(err).
			Str("op", cl.op).
			Str("method", cl.method).
			Str("path", cl.path).
			Int("status", status).
			Msg(cl.sentinel.Error())
		return zero, fmt.Errorf("%w: %w", cl.sentinel, err)
	}
	return out, nil
}

// roundTrip performs the request and returns the status and the raw body of a 2xx response
func (c *Client) roundTrip(ctx context.Context, method, path string, body any, auth bool) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = c.headers.Clone()
	if rid := logging.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	if auth {
		if c.tokens == nil {
			return 0, nil, errors.New("no access token available")
		}
		tok, err := c.tokens.Token()
		if err != nil {
			return 0, nil, fmt.Errorf("access token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
	}
	return resp.StatusCode, data, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
