// Package gateway issues authenticated requests against the agenda backend and
// decodes every response into an envelope. It never returns Go errors for
// envelope calls: transport and parse failures become the internal_error envelope.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/church-agenda/agenda-client/internal/domain/envelope"
	"github.com/church-agenda/agenda-client/internal/observability/statsd"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds each request when Config.Timeout is unset.
	DefaultTimeout = 15 * time.Second

	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"

	// maxBodyBytes caps how much of a response body is read for envelope parsing.
	maxBodyBytes = 8 << 20

	metricRequest = "gateway.request"
)

// Outcome labels for the gateway.request metric.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeTransport = "transport"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// Tokens supplies the bearer token. A nil source, an error or an empty token
	// means the request is sent without Authorization.
	Tokens oauth2.TokenSource

	HTTPClient *http.Client
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// Header overrides defaults. An empty value removes the header.
	Header http.Header
}

// Doer is the envelope transport consumed by typed callers.
type Doer interface {
	Do(ctx context.Context, req Request) envelope.Envelope[json.RawMessage]
}

// Client is the request gateway. Safe for concurrent use.
type Client struct {
	base      *url.URL
	timeout   time.Duration
	userAgent string
	tokens    oauth2.TokenSource
	http      *http.Client
	metrics   statsd.Sink
	logger    *slog.Logger
}

var _ Doer = (*Client)(nil)

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = statsd.Nop{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		timeout:   timeout,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		tokens:    cfg.Tokens,
		http:      hc,
		metrics:   metrics,
		logger:    logger.With("component", "gateway"),
	}, nil
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Do sends req and returns the decoded envelope with raw data.
func (c *Client) Do(ctx context.Context, req Request) envelope.Envelope[json.RawMessage] {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			c.logger.ErrorContext(ctx, "encode request body", "method", method, "path", req.Path, "error", err)
			c.record(method, OutcomeTransport, 0)
			return envelope.Internal[json.RawMessage]()
		}
		body = bytes.NewReader(buf)
	}

	headers := http.Header{}
	headers.Set("Content-Type", contentTypeJSON)
	return c.roundTrip(ctx, method, req.Path, req.Query, body, headers, req.Header)
}

// Send issues req through d and decodes the payload into T.
func Send[T any](ctx context.Context, d Doer, req Request) envelope.Envelope[T] {
	return envelope.Decode[T](d.Do(ctx, req))
}

func (c *Client) roundTrip(
	ctx context.Context,
	method, path string,
	query url.Values,
	body io.Reader,
	defaults, overrides http.Header,
) envelope.Envelope[json.RawMessage] {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reqID := uuid.NewString()
	log := c.logger.With("method", method, "path", path, "request_id", reqID)

	httpReq, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		log.ErrorContext(ctx, "build request", "error", err)
		c.record(method, OutcomeTransport, time.Since(start))
		return envelope.Internal[json.RawMessage]()
	}
	applyHeaders(httpReq.Header, defaults, overrides)
	httpReq.Header.Set(headerRequestID, reqID)
	c.authorize(ctx, httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.WarnContext(ctx, "request failed", "error", err)
		c.record(method, OutcomeTransport, time.Since(start))
		return envelope.Internal[json.RawMessage]()
	}

	payload, err := readBody(resp)
	if err != nil {
		log.WarnContext(ctx, "read response", "status", resp.StatusCode, "error", err)
		c.record(method, OutcomeTransport, time.Since(start))
		return envelope.Internal[json.RawMessage]()
	}

	env, err := envelope.Parse(payload)
	if err != nil {
		log.WarnContext(ctx, "malformed envelope", "status", resp.StatusCode, "error", err)
		c.record(method, OutcomeTransport, time.Since(start))
		return env
	}

	outcome := OutcomeOK
	if !env.Ok {
		outcome = OutcomeError
	}
	elapsed := time.Since(start)
	log.DebugContext(ctx, "request complete",
		"status", resp.StatusCode,
		"ok", env.Ok,
		"error_key", env.ErrorKey,
		"duration", elapsed,
	)
	c.record(method, outcome, elapsed)
	return env
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body io.Reader,
) (*http.Request, error) {
	target, err := c.resolve(path, query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// resolve joins the relative path onto the base URL, keeping any query already in path.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	if path == "" || !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("path %q must start with /", path)
	}
	rel, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}
	if rel.IsAbs() || rel.Host != "" {
		return "", fmt.Errorf("path %q must be relative", path)
	}

	u := *c.base
	u.Path = c.base.Path + rel.Path
	u.RawPath = ""
	if rel.RawPath != "" {
		u.RawPath = c.base.EscapedPath() + rel.RawPath
	}

	q := rel.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.Token()
	if err != nil {
		c.logger.DebugContext(ctx, "no bearer token", "error", err)
		return
	}
	if tok == nil || tok.AccessToken == "" {
		return
	}
	tok.SetAuthHeader(req)
}

func (c *Client) record(method, outcome string, elapsed time.Duration) {
	tags := statsd.Tags{"method": method, "outcome": outcome}
	c.metrics.Count(metricRequest, 1, tags)
	c.metrics.Timing(metricRequest, elapsed, tags)
}

func applyHeaders(dst, defaults, overrides http.Header) {
	for k, vs := range defaults {
		dst[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	for k, vs := range overrides {
		key := http.CanonicalHeaderKey(k)
		if len(vs) == 0 || (len(vs) == 1 && vs[0] == "") {
			dst.Del(key)
			continue
		}
		dst[key] = append([]string(nil), vs...)
	}
}

func readBody(resp *http.Response) (body []byte, err error) {
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close response body: %w", cerr))
		}
	}()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
