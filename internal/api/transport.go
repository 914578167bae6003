package api

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

	"github.com/five82/alfalfa/internal/sim"
)

const (
	defaultHost           = "http://localhost"
	defaultUserAgent      = "alfalfa-go/0.1"
	defaultRequestTimeout = 30 * time.Second
	maxErrorBody          = 64 * 1024
)

// Transport performs single requests against the server and classifies the
// result. It never retries.
type Transport struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the underlying HTTP client. The client is used
// as given; the request timeout is applied per request on top of it.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.http = c
		}
	}
}

// WithTimeout bounds every request, whichever HTTP client carries it.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *Transport) {
		if ua = strings.TrimSpace(ua); ua != "" {
			t.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTransport builds a Transport rooted at host joined with prefix, e.g.
// "http://localhost" + "api/v2/".
func NewTransport(host, prefix string, opts ...Option) (*Transport, error) {
	base, err := parseBaseURL(host, prefix)
	if err != nil {
		return nil, err
	}
	t := &Transport{
		baseURL:   base,
		http:      &http.Client{},
		timeout:   defaultRequestTimeout,
		userAgent: defaultUserAgent,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// BaseURL returns the resolved base address.
func (t *Transport) BaseURL() string {
	return t.baseURL.String()
}

// Do sends body as JSON (when non-nil) and decodes the full response body
// into dest (when non-nil).
func (t *Transport) Do(ctx context.Context, method, path string, body, dest any) error {
	rel, err := url.Parse(path)
	if err != nil {
		return &sim.ClientError{Kind: sim.KindInvalidArgument, Message: fmt.Sprintf("parse path %q", path), Err: err}
	}
	return t.DoURL(ctx, method, rel, body, dest)
}

// DoURL is Do for a pre-built relative URL.
func (t *Transport) DoURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	ctx, cancel := t.requestContext(ctx)
	defer cancel()

	reqURL := t.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &sim.ClientError{Kind: sim.KindInvalidArgument, Message: "encode request body", Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return &sim.ClientError{Kind: sim.KindInvalidArgument, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		return classifyNetworkError(ctx, method, reqURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	t.logger.Debug("api request",
		slog.String("method", method),
		slog.String("url", reqURL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &sim.ClientError{Kind: sim.KindDecode, Message: fmt.Sprintf("decode %s %s response", method, rel.Path), Err: err}
	}
	return nil
}

// requestContext bounds ctx by the request timeout. The deadline covers
// reading the response body too.
func (t *Transport) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.timeout)
}

// envelope is the success body of the REST dialect.
type envelope struct {
	Payload json.RawMessage `json:"payload"`
}

// Call performs a REST request and decodes the envelope payload into dest.
func (t *Transport) Call(ctx context.Context, method, path string, body, dest any) error {
	var env envelope
	if err := t.Do(ctx, method, path, body, &env); err != nil {
		return err
	}
	if dest == nil || len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return &sim.ClientError{Kind: sim.KindDecode, Message: fmt.Sprintf("decode %s payload", path), Err: err}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &sim.APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		if len(body.Payload) > 0 && string(body.Payload) != "null" {
			apiErr.Payload = body.Payload
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}

func classifyNetworkError(ctx context.Context, method string, u *url.URL, err error) error {
	msg := fmt.Sprintf("%s %s", method, u.Redacted())
	if ctxErr := ctx.Err(); ctxErr != nil {
		kind := sim.KindCanceled
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			kind = sim.KindTimeout
		}
		return &sim.ClientError{Kind: kind, Message: msg, Err: err}
	}
	return &sim.ClientError{Kind: sim.KindNetwork, Message: msg, Err: err}
}

func parseBaseURL(host, prefix string) (*url.URL, error) {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		trimmed = defaultHost
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &sim.ClientError{Kind: sim.KindInvalidArgument, Message: fmt.Sprintf("parse host %q", host), Err: err}
	}
	if u.Host == "" {
		return nil, sim.NewClientError(sim.KindInvalidArgument, "host %q has no address", host)
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if p := strings.Trim(prefix, "/"); p != "" {
		u.Path += p + "/"
	}
	return u, nil
}
