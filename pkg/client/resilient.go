package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Body   interface{}
}

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// HTTPError means the server answered with a non-2xx status. A server
// that responded, even with an error, is awake; HTTP errors are never
// retried.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
}

// NetworkError means the request never produced an HTTP response:
// connection refused, reset, or timed out.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network failure: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RetryPolicy bounds re-attempts after network failures. The zero
// value performs exactly one attempt, which is what every ordinary
// call-site wants; only cold-start-sensitive calls opt in to retry.
type RetryPolicy struct {
	AttemptTimeout time.Duration
	TotalDeadline  time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// WakePolicy is tuned for a backend that may be paused by its hosting
// platform and take tens of seconds to accept its first connection.
func WakePolicy() RetryPolicy {
	return RetryPolicy{
		AttemptTimeout: 15 * time.Second,
		TotalDeadline:  90 * time.Second,
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	wait := p.InitialBackoff
	if wait <= 0 {
		wait = time.Second
	}
	for i := 0; i < attempt; i++ {
		wait *= 2
		if p.MaxBackoff > 0 && wait >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && wait > p.MaxBackoff {
		return p.MaxBackoff
	}
	return wait
}

// Client wraps the HTTP transport with bearer auth, error
// classification and the wake-tolerant retry loop.
type Client struct {
	baseURL        string
	httpc          *http.Client
	store          TokenStore
	logger         *zap.Logger
	onUnauthorized func()
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUnauthorizedHook registers the navigate-to-login side effect
// fired after any 401 clears the store.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// New builds a Client against the given base URL.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		store:   store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the token store backing this client.
func (c *Client) Store() TokenStore {
	return c.store
}

// Do issues the request under the given policy. On any 401 the token
// store is cleared and the unauthorized hook fires, regardless of
// call-site; no caller handles 401 itself. Retries apply only to
// network failures and timeouts, bounded by the policy's total
// deadline, with backoff scheduled on a timer so concurrent
// operations are never blocked.
func (c *Client) Do(ctx context.Context, req Request, policy RetryPolicy) (*Response, error) {
	start := time.Now()
	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, req, policy.AttemptTimeout)
		if err == nil {
			return resp, nil
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return nil, err
		}
		if policy.TotalDeadline <= 0 || ctx.Err() != nil {
			return nil, err
		}

		wait := policy.backoff(attempt)
		if time.Since(start)+wait >= policy.TotalDeadline {
			return nil, err
		}

		c.logger.Debug("retrying after network failure",
			zap.String("path", req.Path),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &NetworkError{Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

func (c *Client) attempt(ctx context.Context, req Request, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, err
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.store.Get(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &Response{Status: httpResp.StatusCode, Body: body}, nil
	}

	if httpResp.StatusCode == http.StatusUnauthorized {
		_ = c.store.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	return nil, &HTTPError{Status: httpResp.StatusCode, Detail: classifyDetail(httpResp.StatusCode, body)}
}

// classifyDetail extracts a human-readable message from an error body:
// a JSON "detail" string wins, other JSON is passed through as text,
// anything else falls back to the raw body or the status text.
func classifyDetail(status int, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}
	return trimmed
}
