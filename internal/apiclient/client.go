package apiclient

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/config"
	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/pkg/common"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Session is what the client needs from the session context: the current
// token, and the global reset to trigger when the backend answers 401.
type Session interface {
	Token() string
	Unauthorized()
}

// Client is the single gateway to the backend REST API.
type Client struct {
	baseURL     string
	timeout     time.Duration
	httpc       *http.Client
	session     Session
	noAuthPaths []string
}

func New(baseURL string, timeout time.Duration, session Session, noAuthPaths []string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
		httpc:       &http.Client{},
		session:     session,
		noAuthPaths: noAuthPaths,
	}
}

// NewFromConfig builds the client for the compiled build mode.
func NewFromConfig(cfg *config.AppConfig, session Session) *Client {
	return New(cfg.BaseURL(), cfg.BackendTimeout(), session, cfg.Backend.NoAuthPaths)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	query     url.Values
	header    http.Header
	keepOn401 bool
}

type Option func(*request)

func WithQuery(q url.Values) Option {
	return func(r *request) {
		for k, vs := range q {
			for _, v := range vs {
				r.query.Add(k, v)
			}
		}
	}
}

func WithHeader(key, value string) Option {
	return func(r *request) {
		r.header.Set(key, value)
	}
}

// WithoutSessionReset returns a 401 to the caller without clearing the
// session. Used for credential checks, where 401 means a wrong password.
func WithoutSessionReset() Option {
	return func(r *request) {
		r.keepOn401 = true
	}
}

// Send performs one request and returns the raw response body of a 2xx
// reply. Every failure is an *apperr.Error.
func (c *Client) Send(ctx context.Context, method, path string, body interface{}, opts ...Option) ([]byte, error) {
	r := &request{query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		opt(r)
	}

	var payload io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.InvalidRequest(errors.Wrap(err, "encode request body"))
		}
		payload = bytes.NewReader(bs)
	}

	target := c.baseURL + path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, apperr.NetworkUnavailable(errors.Wrap(err, "build request"))
	}
	reqID := common.RequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if !c.skipAuth(path) {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, vs := range r.header {
		req.Header[k] = vs
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		zap.L().Warn("backend request failed",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, err)
	}

	zap.L().Debug("backend request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if !r.keepOn401 {
			c.session.Unauthorized()
		}
		return nil, apperr.Unauthorized(data)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperr.HTTP(resp.StatusCode, data, ExtractMessage(data))
	}
	return data, nil
}

func (c *Client) Get(ctx context.Context, path string, opts ...Option) ([]byte, error) {
	return c.Send(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}, opts ...Option) ([]byte, error) {
	return c.Send(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...Option) ([]byte, error) {
	return c.Send(ctx, http.MethodDelete, path, nil, opts...)
}

func (c *Client) skipAuth(path string) bool {
	for _, p := range c.noAuthPaths {
		if path == p || strings.HasPrefix(path, strings.TrimRight(p, "/")+"/") {
			return true
		}
	}
	return false
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return apperr.Timeout(err)
	}
	return apperr.NetworkUnavailable(err)
}

// ExtractMessage pulls a human readable message out of an error body.
func ExtractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "msg"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
