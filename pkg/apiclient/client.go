package apiclient

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
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/navgate/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// AuthHandler reacts to rejected tokens. auth.Service implements it.
type AuthHandler interface {
	RefreshAccessToken(ctx context.Context) (string, error)
	Reauthenticate(ctx context.Context) error
}

// Client is a JSON client of one backend namespace.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
	locale  string
	refresh bool
	clock   clock.Clock
	breaker *breaker
	log     *slog.Logger

	mu      sync.RWMutex
	handler AuthHandler
	flight  singleflight.Group
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

type response struct {
	status int
	body   []byte
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, fmt.Errorf("unsupported base url %q", baseURL))
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base: u,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: defaultTimeout,
		clock:   clock.New(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a client from cfg. opts are applied last.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	base := []Option{
		WithTimeout(cfg.Timeout),
		WithLocale(cfg.Locale),
		WithRefresh(cfg.EnableRefreshToken),
	}
	base = append(base, opts...)
	base = append(base, WithBreaker(cfg.BreakerFailures, cfg.BreakerRecovery))
	return New(cfg.BaseURL, base...)
}

// Bind sets the handler of rejected tokens. It is usually the auth service
// built on top of this client, hence a setter.
func (c *Client) Bind(h AuthHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// BreakerState reports the circuit breaker state; closed when disabled.
func (c *Client) BreakerState() BreakerState {
	if c.breaker == nil {
		return BreakerClosed
	}
	return c.breaker.current()
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Do sends a request and decodes the envelope's data into out, which may be
// nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	o := requestOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	res, err := c.send(ctx, method, path, payload, c.accessToken(), o)
	if err != nil {
		return err
	}
	if res.status == http.StatusUnauthorized {
		if o.bare {
			return errors.Join(ErrUnauthorized, c.failure(res, envelope{}))
		}
		if res, err = c.retryUnauthorized(ctx, method, path, payload, o); err != nil {
			return err
		}
	}
	return c.decode(res, out, o)
}

// retryUnauthorized refreshes the token once and repeats the request. When
// refresh is off or does not help, the handler re-authenticates and the call
// fails with ErrUnauthorized.
func (c *Client) retryUnauthorized(ctx context.Context, method, path string, payload []byte, o requestOptions) (*response, error) {
	h := c.authHandler()
	if c.refresh && h != nil {
		token, err := c.refreshToken(ctx, h)
		switch {
		case err != nil:
			c.log.WarnContext(ctx, "token refresh failed", logger.Error(err))
		case token != "":
			res, err := c.send(ctx, method, path, payload, token, o)
			if err != nil {
				return nil, err
			}
			if res.status != http.StatusUnauthorized {
				return res, nil
			}
		}
	}
	if h != nil {
		if err := h.Reauthenticate(ctx); err != nil {
			c.log.WarnContext(ctx, "re-authentication failed", logger.Error(err))
		}
	}
	return nil, ErrUnauthorized
}

// refreshToken collapses concurrent refreshes into one call.
func (c *Client) refreshToken(ctx context.Context, h AuthHandler) (string, error) {
	v, err, _ := c.flight.Do("refresh", func() (any, error) {
		return h.RefreshAccessToken(ctx)
	})
	if err != nil {
		return "", err
	}
	token, _ := v.(string)
	return token, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, o requestOptions) (*response, error) {
	if c.breaker != nil && !c.breaker.allow() {
		return nil, ErrCircuitOpen
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.endpoint(path, o.query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.locale != "" {
		req.Header.Set("Accept-Language", c.locale)
	}

	start := c.clock.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, errors.Join(ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.recordFailure()
		return nil, errors.Join(ErrTransport, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure()
	} else if c.breaker != nil {
		c.breaker.success()
	}

	c.log.DebugContext(ctx, "backend call",
		slog.String("method", method),
		logger.Path(path),
		slog.Int("status", resp.StatusCode),
		logger.Duration(c.clock.Since(start)),
	)
	return &response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) decode(res *response, out any, o requestOptions) error {
	var env envelope
	if len(bytes.TrimSpace(res.body)) > 0 {
		if err := json.Unmarshal(res.body, &env); err != nil {
			if res.status >= http.StatusBadRequest {
				return c.failure(res, envelope{})
			}
			return errors.Join(ErrDecode, err)
		}
	}
	if res.status < http.StatusOK || res.status >= http.StatusMultipleChoices {
		return c.failure(res, env)
	}
	if !o.bare && env.Code != 0 && env.Code != http.StatusOK {
		return c.failure(res, env)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// failure builds the error of a rejected response. Validation errors listed
// under data.errors take precedence over msg.
func (c *Client) failure(res *response, env envelope) *Error {
	msg := env.Msg
	var details struct {
		Errors []string `json:"errors"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &details) == nil && len(details.Errors) > 0 {
		msg = strings.Join(details.Errors, "\n")
	}
	if msg == "" {
		msg = http.StatusText(res.status)
	}
	return &Error{Status: res.status, Code: env.Code, Msg: msg}
}

func (c *Client) endpoint(path string, query map[string]string) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		q := url.Values{}
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) accessToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

func (c *Client) authHandler() AuthHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handler
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.failure()
	}
}
