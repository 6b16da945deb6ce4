package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/pkg/config"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// Auth schemes
const (
	AuthBearer = "bearer"
	AuthCookie = "cookie"
	AuthNone   = "none"
)

// TokenCookieName is the cookie used when the token travels as a cookie
const TokenCookieName = "token"

// TokenSource yields the current session token ("" when anonymous)
type TokenSource interface {
	Token() string
}

// Response is a successful exchange
type Response struct {
	Status int
	Body   []byte
}

// Client is the single configured HTTP client shared by all data operations
type Client struct {
	baseURL     string
	authScheme  string
	readRetries uint64
	http        *http.Client
	tokens      TokenSource
	logger      *zap.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its jar is kept as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a transport client from the API configuration
func NewClient(cfg config.APIConfig, tokens TokenSource, log *zap.Logger, opts ...Option) (*Client, error) {
	// Credential mode "include": server-set cookies travel on every call.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = AuthBearer
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		authScheme:  scheme,
		readRetries: cfg.ReadRetries,
		http:        &http.Client{Timeout: cfg.Timeout, Jar: jar},
		tokens:      tokens,
		logger:      logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Execute performs one HTTP exchange for the descriptor. Non-2xx answers come
// back as TRANSPORT errors, send failures as NETWORK errors. Reads are retried
// on NETWORK errors; writes never are.
func (c *Client) Execute(ctx context.Context, d api.Descriptor, req api.Request) (*Response, error) {
	path, err := d.BuildPath(req)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.ErrInternal(fmt.Errorf("failed to encode %s body: %w", d.Name, err))
		}
	}

	if !d.IsRead() || c.readRetries == 0 {
		return c.do(ctx, d, path, payload)
	}

	var resp *Response
	op := func() error {
		r, err := c.do(ctx, d, path, payload)
		if err != nil {
			if apperrors.IsNetwork(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.readRetries), ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, d api.Descriptor, path string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, d.Method, c.baseURL+path, body)
	if err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("failed to build %s request: %w", d.Name, err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	c.attachCredentials(httpReq)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("API request failed",
			zap.String("endpoint", d.Name),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, apperrors.ErrNetwork(err).WithDetail("endpoint", d.Name)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ErrNetwork(err).WithDetail("endpoint", d.Name)
	}

	c.logger.Debug("API request completed",
		zap.String("endpoint", d.Name),
		zap.String("method", d.Method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.ErrTransport(resp.StatusCode, errorMessage(data)).WithDetail("endpoint", d.Name)
	}

	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func (c *Client) attachCredentials(r *http.Request) {
	if c.tokens == nil {
		return
	}
	token := c.tokens.Token()
	if token == "" {
		return
	}
	switch c.authScheme {
	case AuthBearer:
		r.Header.Set("Authorization", "Bearer "+token)
	case AuthCookie:
		r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	}
}

// errorMessage pulls `message`, then `error`, out of an error body
func errorMessage(body []byte) string {
	var parsed struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if msg := rawString(parsed.Message); msg != "" {
		return msg
	}
	return rawString(parsed.Error)
}

// rawString accepts only JSON strings; objects and numbers are not shown to users
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
