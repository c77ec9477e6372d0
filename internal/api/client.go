package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodySize     = 4 << 20
)

// Client talks to the demo trading backend. The session cookie lives in the
// client's jar, so one Client is one session.
type Client struct {
	baseURL   string
	http      *http.Client
	retries   int
	retryWait time.Duration
	logger    *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithRetries sets how many extra attempts idempotent GETs get.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRetryWait sets the initial backoff interval between GET attempts.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryWait = d
		}
	}
}

// WithHTTPClient replaces the transport. The client's jar is kept if the
// supplied client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

// NewClient creates a client for baseURL (e.g. http://localhost:5000/api).
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout, Jar: jar},
		retries:   2,
		retryWait: 300 * time.Millisecond,
		logger:    logger.Named("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Portfolio fetches balance and orders. Transient failures are retried.
func (c *Client) Portfolio(ctx context.Context) (*Portfolio, error) {
	var p Portfolio
	if err := c.getJSON(ctx, "/portfolio", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CheckSession asks GET /portfolio exactly once whether the cookie jar holds
// a live session. Without one it returns ErrNotAuthenticated.
func (c *Client) CheckSession(ctx context.Context) (*Portfolio, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/portfolio", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}
	var p Portfolio
	if err := decode(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Login posts credentials. The body is decoded whatever the HTTP status, so a
// rejected login comes back as Success=false with the server's message.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/login", credentials{username, password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/register", credentials{username, password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the server session. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	_, _, err := c.send(ctx, http.MethodPost, "/logout", nil, struct{}{})
	return err
}

// Bars fetches the price series for symbol.
func (c *Client) Bars(ctx context.Context, symbol, period, interval string) ([]Bar, error) {
	query := url.Values{}
	query.Set("period", period)
	query.Set("interval", interval)

	var bars []Bar
	if err := c.getJSON(ctx, "/data/"+url.PathEscape(symbol), query, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// CurrentPrice fetches the latest quote for symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var resp PriceResponse
	if err := c.getJSON(ctx, "/current-price/"+url.PathEscape(symbol), nil, &resp); err != nil {
		return decimal.Zero, err
	}
	if !resp.Price.Valid {
		return decimal.Zero, fmt.Errorf("%w: current price for %s is missing", ErrDecode, symbol)
	}
	return resp.Price.Decimal, nil
}

// PlaceOrder opens a position. Never retried.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	var resp PlaceOrderResponse
	if err := c.postJSON(ctx, "/place-order", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CloseOrder closes the position with the given id. Never retried.
func (c *Client) CloseOrder(ctx context.Context, orderID string) (*CloseOrderResponse, error) {
	var resp CloseOrderResponse
	if err := c.postJSON(ctx, "/close-order", closeOrderRequest{OrderID: orderID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Replay fetches the bar the backend reports for symbol at date.
func (c *Client) Replay(ctx context.Context, symbol, date string) (*Bar, error) {
	status, body, err := c.send(ctx, http.MethodPost, "/replay", nil, replayRequest{Symbol: symbol, Date: date})
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}
	var bar Bar
	if err := decode(body, &bar); err != nil {
		return nil, err
	}
	return &bar, nil
}

// getJSON performs an idempotent GET with retries on transport errors and
// 5xx replies.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	operation := func() (struct{}, error) {
		status, body, err := c.send(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		if err := checkStatus(status, body); err != nil {
			if status >= http.StatusInternalServerError {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		if err := decode(body, out); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWait

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.retries)+1),
	)
	if err == nil {
		return nil
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	if ctx.Err() != nil && !errors.Is(err, ErrNetwork) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return err
}

// postJSON sends body and decodes the reply regardless of status, because the
// backend reports application failures as {success:false,error} with 4xx/5xx.
func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	_, body, err := c.send(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// send performs a single request and returns the status and the raw body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in interface{}) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, path, err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	return resp.StatusCode, body, nil
}

func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status == http.StatusUnauthorized {
		return ErrNotAuthenticated
	}
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return &APIError{Status: status, Message: eb.Error}
}

func decode(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
