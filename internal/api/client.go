// Package api is the HTTP client for the wallet backend.
//
// Every call is a single request with no retry. GET helpers accept a
// response only when it is 2xx and declares a JSON content type.
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
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codingniket/FinApp/internal/core"
	applog "github.com/codingniket/FinApp/internal/log"
	"github.com/codingniket/FinApp/internal/middleware/trace"
)

const defaultUserAgent = "FinApp/1.0"

// Client talks to the wallet API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	metrics    *Metrics
	logger     *applog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a whole-request timeout. Zero keeps the default of no
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for transport-level debug output.
func WithLogger(l *applog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.WithComponent(applog.ComponentAPI)
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client for the API rooted at baseURL, e.g.
// "https://wallet.example.com/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
		logger:     applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentAPI),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	UserID   string
	Title    string
	Amount   decimal.Decimal
	Category string
}

func (r CreateTransactionRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UserID   string      `json:"user_id"`
		Title    string      `json:"title"`
		Amount   json.Number `json:"amount"`
		Category string      `json:"category"`
	}{r.UserID, r.Title, json.Number(r.Amount.String()), r.Category})
}

// ListTransactions returns every transaction of the user, newest first.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.getJSON(ctx, EndpointList, "/transactions/"+url.PathEscape(userID), &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetSummary returns the server-computed balance, income and expenses.
func (c *Client) GetSummary(ctx context.Context, userID string) (core.Summary, error) {
	var s core.Summary
	if err := c.getJSON(ctx, EndpointSummary, "/transactions/summary/"+url.PathEscape(userID), &s); err != nil {
		return core.Summary{}, err
	}
	return s, nil
}

// LastTransactions returns at most the ten most recent transactions.
func (c *Client) LastTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.getJSON(ctx, EndpointLast10, "/transactions/last10/"+url.PathEscape(userID), &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction submits a new transaction and returns the stored copy.
func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (core.Transaction, error) {
	resp, err := c.do(ctx, EndpointCreate, http.MethodPost, "/transactions", req)
	if err != nil {
		return core.Transaction{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read create response: %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		var payload struct {
			Message string `json:"message"`
		}
		msg := defaultCreateMessage
		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			msg = payload.Message
		}
		return core.Transaction{}, &CreateError{StatusCode: resp.StatusCode, Message: msg}
	}

	var tx core.Transaction
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &tx); err != nil {
			return core.Transaction{}, fmt.Errorf("decode created transaction: %w", err)
		}
	}
	return tx, nil
}

// DeleteTransaction removes a transaction by id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	resp, err := c.do(ctx, EndpointDelete, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	defer drain(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("%w: status %d", ErrDeleteFailed, resp.StatusCode)
	}
	return nil
}

// AskAI forwards a question to the backend assistant. The returned error
// is either *AIError or ErrUnreachable, and its text is user-facing.
func (c *Client) AskAI(ctx context.Context, question string) (string, error) {
	resp, err := c.do(ctx, EndpointAskAI, http.MethodPost, "/askAi", map[string]string{"question": question})
	if err != nil {
		c.logger.DebugContext(ctx, "ask AI transport failure", applog.FieldError, err)
		return "", ErrUnreachable
	}
	defer drain(resp.Body)

	var payload struct {
		Answer string `json:"answer"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.DebugContext(ctx, "ask AI decode failure", applog.FieldError, err)
		return "", ErrUnreachable
	}
	if !isSuccess(resp.StatusCode) {
		msg := payload.Error
		if msg == "" {
			msg = defaultAIMessage
		}
		return "", &AIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return payload.Answer, nil
}

// Ping reports whether the API answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, EndpointPing, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	drain(resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, out any) error {
	resp, err := c.do(ctx, endpoint, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer drain(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return fmt.Errorf("%s: %w", endpoint, ErrNotJSON)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	requestID := trace.GetRequestID(ctx)
	if requestID == "" {
		requestID = trace.GenerateRequestID()
	}
	req.Header.Set(trace.HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(endpoint, 0, elapsed)
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	c.metrics.observe(endpoint, resp.StatusCode, elapsed)
	c.logger.DebugContext(ctx, "wallet API call",
		applog.FieldEndpoint, endpoint,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, elapsed.Milliseconds(),
		applog.FieldRequestID, requestID)
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
