// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package autotask is a small SDK for the Autotask PSA REST API and the
// generic executor that serves agent tool calls with it.
//
// The client handles authentication headers, rate limiting, retries on 429
// and 5xx responses, and converts error responses into *APIError values that
// carry the HTTP status.
package autotask

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

// Defaults applied by NewClient to zero-valued Config fields.
const (
	DefaultRateLimit     = 5.0
	DefaultBurst         = 5
	DefaultRetryAttempts = 3
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRecords    = 1000
)

// Config holds the connection settings of a Client.
type Config struct {
	// BaseURL is the zone REST root, e.g.
	// https://webservices5.autotask.net/ATServicesRest/V1.0
	BaseURL         string
	Username        string
	IntegrationCode string
	Secret          string

	// RateLimit is the steady request rate in requests per second.
	RateLimit     float64
	Burst         int
	RetryAttempts int
	Timeout       time.Duration

	// MaxRecords caps queries that ask for every match.
	MaxRecords int
}

// HTTPClient performs HTTP requests. *http.Client implements it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one Autotask zone.
type Client struct {
	cfg        Config
	httpClient HTTPClient
	limiter    *rate.Limiter
	logger     *zap.Logger
	tracer     observability.Tracer

	// retryDelay is the wait before retrying a failed request when the
	// server gives no Retry-After.
	retryDelay time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc HTTPClient) ClientOption { return func(c *Client) { c.httpClient = hc } }

// WithClientLogger sets the logger.
func WithClientLogger(logger *zap.Logger) ClientOption { return func(c *Client) { c.logger = logger } }

// WithClientTracer sets the tracer.
func WithClientTracer(tracer observability.Tracer) ClientOption {
	return func(c *Client) { c.tracer = tracer }
}

// WithRetryDelay sets the fallback retry delay.
func WithRetryDelay(d time.Duration) ClientOption { return func(c *Client) { c.retryDelay = d } }

// NewClient validates cfg, applies defaults and creates a client.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("autotask base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid autotask base url: %w", err)
	}
	if cfg.Username == "" || cfg.IntegrationCode == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("autotask username, integration code and secret are required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultMaxRecords
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:     zap.NewNop(),
		tracer:     observability.NewNoOpTracer(),
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Username returns the API user name the client authenticates as.
func (c *Client) Username() string { return c.cfg.Username }

// MaxRecords returns the cap applied to unbounded queries.
func (c *Client) MaxRecords() int { return c.cfg.MaxRecords }

// APIError is a non-2xx response.
type APIError struct {
	Method     string
	Path       string
	Status     int
	Messages   []string
	RawMessage string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = e.RawMessage
	}
	return fmt.Sprintf("autotask %s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), msg)
}

// StatusCode returns the HTTP status of the response.
func (e *APIError) StatusCode() int { return e.Status }

// retryable reports whether a failed request may be sent again. Reads,
// queries, updates and deletes are retried on network errors, 429 and 5xx.
// A create POST is retried on 429 only: after a 5xx or a lost response the
// record may already exist.
func retryable(method, label string, err error) bool {
	var apiErr *APIError
	isAPIErr := errors.As(err, &apiErr)
	if isAPIErr && apiErr.Status == http.StatusTooManyRequests {
		return true
	}
	if !replayable(method, label) {
		return false
	}
	return !isAPIErr || apiErr.Status >= http.StatusInternalServerError
}

// replayable reports whether sending the request twice has no extra effect.
func replayable(method, label string) bool {
	if method != http.MethodPost {
		return true
	}
	return strings.Contains(label, "/query")
}

// do sends one request, retrying as retryable allows. A nil dest discards
// the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.doURL(ctx, method, target, path, payload, dest)
}

// doURL is do for an absolute URL, used to follow pagination links.
func (c *Client) doURL(ctx context.Context, method, target, label string, payload []byte, dest interface{}) error {
	ctx, span := c.tracer.StartSpan(ctx, observability.SpanAutotaskRequest, observability.WithSpanKind("client"))
	defer c.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrHTTPMethod, method)
	span.SetAttribute(observability.AttrHTTPPath, label)

	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.tracer.RecordMetric(observability.MetricAutotaskRetries, 1, map[string]string{
				observability.AttrHTTPMethod: method,
			})
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		status, wait, err := c.attempt(ctx, method, target, label, payload, dest)
		span.SetAttribute(observability.AttrHTTPStatus, status)
		if err == nil {
			c.tracer.RecordMetric(observability.MetricAutotaskRequests, 1, map[string]string{
				observability.AttrHTTPMethod: method,
				"status":                     strconv.Itoa(status),
			})
			return nil
		}
		lastErr = err

		if !retryable(method, label, err) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		c.logger.Debug("Retrying Autotask request",
			zap.String("method", method),
			zap.String("path", label),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	span.RecordError(lastErr)
	c.tracer.RecordMetric(observability.MetricAutotaskRequests, 1, map[string]string{
		observability.AttrHTTPMethod: method,
		"status":                     "error",
	})
	return lastErr
}

// attempt performs a single HTTP exchange and returns the status and the
// delay to wait before a retry.
func (c *Client) attempt(ctx context.Context, method, target, label string, payload []byte, dest interface{}) (int, time.Duration, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("ApiIntegrationcode", c.cfg.IntegrationCode)
	req.Header.Set("UserName", c.cfg.Username)
	req.Header.Set("Secret", c.cfg.Secret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, c.retryDelay, fmt.Errorf("autotask %s %s: %w", method, label, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, c.retryDelay, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, retryAfter(resp.Header, c.retryDelay), newAPIError(method, label, resp.StatusCode, raw)
	}
	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, 0, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return resp.StatusCode, 0, fmt.Errorf("failed to decode autotask response: %w", err)
	}
	return resp.StatusCode, 0, nil
}

func retryAfter(h http.Header, fallback time.Duration) time.Duration {
	if s := h.Get("Retry-After"); s != "" {
		if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
			return time.Duration(sec) * time.Second
		}
	}
	return fallback
}

// newAPIError decodes the {"errors": [...]} body Autotask sends with
// failures, keeping the raw body when it is not JSON.
func newAPIError(method, path string, status int, raw []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, Status: status}
	var body struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 {
		apiErr.Messages = body.Errors
		return apiErr
	}
	apiErr.RawMessage = strings.TrimSpace(string(raw))
	return apiErr
}
