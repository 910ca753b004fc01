// Package api is a typed client for the DonationHub REST API. Endpoints are
// grouped into namespaces on Client; list endpoints return normalized view
// models.
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

	"github.com/cenkalti/backoff/v5"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
)

const (
	defaultBaseURL    = "http://localhost:5000/api"
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
)

// TokenSource supplies the bearer token for a request. An empty token sends
// the request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) string { return string(t) }

// Client talks to the DonationHub backend.
type Client struct {
	baseURL     string
	tokens      TokenSource
	userAgent   string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       bool
	maxRetries  uint
	now         func() time.Time

	Auth      *AuthService
	Users     *UserService
	Campaigns *CampaignService
	Donations *DonationService
	Public    *PublicService
	Admin     *AdminService
	Tasks     *TaskService
}

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	BaseURL     string
	Tokens      TokenSource
	UserAgent   string
	HTTPClient  *http.Client
	Timeout     time.Duration
	RateLimiter *RateLimiter
	// Retry enables exponential backoff for GET requests that fail with a
	// network error, 429 or 5xx. Off by default.
	Retry      bool
	MaxRetries uint
	// Now is the clock used to derive campaign status.
	Now func() time.Time
}

// NewClient creates a new DonationHub API client.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if config.UserAgent == "" {
		config.UserAgent = "donationhub-web"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	c := &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		tokens:      config.Tokens,
		userAgent:   config.UserAgent,
		httpClient:  config.HTTPClient,
		rateLimiter: config.RateLimiter,
		retry:       config.Retry,
		maxRetries:  config.MaxRetries,
		now:         config.Now,
	}
	c.Auth = &AuthService{c: c}
	c.Users = &UserService{c: c}
	c.Campaigns = &CampaignService{c: c}
	c.Donations = &DonationService{c: c}
	c.Public = &PublicService{c: c}
	c.Admin = newAdminService(c)
	c.Tasks = &TaskService{c: c}
	return c
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestRate returns how many requests the rate limiter admitted in the
// last minute and second. Both are zero without a limiter.
func (c *Client) RequestRate() (lastMinute, lastSecond int) {
	return c.rateLimiter.Stats()
}

// call performs a request and returns the unwrapped response payload.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	if !c.retry || method != http.MethodGet {
		return c.do(ctx, method, path, query, body)
	}

	operation := func() (any, error) {
		data, err := c.do(ctx, method, path, query, body)
		if err != nil && !retryable(ctx, err) {
			return nil, backoff.Permanent(err)
		}
		return data, err
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.WarnContext(ctx, "retrying API request", "method", method, "path", path, "wait", wait, "error", err)
		}),
	)
}

// callInto performs a request and decodes the payload into out.
func (c *Client) callInto(ctx context.Context, method, path string, query url.Values, body, out any) error {
	data, err := c.call(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}

// do executes a single HTTP round trip.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		buf, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode form: %w", err)
		}
		reader, contentType = buf, ct
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	logger.DebugContext(ctx, "api request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	return unwrap(resp.StatusCode, raw)
}

// unwrap interprets a response body. Non-2xx responses and success:false
// envelopes become *APIError; otherwise the "data" member is returned when
// present, else the whole body.
func unwrap(status int, raw []byte) (any, error) {
	var payload any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload = map[string]any{}
		}
	}
	envelope, _ := payload.(map[string]any)

	if status < 200 || status > 299 {
		msg := stringField(envelope, "message", "error")
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", status)
		}
		return nil, &apperrors.APIError{
			StatusCode: status,
			Message:    msg,
			Errors:     fieldErrors(envelope["errors"]),
		}
	}

	if envelope == nil {
		return payload, nil
	}
	if ok, present := envelope["success"].(bool); present && !ok {
		msg := stringField(envelope, "message", "error")
		if msg == "" {
			msg = "Request failed"
		}
		return nil, &apperrors.APIError{
			StatusCode: status,
			Message:    msg,
			Errors:     fieldErrors(envelope["errors"]),
		}
	}
	if data, ok := envelope["data"]; ok && data != nil {
		return data, nil
	}
	return envelope, nil
}

func fieldErrors(v any) []apperrors.FieldError {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]apperrors.FieldError, 0, len(items))
	for _, item := range items {
		switch e := item.(type) {
		case string:
			out = append(out, apperrors.FieldError{Message: e})
		case map[string]any:
			out = append(out, apperrors.FieldError{
				Field:   stringField(e, "field", "path", "param"),
				Message: stringField(e, "message", "msg"),
			})
		}
	}
	return out
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func decodeInto(data, out any) error {
	if out == nil {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// items extracts a list from a payload that is either a bare array or an
// object holding the array under one of keys.
func items(data any, keys ...string) []any {
	if list, ok := data.([]any); ok {
		return list
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	for _, k := range keys {
		if list, ok := m[k].([]any); ok {
			return list
		}
	}
	return nil
}

// object returns data as a map, or an empty map.
func object(data any) map[string]any {
	if m, ok := data.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func escape(id string) string {
	return url.PathEscape(id)
}
