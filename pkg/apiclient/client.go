package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/stockdash/pkg/requestid"
)

// maxErrorBody caps how much of an error response is read for the detail
// message.
const maxErrorBody = 64 * 1024

// Client talks to the stock-dashboard backend. Zero value is not usable; use
// New.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	log             *slog.Logger
	userAgent       string
	timeoutOverride time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. This is where the bearer
// transport gets wired in. Nil clients are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a structured logger for request tracing. Nil loggers are
// ignored.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTimeout overrides the per-request timeout of the default HTTP client.
// It has no effect on a client installed via WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeoutOverride = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a Client for the backend at baseURL. The URL must be absolute
// http(s) with a host.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidBaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidBaseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       slog.New(slog.DiscardHandler),
		userAgent: "stockdash-client/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		timeout := 30 * time.Second
		if c.timeoutOverride > 0 {
			timeout = c.timeoutOverride
		}
		c.httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return c, nil
}

// Get performs an authorized GET and decodes the JSON response into out.
// Query may be nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

// Post sends body as JSON. Body may be nil for empty-body endpoints.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	rd, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, "application/json", rd, out)
}

// PostForm sends form as application/x-www-form-urlencoded, the transport
// the backend's credential exchange requires.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, path, nil, "application/x-www-form-urlencoded", body, out)
}

// Put sends body as JSON. Body may be nil for empty-body endpoints such as
// the role promotion.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	rd, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, "application/json", rd, out)
}

// Delete performs an authorized DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, out)
}

// Stream performs a request and hands the raw response body to the caller,
// for endpoints returning opaque binary payloads. The caller must close the
// reader. Error responses are normalized exactly like JSON endpoints.
func (c *Client) Stream(ctx context.Context, method, path string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, method, path, nil, "", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

func jsonBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &TransportError{Op: "encode request", Err: err}
	}
	return bytes.NewReader(data), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	resp, err := c.send(ctx, method, path, query, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	if raw, ok := out.(*json.RawMessage); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Op: "read response", Err: err}
		}
		*raw = data
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: "decode response", Err: err}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	requestID := requestid.FromContext(ctx)
	if requestID == "" {
		requestID = requestid.New()
		ctx = requestid.WithContext(ctx, requestID)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestid.Header, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}

	c.log.DebugContext(ctx, "request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// decodeError turns a non-2xx response into a RejectedError, surfacing the
// backend's {"detail": ...} reason verbatim when present.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	detail := extractDetail(body)
	if detail == "" {
		detail = fmt.Sprintf("server returned status %d (%s)", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &RejectedError{StatusCode: resp.StatusCode, Detail: detail}
}

func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	// Usually a plain string, but validation errors arrive as structured
	// payloads; those are surfaced as compact JSON.
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(envelope.Detail))
}
