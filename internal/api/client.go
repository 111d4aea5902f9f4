// Package api is the famfin backend client: an authenticated request
// gateway plus one typed method per backend operation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/theirongolddev/famfin/internal/auth"
)

const (
	defaultTimeout   = 15 * time.Second
	maxBodySize      = 1 << 20 // 1 MB
	defaultUserAgent = "famfin/1.0"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
}

// Client talks to the backend on behalf of the user whose tokens are held
// in the credential store.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	http      *http.Client
	creds     *auth.Store
	log       *logrus.Logger

	refreshes singleflight.Group
	state     refreshTracker
}

// New creates a client for the backend at opts.BaseURL.
func New(opts Options, creds *auth.Store, log *logrus.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
		creds:     creds,
		log:       log,
	}
}

// Credentials returns the store the client reads tokens from.
func (c *Client) Credentials() *auth.Store { return c.creds }

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one backend call. Body is JSON-encoded unless it is
// already []byte. Anonymous requests carry no bearer token and are never
// retried through the refresh flow.
type Request struct {
	Method    string
	Path      string
	Body      any
	Header    http.Header
	Anonymous bool
}

// Response is a backend response with its body fully read.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// StatusText returns the reason phrase, e.g. "Bad Request".
func (r *Response) StatusText() string {
	if _, text, ok := strings.Cut(r.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(r.StatusCode)
}

// Do sends req. A 401 triggers one token refresh followed by one retry of
// the identical request. Other statuses are returned uninterpreted.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	payload, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("api: encoding %s %s: %w", req.Method, req.Path, err)
	}
	requestID := uuid.NewString()

	resp, err := c.send(ctx, req, payload, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.Anonymous {
		return resp, nil
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	resp, err = c.send(ctx, req, payload, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.creds.ClearTokens(ctx)
		return nil, &AuthenticationError{Message: "authentication failed, please login again"}
	}
	return resp, nil
}

// send performs a single HTTP exchange with the current access token.
func (c *Client) send(ctx context.Context, req Request, payload []byte, requestID string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	op := req.Method + " " + path

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if !req.Anonymous {
		if token, ok := c.creds.AccessToken(ctx); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	//nolint:gosec // URL is built from the configured backend origin
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.log.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       path,
		"status":     httpResp.StatusCode,
		"request_id": requestID,
		"duration":   time.Since(start).Round(time.Millisecond),
	}).Debug("backend request")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}

// call sends a request and decodes a 2xx JSON body into out (if non-nil).
// Non-2xx responses become typed errors labelled with op.
func (c *Client) call(ctx context.Context, op string, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return errorFromResponse(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := decodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("api: parsing %s response: %w", strings.ToLower(op), err)
	}
	return nil
}

// decodeJSON unmarshals body into out. An empty body leaves out untouched.
func decodeJSON(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	return c.call(ctx, op, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	return c.call(ctx, op, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) patch(ctx context.Context, op, path string, body, out any) error {
	return c.call(ctx, op, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) delete(ctx context.Context, op, path string, out any) error {
	return c.call(ctx, op, Request{Method: http.MethodDelete, Path: path}, out)
}
