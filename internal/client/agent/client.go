package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultBaseURL matches the port the API listens on in local development.
const DefaultBaseURL = "http://localhost:5000/api/"

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20
	headerRequestID = "X-Request-Id"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request goes out anonymously.
type TokenSource interface {
	Token() string
}

// Params configures a Client. Only Interceptor is required.
type Params struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Tokens      TokenSource
	Interceptor *Interceptor
	Logger      *slog.Logger
}

// Client sends JSON requests relative to the API base URL.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	tokens      TokenSource
	interceptor *Interceptor
	logger      *slog.Logger

	Account    *AccountAPI
	TestErrors *TestErrorsAPI
}

// New builds a client. A missing base URL falls back to DefaultBaseURL.
func New(params Params) (*Client, error) {
	if params.Interceptor == nil {
		return nil, errors.New("interceptor must be provided")
	}

	raw := params.BaseURL
	if strings.TrimSpace(raw) == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base url %q", raw)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", raw)
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		tokens:      params.Tokens,
		interceptor: params.Interceptor,
		logger:      logger,
	}
	c.Account = &AccountAPI{client: c}
	c.TestErrors = &TestErrorsAPI{client: c}

	return c, nil
}

// Get decodes the response of GET path into out. out may be nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues DELETE path and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	target, err := c.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return errors.Wrapf(err, "invalid path %q", path)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, target.Path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	c.logger.Debug("API response",
		slog.String("method", method),
		slog.String("path", target.Path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", resp.Header.Get(headerRequestID)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return c.interceptor.Handle(ctx, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, target.Path)
	}

	return nil
}
