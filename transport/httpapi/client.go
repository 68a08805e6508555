package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/service"
)

// DefaultTimeout bounds every call to the game API
const DefaultTimeout = 10 * time.Second

// Client calls the remote game API through the request normalizer
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ service.GameAPI = (*Client)(nil)

// ClientOption configures a Client
type ClientOption func(*clientOptions)

type clientOptions struct {
	timeout   time.Duration
	transport http.RoundTripper
	logger    *zap.Logger
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithTransport sets the transport wrapped by the normalizer
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient creates a client for the game API rooted at baseURL
// (e.g. http://localhost:8080/api). Failed requests are reported through
// notifier.
func NewClient(baseURL string, notifier Notifier, opts ...ClientOption) *Client {
	o := clientOptions{
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: NewNormalizer(o.transport, notifier, o.logger),
		},
		logger: o.logger,
	}
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StartGame creates a new game session
func (c *Client) StartGame(ctx context.Context) (*service.GameResponse, error) {
	var resp service.GameResponse
	if err := c.apiCall(ctx, http.MethodPost, "/game/start", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Play plays one round in the given session
func (c *Client) Play(ctx context.Context, req service.PlayRequest) (*service.GameResponse, error) {
	var resp service.GameResponse
	if err := c.apiCall(ctx, http.MethodPost, "/game/play", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSession fetches a session and its statistics
func (c *Client) GetSession(ctx context.Context, sessionID string) (*service.GameResponse, error) {
	var resp service.GameResponse
	path := fmt.Sprintf("/game/session/%s", url.PathEscape(sessionID))
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Moves lists the moves the server accepts
func (c *Client) Moves(ctx context.Context) ([]engine.Move, error) {
	var moves []engine.Move
	if err := c.apiCall(ctx, http.MethodGet, "/game/moves", nil, &moves); err != nil {
		return nil, err
	}
	return moves, nil
}

// Rules returns the plain-text game rules
func (c *Client) Rules(ctx context.Context) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/game/rules", nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}

	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	c.logger.Debug("api call", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	return data, nil
}
