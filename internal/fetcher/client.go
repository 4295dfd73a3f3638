package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"energy-insights/internal/metrics"
	"energy-insights/internal/version"
)

const defaultBaseURL = "http://localhost:5000/api"

// Options parameterise the aggregate API client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Paths overrides the path of individual resources.
	Paths map[Resource]string
}

// Client talks to the energy aggregate REST API.
type Client struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs an API client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "api_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.client = hc
	}
	return c
}

// URL resolves the absolute endpoint of a resource.
func (c *Client) URL(res Resource) string {
	path := string(res)
	if override, ok := c.opts.Paths[res]; ok && strings.TrimSpace(override) != "" {
		path = override
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// getJSON fetches res and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, res Resource, out any) error {
	body, err := c.do(ctx, http.MethodGet, res, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", res, ErrMalformedPayload, err)
	}
	return nil
}

// Generate posts {prompt} to the chat endpoint. Only transport failures are
// reported; interpreting the body is left to the caller.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal prompt: %w", err)
	}
	return c.do(ctx, http.MethodPost, ResourceChat, payload)
}

func (c *Client) do(ctx context.Context, method string, res Resource, payload []byte) ([]byte, error) {
	start := time.Now()
	body, err := c.roundTrip(ctx, method, res, payload)
	outcome := metrics.OutcomeReady
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.ObserveRequest(string(res), time.Since(start), outcome)
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, method string, res Resource, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	endpoint := c.URL(res)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", res, ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", res, ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %v", res, ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError(res, resp.StatusCode, body)
	}

	c.logger.Debug().Str("resource", string(res)).Int("bytes", len(body)).Msg("response received")
	return body, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(res Resource, status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("%s: %w (%d): %s", res, ErrTransport, status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("%s: %w (%d): %s", res, ErrTransport, status, apiErr.Error)
		}
	}
	if trimmed := strings.TrimSpace(string(payload)); trimmed != "" && len(trimmed) <= 256 {
		return fmt.Errorf("%s: %w (%d): %s", res, ErrTransport, status, trimmed)
	}
	return fmt.Errorf("%s: %w (%d)", res, ErrTransport, status)
}

var (
	_ AggregateSource = (*Client)(nil)
	_ Generator       = (*Client)(nil)
)
