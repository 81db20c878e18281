// Package gradio implements the queue protocol spoken by hosted Gradio
// applications: submit a job, then poll the result stream for its terminal
// event. Cold backends answer with transient 404/503 responses while they
// spin up, so both round-trips carry a bounded retry with linear backoff.
package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	zenith "github.com/voici5986/zenith-image-generator"
	"github.com/voici5986/zenith-image-generator/provider"
	"github.com/voici5986/zenith-image-generator/providerutil"
)

const (
	// defaultAPIPrefix is the path under which current Gradio versions
	// expose the queue endpoints.
	defaultAPIPrefix = "/gradio_api"

	// defaultAttempts is the total attempt budget per round-trip,
	// including the first call.
	defaultAttempts = 3

	// defaultBaseDelay is the unit of the linear backoff: the wait
	// before attempt n+1 is n * baseDelay.
	defaultBaseDelay = time.Second

	// errorBodyLimit caps how much of an upstream error body is read.
	errorBodyLimit = 8 * 1024

	// streamBodyLimit caps the SSE result body. Terminal payloads are
	// small; the limit guards against a misbehaving backend streaming
	// indefinitely.
	streamBodyLimit = 4 << 20
)

// Client speaks the queue protocol against one application base URL
// (for example "https://black-forest-labs-flux-1-schnell.hf.space").
//
// A Client is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL    string
	apiPrefix  string
	provider   string
	token      string
	httpClient provider.HTTPClient
	attempts   int
	baseDelay  time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client. A nil client
// keeps the default.
func WithHTTPClient(hc provider.HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets a default bearer token attached when the caller supplies
// none on SubmitAndAwait.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetry overrides the attempt budget and backoff unit. Non-positive
// values keep the defaults.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
	}
}

// WithAPIPrefix overrides the queue endpoint prefix, for older application
// versions that mount the queue at the root.
func WithAPIPrefix(prefix string) Option {
	return func(c *Client) { c.apiPrefix = prefix }
}

// NewClient creates a queue-protocol client for one application.
// providerName tags every classified error with the owning platform.
func NewClient(providerName, baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiPrefix:  defaultAPIPrefix,
		provider:   providerName,
		httpClient: providerutil.DefaultHTTPClient(),
		attempts:   defaultAttempts,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) callURL(endpoint string) string {
	return c.baseURL + c.apiPrefix + "/call/" + endpoint
}

// SubmitAndAwait runs one job through the queue: submit the inputs, then
// fetch the result stream addressed by the returned event id, and return
// the job's ordered output values.
//
// token, when non-empty, is attached as a bearer authorization header on
// both calls and takes precedence over the client's default token.
//
// Errors:
//   - *zenith.Error for every failure mode: classified upstream failures,
//     exhausted retries, missing event id, and malformed terminal payloads.
func (c *Client) SubmitAndAwait(ctx context.Context, endpoint string, inputs []any, token string) ([]json.RawMessage, error) {
	eventID, err := c.submit(ctx, endpoint, inputs, token)
	if err != nil {
		return nil, err
	}

	body, err := c.awaitStream(ctx, endpoint, eventID, token)
	if err != nil {
		return nil, err
	}

	payload, zerr := extractResult(c.provider, body)
	if zerr != nil {
		return nil, zerr
	}

	outputs, zerr := normalizeOutputs(c.provider, payload)
	if zerr != nil {
		return nil, zerr
	}
	return outputs, nil
}

// submit issues the job-creation call and returns the queue event id.
func (c *Client) submit(ctx context.Context, endpoint string, inputs []any, token string) (string, error) {
	reqBody, err := json.Marshal(map[string]any{"data": inputs})
	if err != nil {
		return "", zenith.ProviderError(c.provider, "encode queue payload: "+err.Error())
	}

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt-1); err != nil {
				return "", err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.callURL(endpoint), bytes.NewReader(reqBody))
		if err != nil {
			return "", zenith.ProviderError(c.provider, err.Error())
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req, token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", zenith.Classify(c.provider, err.Error(), 0)
		}

		if retryable(resp.StatusCode) {
			_ = providerutil.ReadBody(resp, 0)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body := providerutil.ReadBody(resp, errorBodyLimit)
			return "", zenith.Classify(c.provider, body, resp.StatusCode)
		}

		body := providerutil.ReadBody(resp, errorBodyLimit)
		eventID := gjson.Get(body, "event_id").String()
		if eventID == "" {
			return "", zenith.ProviderError(c.provider, "No event_id returned from queue")
		}
		return eventID, nil
	}

	return "", zenith.ProviderError(c.provider, "Queue request failed after retries")
}

// awaitStream fetches the SSE result body for a submitted job. An empty 2xx
// body counts as not-yet-scheduled and is retried like a transient status.
func (c *Client) awaitStream(ctx context.Context, endpoint, eventID, token string) (string, error) {
	url := c.callURL(endpoint) + "/" + eventID

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt-1); err != nil {
				return "", err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", zenith.ProviderError(c.provider, err.Error())
		}
		c.authorize(req, token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", zenith.Classify(c.provider, err.Error(), 0)
		}

		if retryable(resp.StatusCode) {
			_ = providerutil.ReadBody(resp, 0)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body := providerutil.ReadBody(resp, errorBodyLimit)
			return "", zenith.Classify(c.provider, body, resp.StatusCode)
		}

		body := providerutil.ReadBody(resp, streamBodyLimit)
		if body == "" {
			continue
		}
		return body, nil
	}

	return "", zenith.ProviderError(c.provider, "Stream request failed after retries")
}

// authorize attaches the bearer header, preferring the per-call token.
func (c *Client) authorize(req *http.Request, token string) {
	if token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// backoff sleeps for step * baseDelay, or returns early when the context is
// canceled.
func (c *Client) backoff(ctx context.Context, step int) error {
	t := time.NewTimer(time.Duration(step) * c.baseDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		kind := zenith.KindProviderError
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = zenith.KindTimeout
		}
		return &zenith.Error{Kind: kind, Provider: c.provider, Message: ctx.Err().Error()}
	case <-t.C:
		return nil
	}
}

// retryable reports whether status is one of the transient cold-start
// signals worth another attempt. Everything else, including other 5xx
// statuses, fails immediately.
func retryable(status int) bool {
	return status == http.StatusNotFound || status == http.StatusServiceUnavailable
}
