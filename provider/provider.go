package provider

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPClient is the minimal interface required from an HTTP client.
// It matches the Do method on *http.Client and allows callers to
// substitute custom clients or test doubles.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Name identifies a backend platform hosting the inference applications.
type Name string

const (
	// HuggingFace hosts the primary catalog of Gradio spaces.
	HuggingFace Name = "huggingface"
	// ModelScope hosts mirrored studios speaking the same queue protocol.
	ModelScope Name = "modelscope"
	// OpenXLab hosts a second mirrored catalog.
	OpenXLab Name = "openxlab"
)

// ClientOptions are shared options for all provider clients.
// Providers typically accept these options in their constructors.
type ClientOptions struct {
	// BaseURL overrides the platform's default application host template.
	// Application namespaces are appended to it.
	BaseURL string
	// APIKey is a platform token used when the caller supplies none.
	APIKey string
	// HTTPClient is the underlying HTTP client. If nil, a default
	// client should be used by the provider.
	HTTPClient HTTPClient
	// RetryAttempts caps queue-protocol attempts per round-trip.
	// Zero means the provider default.
	RetryAttempts int
	// RetryBaseDelay is the unit of the linear backoff between attempts.
	// Zero means the provider default.
	RetryBaseDelay time.Duration
}

// Config is the static per-platform policy consulted before any network
// call is made.
type Config struct {
	// Name is the platform identifier.
	Name Name
	// AuthRequired reports whether the platform rejects anonymous calls.
	AuthRequired bool
	// TokenPrefix, when non-empty, is the affinity prefix that scopes a
	// bearer credential to this platform. The prefix is stripped before
	// the remainder is forwarded as the real token.
	TokenPrefix string
	// NativePrefix, when non-empty, is the leading shape of the
	// platform's own tokens (e.g. "hf_"). It also scopes the credential
	// but is part of the real token and is forwarded verbatim.
	NativePrefix string
}

// Configs lists the static platform policies. The slice and its elements
// are never mutated after init.
var Configs = []Config{
	{Name: HuggingFace, AuthRequired: false, TokenPrefix: "hf:", NativePrefix: "hf_"},
	{Name: ModelScope, AuthRequired: true, TokenPrefix: "ms:", NativePrefix: "ms-"},
	{Name: OpenXLab, AuthRequired: false, TokenPrefix: "ox:"},
}

// ConfigFor returns the platform policy for name. Unknown names return a
// zero-value Config with only Name set, which behaves like an anonymous
// platform with no affinity prefix.
func ConfigFor(name Name) Config {
	for _, c := range Configs {
		if c.Name == name {
			return c
		}
	}
	return Config{Name: name}
}

// ImageModel is the provider-facing interface for image generation.
// Implementations map ImageRequest values onto the platform's queue
// protocol.
type ImageModel interface {
	Generate(ctx context.Context, req *ImageRequest) (*ImageResponse, error)
}

// ImageRequest describes inputs for image generation.
type ImageRequest struct {
	// Model is the backend model identifier on the platform.
	Model string
	// Prompt is the text prompt used to generate the image.
	Prompt string
	// Size is an optional provider-specific size hint (e.g. "1024x1024").
	Size string
	// ResponseFormat controls how images are returned; only "url" is
	// supported by the queue-backed providers.
	ResponseFormat string
	// Token is the caller-supplied bearer credential, forwarded to the
	// platform. When empty the client's own APIKey (if any) is used.
	Token string
}

// Image contains a single generated image.
type Image struct {
	// URL is the remote location of the generated image.
	URL string
	// RevisedPrompt is the backend's rewritten prompt, when reported.
	RevisedPrompt string
}

// ImageResponse contains generated images.
type ImageResponse struct {
	Images []Image
}

// ParseSize splits a "WxH" size hint into width and height, falling back
// to the given defaults when the hint is absent or malformed.
func ParseSize(size string, defWidth, defHeight int) (int, int) {
	parts := strings.SplitN(size, "x", 2)
	if len(parts) != 2 {
		return defWidth, defHeight
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return defWidth, defHeight
	}
	return w, h
}
