// Package huggingface generates images through Gradio spaces hosted on
// Hugging Face. Each backend model id is the namespace of a space, reached
// at https://<namespace>.hf.space.
package huggingface

import (
	"context"
	"fmt"
	"strings"

	"github.com/voici5986/zenith-image-generator/gradio"
	"github.com/voici5986/zenith-image-generator/provider"
)

// Client is the Hugging Face Spaces provider client.
type Client struct {
	opts provider.ClientOptions
}

// NewClient creates a Hugging Face Spaces client. All options are
// optional: anonymous calls are accepted by public spaces, subject to
// much tighter rate limits.
func NewClient(opts provider.ClientOptions) *Client {
	return &Client{opts: opts}
}

// ImageModel returns an ImageModel backed by the space for the given
// backend model id.
func (c *Client) ImageModel(model string) provider.ImageModel {
	return &imageModel{client: c, model: model}
}

type imageModel struct {
	client *Client
	model  string
}

// spaceURL derives the application base URL for a space namespace.
// ClientOptions.BaseURL, when set, replaces the host entirely (used in
// tests and for self-hosted mirrors).
func (m *imageModel) spaceURL() string {
	if m.client.opts.BaseURL != "" {
		return strings.TrimRight(m.client.opts.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.hf.space", strings.ReplaceAll(m.model, "/", "-"))
}

func (m *imageModel) Generate(ctx context.Context, req *provider.ImageRequest) (*provider.ImageResponse, error) {
	baseURL := m.spaceURL()
	qc := gradio.NewClient(string(provider.HuggingFace), baseURL,
		gradio.WithHTTPClient(m.client.opts.HTTPClient),
		gradio.WithToken(m.client.opts.APIKey),
		gradio.WithRetry(m.client.opts.RetryAttempts, m.client.opts.RetryBaseDelay),
	)

	width, height := provider.ParseSize(req.Size, 1024, 1024)

	// The flux-style spaces expose an "infer" endpoint taking
	// [prompt, seed, randomize_seed, width, height, steps].
	inputs := []any{req.Prompt, 0, true, width, height, 4}

	outputs, err := qc.SubmitAndAwait(ctx, "infer", inputs, req.Token)
	if err != nil {
		return nil, err
	}

	img, zerr := gradio.FirstImage(string(provider.HuggingFace), baseURL, outputs)
	if zerr != nil {
		return nil, zerr
	}
	return &provider.ImageResponse{Images: []provider.Image{img}}, nil
}

var _ provider.ImageModel = (*imageModel)(nil)
