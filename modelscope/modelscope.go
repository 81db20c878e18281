// Package modelscope generates images through mirrored studios on
// ModelScope. Studios speak the same queue protocol as Gradio spaces and
// are reached at https://<namespace>.ms.show. The platform rejects
// anonymous calls, so a token is mandatory; this is enforced at the API
// boundary before any network call.
package modelscope

import (
	"context"
	"fmt"
	"strings"

	"github.com/voici5986/zenith-image-generator/gradio"
	"github.com/voici5986/zenith-image-generator/provider"
)

// Client is the ModelScope Studios provider client.
type Client struct {
	opts provider.ClientOptions
}

// NewClient creates a ModelScope Studios client.
func NewClient(opts provider.ClientOptions) *Client {
	return &Client{opts: opts}
}

// ImageModel returns an ImageModel backed by the studio for the given
// backend model id.
func (c *Client) ImageModel(model string) provider.ImageModel {
	return &imageModel{client: c, model: model}
}

type imageModel struct {
	client *Client
	model  string
}

func (m *imageModel) studioURL() string {
	if m.client.opts.BaseURL != "" {
		return strings.TrimRight(m.client.opts.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.ms.show", strings.ReplaceAll(m.model, "/", "-"))
}

func (m *imageModel) Generate(ctx context.Context, req *provider.ImageRequest) (*provider.ImageResponse, error) {
	baseURL := m.studioURL()
	qc := gradio.NewClient(string(provider.ModelScope), baseURL,
		gradio.WithHTTPClient(m.client.opts.HTTPClient),
		gradio.WithToken(m.client.opts.APIKey),
		gradio.WithRetry(m.client.opts.RetryAttempts, m.client.opts.RetryBaseDelay),
	)

	// Muse-style studios take the bare prompt on a "generate" endpoint.
	outputs, err := qc.SubmitAndAwait(ctx, "generate", []any{req.Prompt}, req.Token)
	if err != nil {
		return nil, err
	}

	img, zerr := gradio.FirstImage(string(provider.ModelScope), baseURL, outputs)
	if zerr != nil {
		return nil, zerr
	}
	return &provider.ImageResponse{Images: []provider.Image{img}}, nil
}

var _ provider.ImageModel = (*imageModel)(nil)
