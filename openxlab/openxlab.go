// Package openxlab generates images through mirrored applications on
// OpenXLab, the second mirror platform. Applications speak the Gradio
// queue protocol and are reached at https://<namespace>.openxlab.space.
package openxlab

import (
	"context"
	"fmt"
	"strings"

	"github.com/voici5986/zenith-image-generator/gradio"
	"github.com/voici5986/zenith-image-generator/provider"
)

// Client is the OpenXLab provider client.
type Client struct {
	opts provider.ClientOptions
}

// NewClient creates an OpenXLab client.
func NewClient(opts provider.ClientOptions) *Client {
	return &Client{opts: opts}
}

// ImageModel returns an ImageModel backed by the application for the
// given backend model id.
func (c *Client) ImageModel(model string) provider.ImageModel {
	return &imageModel{client: c, model: model}
}

type imageModel struct {
	client *Client
	model  string
}

func (m *imageModel) appURL() string {
	if m.client.opts.BaseURL != "" {
		return strings.TrimRight(m.client.opts.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.openxlab.space", strings.ReplaceAll(m.model, "/", "-"))
}

func (m *imageModel) Generate(ctx context.Context, req *provider.ImageRequest) (*provider.ImageResponse, error) {
	baseURL := m.appURL()
	qc := gradio.NewClient(string(provider.OpenXLab), baseURL,
		gradio.WithHTTPClient(m.client.opts.HTTPClient),
		gradio.WithToken(m.client.opts.APIKey),
		gradio.WithRetry(m.client.opts.RetryAttempts, m.client.opts.RetryBaseDelay),
	)

	width, height := provider.ParseSize(req.Size, 1024, 1024)

	outputs, err := qc.SubmitAndAwait(ctx, "generate", []any{req.Prompt, width, height}, req.Token)
	if err != nil {
		return nil, err
	}

	img, zerr := gradio.FirstImage(string(provider.OpenXLab), baseURL, outputs)
	if zerr != nil {
		return nil, zerr
	}
	return &provider.ImageResponse{Images: []provider.Image{img}}, nil
}

var _ provider.ImageModel = (*imageModel)(nil)
