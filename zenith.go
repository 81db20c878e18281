// Package zenith bridges an OpenAI-compatible image generation surface
// onto free-tier, queue-based inference backends. The root package holds
// the canonical error taxonomy and a small high-level helper; provider
// clients live in their own packages and the HTTP surface in server.
package zenith

import (
	"context"

	"github.com/voici5986/zenith-image-generator/provider"
)

// Aliases to provider-level types so users can work through the zenith
// package while providers implement the shared interfaces.
type (
	// ImageModel is a provider-agnostic image generation model.
	ImageModel = provider.ImageModel
	// Image is a generated image returned by image models.
	Image = provider.Image
)

// ImageRequest is a high-level request for image generation.
type ImageRequest struct {
	// Model is the image model used to generate the response.
	Model ImageModel
	// ModelID is the backend model identifier, carried for logging and
	// provider-side dispatch.
	ModelID string
	// Prompt is the text prompt.
	Prompt string
	// Size is an optional provider-specific size hint (e.g. "1024x1024").
	Size string
	// Token is an optional caller-supplied bearer credential forwarded
	// to the backend platform.
	Token string
}

// ImageResponse contains the generated images.
type ImageResponse struct {
	Images []Image
}

// GenerateImage calls the underlying ImageModel.Generate and returns the
// generated images.
//
// Errors:
//   - *Error with KindInvalidPrompt if the prompt is empty.
//   - *Error with KindInvalidParams if req.Model is nil.
//   - Any error returned by the provider implementation; queue-backed
//     providers always return a classified *Error.
func GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error) {
	if req.Model == nil {
		return ImageResponse{}, &Error{Kind: KindInvalidParams, Message: "missing image model"}
	}
	if req.Prompt == "" {
		return ImageResponse{}, &Error{Kind: KindInvalidPrompt, Message: "prompt must not be empty"}
	}

	res, err := req.Model.Generate(ctx, &provider.ImageRequest{
		Model:          req.ModelID,
		Prompt:         req.Prompt,
		Size:           req.Size,
		ResponseFormat: "url",
		Token:          req.Token,
	})
	if err != nil {
		return ImageResponse{}, err
	}

	return ImageResponse{Images: res.Images}, nil
}
