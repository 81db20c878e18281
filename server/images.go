package server

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	zenith "github.com/voici5986/zenith-image-generator"
	"github.com/voici5986/zenith-image-generator/catalog"
	"github.com/voici5986/zenith-image-generator/provider"
)

// generationRequest is the public request body of the images endpoint,
// following the OpenAI images/generations shape.
type generationRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	N              *int   `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

// generationResponse is the public success shape.
type generationResponse struct {
	Created int64             `json:"created"`
	Data    []generationImage `json:"data"`
}

type generationImage struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// handleGenerations is the request/response adapter: validate the public
// shape, resolve the target platform, check credential affinity, run the
// provider's generation flow, and rewrite the asset URL on the way out.
func (s *Server) handleGenerations(c *fiber.Ctx) error {
	var req generationRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return s.respondError(c, &zenith.Error{Kind: zenith.KindInvalidParams, Message: "body must be valid JSON"})
	}
	if req.Prompt == "" {
		return s.respondError(c, &zenith.Error{Kind: zenith.KindInvalidPrompt, Message: "prompt must not be empty"})
	}
	if req.N != nil && *req.N != 1 {
		return s.respondError(c, &zenith.Error{Kind: zenith.KindInvalidParams, Message: "n must be 1"})
	}
	if req.ResponseFormat != "" && req.ResponseFormat != "url" {
		return s.respondError(c, &zenith.Error{Kind: zenith.KindInvalidParams, Message: "response_format must be \"url\""})
	}

	target := catalog.Resolve(req.Model)
	cred := ParseBearerToken(c.Get(fiber.HeaderAuthorization))

	if cred.ProviderHint != "" && cred.ProviderHint != target.Provider {
		return s.respondError(c, &zenith.Error{
			Kind:     zenith.KindInvalidParams,
			Provider: string(target.Provider),
			Message:  "Authorization token is scoped to " + string(cred.ProviderHint),
		})
	}
	if provider.ConfigFor(target.Provider).AuthRequired && cred.Token == "" {
		return s.respondError(c, &zenith.Error{
			Kind:     zenith.KindAuthRequired,
			Provider: string(target.Provider),
			Message:  string(target.Provider) + " requires an Authorization token",
		})
	}

	model, err := s.registry.ImageModel(string(target.Provider) + "/" + target.Model)
	if err != nil {
		// Catalog targets are registered at startup; a miss means the
		// wiring and the catalog disagree.
		s.logger.Error("unregistered catalog target",
			zap.String("provider", string(target.Provider)), zap.String("model", target.Model))
		return s.respondError(c, zenith.ProviderError(string(target.Provider), "model is not available"))
	}

	res, err := zenith.GenerateImage(c.UserContext(), zenith.ImageRequest{
		Model:   model,
		ModelID: target.Model,
		Prompt:  req.Prompt,
		Size:    req.Size,
		Token:   cred.Token,
	})
	if err != nil {
		return s.respondError(c, asCanonical(err, string(target.Provider)))
	}

	data := make([]generationImage, 0, len(res.Images))
	for _, img := range res.Images {
		data = append(data, generationImage{
			URL:           ToProxyURL(img.URL),
			RevisedPrompt: img.RevisedPrompt,
		})
	}

	return c.JSON(generationResponse{Created: time.Now().Unix(), Data: data})
}

// handleModels serves the static model catalog.
func (s *Server) handleModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"object": "list",
		"data":   catalog.Models(),
	})
}
