package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voici5986/zenith-image-generator/provider"
)

func TestResolveKnownID(t *testing.T) {
	target := Resolve("flux-schnell")
	assert.Equal(t, provider.HuggingFace, target.Provider)
	assert.Equal(t, "black-forest-labs-flux-1-schnell", target.Model)
}

func TestResolveAlias(t *testing.T) {
	canonical := Resolve("flux-schnell")
	assert.Equal(t, canonical, Resolve("flux.1-schnell"))
	assert.Equal(t, canonical, Resolve("black-forest-labs/FLUX.1-schnell"))
}

func TestResolveMirroredPlatforms(t *testing.T) {
	assert.Equal(t, provider.ModelScope, Resolve("flux-schnell-ms").Provider)
	assert.Equal(t, provider.OpenXLab, Resolve("flux-schnell-xlab").Provider)
}

// Unknown ids never fail; they fall back to the default target.
func TestResolveUnknownFallsBack(t *testing.T) {
	target := Resolve("dall-e-3")
	assert.Equal(t, defaultTarget, target)

	assert.Equal(t, defaultTarget, Resolve(""))
}

func TestModels(t *testing.T) {
	cards := Models()
	assert.Len(t, cards, len(entries))

	for _, card := range cards {
		assert.Equal(t, "model", card.Object)
		assert.NotEmpty(t, card.ID)
		assert.NotEmpty(t, card.OwnedBy)
		assert.Positive(t, card.Created)
	}
}

func TestTargetsAreDistinct(t *testing.T) {
	targets := Targets()
	seen := make(map[Target]bool, len(targets))
	for _, target := range targets {
		assert.False(t, seen[target], "duplicate target %+v", target)
		seen[target] = true
	}
	assert.NotEmpty(t, targets)
}
