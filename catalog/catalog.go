// Package catalog holds the static model table: the public model ids the
// API accepts, the platform each one lives on, and the backend application
// it maps to. All data here is immutable after init.
package catalog

import (
	"github.com/samber/lo"

	"github.com/voici5986/zenith-image-generator/provider"
)

// Target is the resolved destination for a requested model id.
type Target struct {
	Provider provider.Name
	// Model is the backend model identifier understood by the platform
	// client (typically the application namespace).
	Model string
}

// Entry describes one public model.
type Entry struct {
	// ID is the public model id accepted by the images endpoint.
	ID string
	// OwnedBy is reported on the /models card.
	OwnedBy string
	// Created is the unix timestamp reported on the /models card.
	Created int64
	// Target is where requests for this model are dispatched.
	Target Target
	// Aliases are additional public ids resolving to the same target,
	// covering mirrored catalog names.
	Aliases []string
}

// entries is the static catalog. Mirrored ids on the secondary platforms
// are reachable both by alias and by their own entries where the backend
// application differs.
var entries = []Entry{
	{
		ID:      "flux-schnell",
		OwnedBy: "black-forest-labs",
		Created: 1725148800,
		Target:  Target{Provider: provider.HuggingFace, Model: "black-forest-labs-flux-1-schnell"},
		Aliases: []string{"flux.1-schnell", "black-forest-labs/FLUX.1-schnell"},
	},
	{
		ID:      "flux-dev",
		OwnedBy: "black-forest-labs",
		Created: 1725148800,
		Target:  Target{Provider: provider.HuggingFace, Model: "black-forest-labs-flux-1-dev"},
		Aliases: []string{"flux.1-dev", "black-forest-labs/FLUX.1-dev"},
	},
	{
		ID:      "sdxl-turbo",
		OwnedBy: "stabilityai",
		Created: 1701388800,
		Target:  Target{Provider: provider.HuggingFace, Model: "stabilityai-sdxl-turbo"},
		Aliases: []string{"stabilityai/sdxl-turbo"},
	},
	{
		ID:      "flux-schnell-ms",
		OwnedBy: "modelscope",
		Created: 1727740800,
		Target:  Target{Provider: provider.ModelScope, Model: "muse/flux-schnell"},
		Aliases: []string{"modelscope/flux-schnell"},
	},
	{
		ID:      "sd3-medium-ms",
		OwnedBy: "modelscope",
		Created: 1727740800,
		Target:  Target{Provider: provider.ModelScope, Model: "muse/sd3-medium"},
		Aliases: []string{"modelscope/sd3-medium"},
	},
	{
		ID:      "flux-schnell-xlab",
		OwnedBy: "openxlab",
		Created: 1730419200,
		Target:  Target{Provider: provider.OpenXLab, Model: "apps/flux-schnell"},
		Aliases: []string{"openxlab/flux-schnell"},
	},
}

// defaultTarget serves requests whose model id is not in the table.
var defaultTarget = Target{Provider: provider.HuggingFace, Model: "black-forest-labs-flux-1-schnell"}

// byID indexes entries and aliases for resolution.
var byID = func() map[string]Target {
	m := make(map[string]Target, len(entries)*2)
	for _, e := range entries {
		m[e.ID] = e.Target
		for _, a := range e.Aliases {
			m[a] = e.Target
		}
	}
	return m
}()

// Resolve maps a requested model id onto its target platform and backend
// model. Unknown ids resolve to the default target instead of failing: the
// public surface mirrors catalogs that exist under many names, and callers
// holding an unrecognized alias still get a usable model.
func Resolve(modelID string) Target {
	if t, ok := byID[modelID]; ok {
		return t
	}
	return defaultTarget
}

// ModelCard is one element of the public /models listing.
type ModelCard struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// Models returns the public model cards in catalog order.
func Models() []ModelCard {
	return lo.Map(entries, func(e Entry, _ int) ModelCard {
		return ModelCard{ID: e.ID, Object: "model", Created: e.Created, OwnedBy: e.OwnedBy}
	})
}

// Targets returns the distinct dispatch targets in catalog order, used at
// startup to register one provider model per target.
func Targets() []Target {
	return lo.Uniq(lo.Map(entries, func(e Entry, _ int) Target { return e.Target }))
}
