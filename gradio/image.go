package gradio

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	zenith "github.com/voici5986/zenith-image-generator"
	"github.com/voici5986/zenith-image-generator/provider"
	"github.com/voici5986/zenith-image-generator/providerutil"
)

// FirstImage maps the leading output value of a completed job onto an
// image. Applications report the generated file in a handful of shapes:
// an object with a url, an object with a server-side path, an object
// nesting either under "image", or a bare URL string. Paths are made
// absolute against the application base URL using the raw-file route.
func FirstImage(providerName, baseURL string, outputs []json.RawMessage) (provider.Image, *zenith.Error) {
	if len(outputs) == 0 {
		return provider.Image{}, zenith.ProviderError(providerName, "empty result from queue job")
	}

	out := gjson.ParseBytes(outputs[0])
	if img := out.Get("image"); img.IsObject() {
		out = img
	}

	switch {
	case out.Type == gjson.String && out.String() != "":
		return provider.Image{URL: absoluteURL(baseURL, out.String())}, nil
	case out.Get("url").String() != "":
		return provider.Image{URL: out.Get("url").String()}, nil
	case out.Get("path").String() != "":
		return provider.Image{URL: baseURL + defaultAPIPrefix + "/file=" + out.Get("path").String()}, nil
	}

	return provider.Image{}, zenith.ProviderError(providerName,
		"unrecognized image output: "+providerutil.Truncate(string(outputs[0]), bodyPreviewLimit))
}

func absoluteURL(baseURL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return baseURL + defaultAPIPrefix + "/file=" + strings.TrimPrefix(ref, "/")
}
