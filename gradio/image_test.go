package gradio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zenith "github.com/voici5986/zenith-image-generator"
)

func TestFirstImage(t *testing.T) {
	base := "https://x.hf.space"

	tests := []struct {
		name    string
		output  string
		wantURL string
	}{
		{"url object", `{"url":"https://x.hf.space/gradio_api/file=/tmp/a.webp"}`, "https://x.hf.space/gradio_api/file=/tmp/a.webp"},
		{"path object", `{"path":"/tmp/gradio/a.webp"}`, base + "/gradio_api/file=/tmp/gradio/a.webp"},
		{"nested image object", `{"image":{"url":"https://x/a.png"},"seed":7}`, "https://x/a.png"},
		{"bare absolute string", `"https://x/a.png"`, "https://x/a.png"},
		{"bare relative string", `"tmp/a.png"`, base + "/gradio_api/file=tmp/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, zerr := FirstImage("hf", base, []json.RawMessage{json.RawMessage(tt.output)})
			require.Nil(t, zerr)
			assert.Equal(t, tt.wantURL, img.URL)
		})
	}
}

func TestFirstImageFailures(t *testing.T) {
	_, zerr := FirstImage("hf", "https://x", nil)
	require.NotNil(t, zerr)
	assert.Equal(t, zenith.KindProviderError, zerr.Kind)

	_, zerr = FirstImage("hf", "https://x", []json.RawMessage{json.RawMessage(`{"seed":7}`)})
	require.NotNil(t, zerr)
	assert.Contains(t, zerr.Message, "unrecognized image output")
}
