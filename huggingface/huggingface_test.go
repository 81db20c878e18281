package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zenith "github.com/voici5986/zenith-image-generator"
	"github.com/voici5986/zenith-image-generator/provider"
)

func TestGenerateMapsQueueProtocol(t *testing.T) {
	var submitBody struct {
		Data []any `json:"data"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/gradio_api/call/infer":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&submitBody))
			fmt.Fprint(w, `{"event_id":"ev-9"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/gradio_api/call/infer/ev-9":
			fmt.Fprint(w, "event: complete\ndata: [{\"url\":\"https://x.hf.space/gradio_api/file=/tmp/out.webp\"}]\n\n")
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	client := NewClient(provider.ClientOptions{
		BaseURL:        ts.URL,
		HTTPClient:     ts.Client(),
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
	})
	model := client.ImageModel("black-forest-labs-flux-1-schnell")

	res, err := model.Generate(context.Background(), &provider.ImageRequest{
		Prompt: "a lighthouse",
		Size:   "512x768",
	})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, "https://x.hf.space/gradio_api/file=/tmp/out.webp", res.Images[0].URL)

	// [prompt, seed, randomize_seed, width, height, steps]
	require.Len(t, submitBody.Data, 6)
	assert.Equal(t, "a lighthouse", submitBody.Data[0])
	assert.Equal(t, float64(512), submitBody.Data[3])
	assert.Equal(t, float64(768), submitBody.Data[4])
}

func TestGeneratePathOutputMadeAbsolute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"event_id":"ev-1"}`)
			return
		}
		fmt.Fprint(w, "event: complete\ndata: [{\"path\":\"/tmp/gradio/out.webp\"}]\n\n")
	}))
	defer ts.Close()

	client := NewClient(provider.ClientOptions{BaseURL: ts.URL, HTTPClient: ts.Client(), RetryBaseDelay: time.Millisecond})
	res, err := client.ImageModel("m").Generate(context.Background(), &provider.ImageRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/gradio_api/file=/tmp/gradio/out.webp", res.Images[0].URL)
}

func TestGenerateClassifiedErrorPassthrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "rate limit")
	}))
	defer ts.Close()

	client := NewClient(provider.ClientOptions{BaseURL: ts.URL, HTTPClient: ts.Client(), RetryBaseDelay: time.Millisecond})
	_, err := client.ImageModel("m").Generate(context.Background(), &provider.ImageRequest{Prompt: "p"})

	var zerr *zenith.Error
	require.ErrorAs(t, err, &zerr)
	assert.Equal(t, zenith.KindRateLimited, zerr.Kind)
	assert.Equal(t, string(provider.HuggingFace), zerr.Provider)
}

func TestSpaceURLDerivation(t *testing.T) {
	m := NewClient(provider.ClientOptions{}).ImageModel("black-forest-labs/FLUX.1-schnell").(*imageModel)
	assert.Equal(t, "https://black-forest-labs-FLUX.1-schnell.hf.space", m.spaceURL())
}
