package gradio

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zenith "github.com/voici5986/zenith-image-generator"
)

func TestExtractResultComplete(t *testing.T) {
	body := "event: complete\ndata: [{\"url\":\"https://x/img.png\"}]\n\n"

	payload, zerr := extractResult("hf", body)
	require.Nil(t, zerr)
	assert.JSONEq(t, `[{"url":"https://x/img.png"}]`, string(payload))
}

// The first complete event wins; later records are never consulted.
func TestExtractResultFirstCompleteWins(t *testing.T) {
	body := strings.Join([]string{
		"event: heartbeat",
		"data: null",
		"event: complete",
		`data: ["first"]`,
		"event: complete",
		`data: ["second"]`,
		"",
	}, "\n")

	payload, zerr := extractResult("hf", body)
	require.Nil(t, zerr)
	assert.JSONEq(t, `["first"]`, string(payload))
}

func TestExtractResultErrorEvent(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantKind zenith.ErrorKind
		wantMsg  string
	}{
		{
			name:     "error field",
			data:     `{"error":"rate limit exceeded for free tier"}`,
			wantKind: zenith.KindRateLimited,
			wantMsg:  "rate limit exceeded for free tier",
		},
		{
			name:     "message field",
			data:     `{"message":"GPU quota reached"}`,
			wantKind: zenith.KindQuotaExceeded,
			wantMsg:  "GPU quota reached",
		},
		{
			name:     "bare string payload",
			data:     `"request timed out"`,
			wantKind: zenith.KindTimeout,
			wantMsg:  "request timed out",
		},
		{
			name:     "no recognized field falls back to raw payload",
			data:     `{"code":500}`,
			wantKind: zenith.KindProviderError,
			wantMsg:  `{"code":500}`,
		},
		{
			name:     "malformed payload degrades to raw text",
			data:     `not json at all`,
			wantKind: zenith.KindProviderError,
			wantMsg:  "not json at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := "event: error\ndata: " + tt.data + "\n\n"
			payload, zerr := extractResult("hf", body)
			require.Nil(t, payload)
			require.NotNil(t, zerr)
			assert.Equal(t, tt.wantKind, zerr.Kind)
			assert.Equal(t, tt.wantMsg, zerr.Message)
		})
	}
}

// The error message reflects the parsed field, never the JSON wrapper.
func TestExtractResultErrorMessageNotWrapped(t *testing.T) {
	body := "event: error\ndata: {\"error\":\"boom\"}\n"
	_, zerr := extractResult("hf", body)
	require.NotNil(t, zerr)
	assert.Equal(t, "boom", zerr.Message)
	assert.NotContains(t, zerr.Message, "{")
}

func TestExtractResultNoTerminalEvent(t *testing.T) {
	long := strings.Repeat("x", 500)
	body := "event: heartbeat\ndata: " + long + "\n"

	_, zerr := extractResult("hf", body)
	require.NotNil(t, zerr)
	assert.Equal(t, zenith.KindProviderError, zerr.Kind)

	preview := strings.TrimPrefix(zerr.Message, "no terminal event in stream: ")
	assert.Len(t, preview, bodyPreviewLimit)
	assert.True(t, strings.HasPrefix(body, preview))
}

func TestNormalizeOutputs(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		outputs, zerr := normalizeOutputs("hf", json.RawMessage(`[1, "two", {"three":3}]`))
		require.Nil(t, zerr)
		require.Len(t, outputs, 3)
		assert.Equal(t, `"two"`, string(outputs[1]))
	})

	t.Run("object with data field", func(t *testing.T) {
		outputs, zerr := normalizeOutputs("hf", json.RawMessage(`{"data":[{"url":"u"}]}`))
		require.Nil(t, zerr)
		require.Len(t, outputs, 1)
		assert.JSONEq(t, `{"url":"u"}`, string(outputs[0]))
	})

	t.Run("unexpected shape", func(t *testing.T) {
		_, zerr := normalizeOutputs("hf", json.RawMessage(`{"values":[1]}`))
		require.NotNil(t, zerr)
		assert.Equal(t, zenith.KindProviderError, zerr.Kind)
		assert.Contains(t, zerr.Message, "unexpected result payload")
	})
}
