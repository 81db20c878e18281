package gradio

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	zenith "github.com/voici5986/zenith-image-generator"
	"github.com/voici5986/zenith-image-generator/providerutil"
)

// bodyPreviewLimit caps how much of an unrecognized stream body is echoed
// into error messages.
const bodyPreviewLimit = 200

// extractResult scans an SSE-formatted result body for the terminal event
// of a queued job.
//
// The body is a sequence of records, each an "event:" line followed by a
// "data:" line. The first "complete" event wins and its payload is returned
// verbatim. An "error" event is translated through the classifier: the
// message is taken from the payload's error/message/detail field when
// present, falling back to the serialized payload, or to the raw line when
// the payload is not valid JSON. A body with no terminal event at all is a
// provider error carrying a bounded preview of the body.
func extractResult(provider, body string) (json.RawMessage, *zenith.Error) {
	event := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))

		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				return json.RawMessage(data), nil
			case "error":
				return nil, classifyErrorPayload(provider, data)
			}
		}
	}
	return nil, zenith.ProviderError(provider,
		"no terminal event in stream: "+providerutil.Truncate(body, bodyPreviewLimit))
}

// classifyErrorPayload turns the data payload of an "error" event into a
// canonical error. Malformed payloads degrade to classifying the raw text.
func classifyErrorPayload(provider, data string) *zenith.Error {
	if !gjson.Valid(data) {
		return zenith.Classify(provider, data, 0)
	}
	parsed := gjson.Parse(data)
	for _, field := range []string{"error", "message", "detail"} {
		if v := parsed.Get(field); v.Exists() && v.String() != "" {
			return zenith.Classify(provider, v.String(), 0)
		}
	}
	// A bare JSON string payload is itself the message.
	if parsed.Type == gjson.String {
		return zenith.Classify(provider, parsed.String(), 0)
	}
	return zenith.Classify(provider, parsed.Raw, 0)
}

// normalizeOutputs coerces a terminal payload into the plain ordered output
// sequence of the job. Accepted shapes are a bare JSON array, or an object
// carrying the array under "data". Anything else is a provider error with a
// bounded preview of the payload.
func normalizeOutputs(provider string, payload json.RawMessage) ([]json.RawMessage, *zenith.Error) {
	parsed := gjson.ParseBytes(payload)

	var arr gjson.Result
	switch {
	case parsed.IsArray():
		arr = parsed
	case parsed.IsObject() && parsed.Get("data").IsArray():
		arr = parsed.Get("data")
	default:
		return nil, zenith.ProviderError(provider,
			"unexpected result payload: "+providerutil.Truncate(string(payload), bodyPreviewLimit))
	}

	var outputs []json.RawMessage
	arr.ForEach(func(_, value gjson.Result) bool {
		outputs = append(outputs, json.RawMessage(value.Raw))
		return true
	})
	return outputs, nil
}
