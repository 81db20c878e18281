package providerutil

import (
	"io"
	"net/http"
	"time"
)

// DefaultHTTPClient returns the HTTP client used when none is provided.
// Queue-backed applications can take a while to produce their terminal
// event, so the timeout is generous.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Minute}
}

// ReadBody drains and closes a response body, capping the number of bytes
// read. Backends occasionally return very large HTML error pages; the cap
// keeps error messages and SSE buffers bounded.
func ReadBody(resp *http.Response, limit int64) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, limit))
	return string(b)
}

// Truncate returns s capped at n bytes, for embedding raw upstream text in
// error messages without leaking unbounded content.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
