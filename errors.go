package zenith

import (
	"net/http"
	"strings"
)

// ErrorKind is the closed vocabulary of failure categories that crosses
// package boundaries. Every upstream failure, whatever its original HTTP
// status or free-text shape, is mapped onto exactly one kind before it
// propagates.
type ErrorKind string

const (
	// KindRateLimited indicates the upstream rejected the call for
	// exceeding its request rate.
	KindRateLimited ErrorKind = "rate_limited"
	// KindQuotaExceeded indicates an account-level usage quota was hit.
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	// KindAuthInvalid indicates the supplied credential was rejected.
	KindAuthInvalid ErrorKind = "auth_invalid"
	// KindAuthRequired indicates a credential is required but was absent.
	KindAuthRequired ErrorKind = "auth_required"
	// KindTimeout indicates the upstream reported a timeout.
	KindTimeout ErrorKind = "timeout"
	// KindProviderError covers all other upstream failures, including
	// cold starts and contract violations such as malformed payloads.
	KindProviderError ErrorKind = "provider_error"
	// KindInvalidParams indicates the caller's request failed validation.
	KindInvalidParams ErrorKind = "invalid_params"
	// KindInvalidPrompt indicates a missing or empty prompt.
	KindInvalidPrompt ErrorKind = "invalid_prompt"
)

// Error is the canonical error carried through the generation pipeline.
// Provider names which backend produced the failure; Message is safe to
// surface to API callers.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Provider == "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + " (" + e.Provider + "): " + e.Message
}

// HTTPStatus maps the error kind onto the status code used by the public
// images endpoint.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindRateLimited, KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindAuthInvalid, KindAuthRequired:
		return http.StatusUnauthorized
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindInvalidParams, KindInvalidPrompt:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// coldStartMessage is returned for 503/"loading" upstream states so callers
// see a stable message instead of whichever text the backend emitted while
// warming up.
const coldStartMessage = "service temporarily unavailable, the backend may be cold-starting; retry shortly"

// Classify maps a raw upstream failure onto a canonical *Error.
//
// The rules are ordered and the first match wins; the quota and rate-limit
// checks run before the generic provider fallback, and status-code signals
// take precedence over substring heuristics within a rule. Matching on
// message text is case-insensitive. status <= 0 means no HTTP status was
// available (e.g. a transport-level failure).
func Classify(provider, message string, status int) *Error {
	lower := strings.ToLower(message)

	switch {
	case status == http.StatusTooManyRequests,
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "too many requests"):
		return &Error{Kind: KindRateLimited, Provider: provider, Message: message}

	case strings.Contains(lower, "quota"), strings.Contains(lower, "exceeded"):
		return &Error{Kind: KindQuotaExceeded, Provider: provider, Message: message}

	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "forbidden"):
		return &Error{Kind: KindAuthInvalid, Provider: provider, Message: message}

	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		return &Error{Kind: KindTimeout, Provider: provider, Message: message}

	case status == http.StatusServiceUnavailable,
		strings.Contains(lower, "unavailable"),
		strings.Contains(lower, "loading"):
		return &Error{Kind: KindProviderError, Provider: provider, Message: coldStartMessage}

	default:
		return &Error{Kind: KindProviderError, Provider: provider, Message: message}
	}
}

// ProviderError builds a KindProviderError with a literal message, used
// where the failure is a contract violation rather than an upstream-reported
// error.
func ProviderError(provider, message string) *Error {
	return &Error{Kind: KindProviderError, Provider: provider, Message: message}
}
