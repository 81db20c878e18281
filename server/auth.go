package server

import (
	"strings"

	"github.com/voici5986/zenith-image-generator/provider"
)

// Credential is the parsed form of the inbound authorization header.
type Credential struct {
	// Token is the bearer token with any affinity prefix stripped.
	Token string
	// ProviderHint, when non-empty, scopes the token to one platform;
	// requests resolving to a different platform are rejected before any
	// network call.
	ProviderHint provider.Name
}

// ParseBearerToken extracts a credential from an authorization header
// value. The "Bearer " scheme prefix is stripped case-insensitively. A
// platform affinity prefix (e.g. "hf:") sets ProviderHint and is stripped
// from the stored token; a platform's native token shape (e.g. "hf_…")
// also sets ProviderHint but is part of the real token and is kept
// verbatim. An empty header yields a zero Credential.
func ParseBearerToken(header string) Credential {
	token := strings.TrimSpace(header)
	if token == "" {
		return Credential{}
	}
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return Credential{}
	}

	for _, cfg := range provider.Configs {
		if cfg.TokenPrefix != "" && strings.HasPrefix(token, cfg.TokenPrefix) {
			return Credential{
				Token:        strings.TrimPrefix(token, cfg.TokenPrefix),
				ProviderHint: cfg.Name,
			}
		}
	}
	for _, cfg := range provider.Configs {
		if cfg.NativePrefix != "" && strings.HasPrefix(token, cfg.NativePrefix) {
			return Credential{Token: token, ProviderHint: cfg.Name}
		}
	}
	return Credential{Token: token}
}
