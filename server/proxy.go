package server

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/voici5986/zenith-image-generator/blobcache"
)

// proxyPath is the same-origin route that relays platform-hosted image
// files, constructed by ToProxyURL and served by handleProxyImage.
const proxyPath = "/api/proxy-image"

// platformHostSuffixes are the hosting-platform domains whose raw file
// URLs expire or sit behind cold backends, and therefore get proxied.
var platformHostSuffixes = []string{".hf.space", ".ms.show", ".openxlab.space"}

// rawFilePathPrefixes mark a URL path as a raw inline-file reference on a
// platform host.
var rawFilePathPrefixes = []string{"/gradio_api/file=", "/file="}

// ToProxyURL rewrites an asset URL onto the same-origin proxy route when,
// and only when, its host ends in a recognized platform suffix and its
// path is a raw file reference. Everything else is returned unchanged, so
// the rewrite is idempotent: a proxied URL has a same-origin path and
// never matches again.
//
// When the URL does not parse at all, a substring fallback decides instead
// of dropping the asset.
func ToProxyURL(asset string) string {
	u, err := url.Parse(asset)
	if err != nil {
		if containsAny(asset, platformHostSuffixes) && containsAny(asset, rawFilePathPrefixes) {
			return proxyPath + "?url=" + url.QueryEscape(asset)
		}
		return asset
	}

	if !hasSuffixAny(u.Hostname(), platformHostSuffixes) {
		return asset
	}
	if !hasPrefixAny(u.Path, rawFilePathPrefixes) {
		return asset
	}
	return proxyPath + "?url=" + url.QueryEscape(asset)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasSuffixAny(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// handleProxyImage relays a platform-hosted image, caching the bytes so
// repeated views do not re-hit a cold backend. Cache failures are logged
// and the request proceeds without caching.
func (s *Server) handleProxyImage(c *fiber.Ctx) error {
	raw := c.Query("url")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing url parameter"})
	}

	u, err := url.Parse(raw)
	if err != nil || !hasSuffixAny(u.Hostname(), platformHostSuffixes) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is not a recognized platform asset"})
	}

	key := cacheKey(raw)
	if blob, ok := s.cache.Get(key); ok {
		c.Set(fiber.HeaderContentType, blob.ContentType)
		return c.Send(blob.Data)
	}

	resp, err := s.httpClient.Get(raw)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to fetch asset"})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream returned " + resp.Status})
	}

	// Read one byte past the cap so an oversize asset is refused rather
	// than silently truncated and cached.
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxProxyBytes+1))
	if err != nil {
		s.logger.Warn("proxy read failed", zap.String("url", raw), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to read asset"})
	}
	if int64(len(data)) > s.maxProxyBytes {
		s.logger.Warn("proxy asset too large", zap.String("url", raw), zap.Int64("limit", s.maxProxyBytes))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "asset exceeds size limit"})
	}

	contentType := resp.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	s.cache.Store(key, blobcache.Blob{Data: data, ContentType: contentType})

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

// defaultMaxProxyBytes caps a single proxied asset unless overridden via
// Options.MaxProxyBytes.
const defaultMaxProxyBytes = 32 << 20

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
