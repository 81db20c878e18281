// Package server exposes the OpenAI-compatible HTTP surface: image
// generation, the model catalog, and the asset proxy.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	zenith "github.com/voici5986/zenith-image-generator"
	"github.com/voici5986/zenith-image-generator/blobcache"
	"github.com/voici5986/zenith-image-generator/registry"
)

// Options configure a Server.
type Options struct {
	// Registry dispatches resolved targets to provider implementations.
	Registry registry.Registry
	// Cache backs the image proxy route. If nil, a default-capacity
	// cache is created.
	Cache *blobcache.Cache
	// Logger is the server logger. If nil, zap's global logger is used.
	Logger *zap.Logger
	// HTTPClient fetches proxied assets. If nil, a default client with a
	// 30s timeout is used.
	HTTPClient *http.Client
	// MaxProxyBytes caps a single proxied asset. Zero means the default
	// (32 MiB). Oversize assets are refused, never truncated.
	MaxProxyBytes int64
}

// Server is the HTTP application.
type Server struct {
	app           *fiber.App
	registry      registry.Registry
	cache         *blobcache.Cache
	logger        *zap.Logger
	httpClient    *http.Client
	maxProxyBytes int64
}

// New builds the fiber application and registers all routes.
func New(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, errors.New("server: Options.Registry is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}

	cache := opts.Cache
	if cache == nil {
		var err error
		cache, err = blobcache.New(256)
		if err != nil {
			return nil, err
		}
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	maxBytes := opts.MaxProxyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxProxyBytes
	}

	s := &Server{
		registry:      opts.Registry,
		cache:         cache,
		logger:        logger,
		httpClient:    hc,
		maxProxyBytes: maxBytes,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})

	app.Use(cors.New())
	app.Use(s.requestLogger)

	app.Post("/v1/images/generations", s.handleGenerations)
	app.Post("/images/generations", s.handleGenerations)
	app.Get("/v1/models", s.handleModels)
	app.Get("/models", s.handleModels)
	app.Get(proxyPath, s.handleProxyImage)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "cache": s.cache.Report()})
	})

	s.app = app
	return s, nil
}

// requestLogger tags each request with an id and logs its outcome.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	c.Set("X-Request-Id", requestID)

	start := time.Now()
	err := c.Next()

	s.logger.Info("http request",
		zap.String("request_id", requestID),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// errorEnvelope is the public error shape.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind     zenith.ErrorKind `json:"kind"`
	Message  string           `json:"message"`
	Provider string           `json:"provider,omitempty"`
}

// respondError writes the canonical error with its HTTP mapping.
func (s *Server) respondError(c *fiber.Ctx, zerr *zenith.Error) error {
	return c.Status(zerr.HTTPStatus()).JSON(errorEnvelope{
		Error: errorBody{Kind: zerr.Kind, Message: zerr.Message, Provider: zerr.Provider},
	})
}

// asCanonical coerces any error leaving the generation flow into a
// canonical *zenith.Error. Queue-backed providers always return one;
// anything else is a contract violation reported as a provider error.
func asCanonical(err error, providerName string) *zenith.Error {
	var zerr *zenith.Error
	if errors.As(err, &zerr) {
		return zerr
	}
	return zenith.ProviderError(providerName, err.Error())
}
