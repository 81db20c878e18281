// Command zenith-server runs the OpenAI-compatible image generation
// gateway.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voici5986/zenith-image-generator/blobcache"
	"github.com/voici5986/zenith-image-generator/catalog"
	"github.com/voici5986/zenith-image-generator/config"
	"github.com/voici5986/zenith-image-generator/huggingface"
	"github.com/voici5986/zenith-image-generator/middleware"
	"github.com/voici5986/zenith-image-generator/modelscope"
	"github.com/voici5986/zenith-image-generator/openxlab"
	"github.com/voici5986/zenith-image-generator/provider"
	"github.com/voici5986/zenith-image-generator/registry"
	"github.com/voici5986/zenith-image-generator/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./zenith.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	reg := registry.NewInMemoryRegistry()
	registerTargets(reg, cfg, logger)

	cache, err := blobcache.New(cfg.CacheCapacity)
	if err != nil {
		logger.Fatal("create blob cache", zap.Error(err))
	}

	srv, err := server.New(server.Options{
		Registry: reg,
		Cache:    cache,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("create server", zap.Error(err))
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		_ = srv.Shutdown()
	}()

	logger.Info("listening", zap.String("addr", cfg.Listen))
	if err := srv.Listen(cfg.Listen); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

// registerTargets builds one provider-backed image model per catalog
// target and registers it under the "provider/model" dispatch key.
func registerTargets(reg registry.Registry, cfg *config.Config, logger *zap.Logger) {
	clientOptions := func(name provider.Name) provider.ClientOptions {
		p := cfg.Providers[string(name)]
		return provider.ClientOptions{
			BaseURL:        p.BaseURL,
			APIKey:         p.APIKey,
			RetryAttempts:  cfg.RetryAttempts,
			RetryBaseDelay: cfg.RetryBaseDelay,
		}
	}

	hf := huggingface.NewClient(clientOptions(provider.HuggingFace))
	ms := modelscope.NewClient(clientOptions(provider.ModelScope))
	ox := openxlab.NewClient(clientOptions(provider.OpenXLab))

	logging := middleware.LoggingImageModel(logger)

	for _, t := range catalog.Targets() {
		var model provider.ImageModel
		switch t.Provider {
		case provider.HuggingFace:
			model = hf.ImageModel(t.Model)
		case provider.ModelScope:
			model = ms.ImageModel(t.Model)
		case provider.OpenXLab:
			model = ox.ImageModel(t.Model)
		default:
			logger.Warn("catalog target for unknown provider", zap.String("provider", string(t.Provider)))
			continue
		}
		reg.RegisterImageModel(string(t.Provider)+"/"+t.Model, middleware.WrapImageModel(model, logging))
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		logger = zap.NewExample()
	}
	return logger
}
