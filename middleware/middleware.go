// Package middleware provides composable wrappers around
// provider.ImageModel implementations: structured logging and a
// whole-call retry for transport-level failures. The queue protocol's own
// cold-start retries live inside the gradio client; the retry here only
// covers errors its classifier marked transient end to end, and is wired
// with a single attempt by default so the in-protocol policy governs.
package middleware

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	zenith "github.com/voici5986/zenith-image-generator"
	"github.com/voici5986/zenith-image-generator/provider"
)

// ImageModelMiddleware wraps a provider.ImageModel with additional
// behavior such as logging or retries.
type ImageModelMiddleware func(provider.ImageModel) provider.ImageModel

// WrapImageModel applies the provided middlewares around the base image
// model. Middlewares are applied in the order provided, so the first
// middleware becomes the outermost wrapper.
func WrapImageModel(base provider.ImageModel, mws ...ImageModelMiddleware) provider.ImageModel {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

// LoggingImageModel returns a middleware that logs Generate calls with the
// backend model, duration, and classified error kind. A nil logger uses
// zap's global logger.
func LoggingImageModel(logger *zap.Logger) ImageModelMiddleware {
	if logger == nil {
		logger = zap.L()
	}

	return func(next provider.ImageModel) provider.ImageModel {
		return &loggingImageModel{next: next, logger: logger}
	}
}

type loggingImageModel struct {
	next   provider.ImageModel
	logger *zap.Logger
}

func (l *loggingImageModel) Generate(ctx context.Context, req *provider.ImageRequest) (*provider.ImageResponse, error) {
	start := time.Now()
	res, err := l.next.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("model", req.Model),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		var zerr *zenith.Error
		if errors.As(err, &zerr) {
			fields = append(fields, zap.String("kind", string(zerr.Kind)), zap.String("provider", zerr.Provider))
		}
		l.logger.Warn("image.generate failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	l.logger.Info("image.generate ok", append(fields, zap.Int("images", len(res.Images)))...)
	return res, nil
}

// RetryOptions configures the whole-call retry middleware.
type RetryOptions struct {
	// MaxAttempts is the maximum number of attempts, including the first
	// call. If zero or negative, a default of 1 (no retry) is used.
	MaxAttempts int
	// Backoff is the delay between attempts. If zero, 500ms is used.
	Backoff time.Duration
	// ShouldRetry decides whether an error is worth another whole call.
	// If nil, only transport-level timeouts and temporary network
	// failures are retried; classified upstream errors never are.
	ShouldRetry func(error) bool
}

// RetryImageModel returns a middleware that retries Generate when
// ShouldRetry reports the error as transient. Retries respect context
// cancellation.
func RetryImageModel(opts RetryOptions) ImageModelMiddleware {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.ShouldRetry == nil {
		opts.ShouldRetry = isTransientError
	}

	return func(next provider.ImageModel) provider.ImageModel {
		return &retryImageModel{next: next, opt: opts}
	}
}

type retryImageModel struct {
	next provider.ImageModel
	opt  RetryOptions
}

func (r *retryImageModel) Generate(ctx context.Context, req *provider.ImageRequest) (*provider.ImageResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= r.opt.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepWithContext(ctx, r.opt.Backoff); err != nil {
				return nil, err
			}
		}

		res, err := r.next.Generate(ctx, req)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !r.opt.ShouldRetry(err) {
			return nil, err
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("middleware: retry: exhausted attempts with no result")
}

// sleepWithContext sleeps for the given duration or returns early if the
// context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isTransientError reports whether err looks like a transient network
// error suitable for retry. Canonical errors are never transient at this
// layer: the gradio client already spent its in-protocol attempts.
func isTransientError(err error) bool {
	var zerr *zenith.Error
	if errors.As(err, &zerr) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
