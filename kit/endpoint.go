// Package kit carries the transport-neutral endpoint abstraction the
// service layer is exposed through: an Endpoint is one operation,
// middlewares wrap it, and transport adapters (MCP, HTTP) call it.
package kit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Endpoint is a single request/response operation.
type Endpoint func(ctx context.Context, request any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

type contextKey string

const transportKey contextKey = "kit_transport"

// WithTransport tags the context with the transport that carried the
// request ("http", "mcp"). Logging reports it.
func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// GetTransport returns the transport tag, defaulting to "http".
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(transportKey).(string); ok {
		return v
	}
	return "http"
}

// Chain composes middlewares; the first argument is the outermost.
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}

// Logging records one line per call: operation, transport, duration,
// and the error if any. Successful calls log at debug level.
func Logging(logger *slog.Logger, op string) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				logger.Warn("endpoint failed",
					"op", op,
					"transport", GetTransport(ctx),
					"duration_ms", time.Since(start).Milliseconds(),
					"error", err)
				return resp, err
			}
			logger.Debug("endpoint ok",
				"op", op,
				"transport", GetTransport(ctx),
				"duration_ms", time.Since(start).Milliseconds())
			return resp, nil
		}
	}
}

// Recover converts an endpoint panic into an error, so one bad request
// cannot take down the server loop that called it.
func Recover() Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (resp any, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("endpoint panic: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}
