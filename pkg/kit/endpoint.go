package kit

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Endpoint is a transport-agnostic action function.
// Each action (convert, explain, list) is an Endpoint.
// HTTP handlers, MCP tools and the IPC loop all dispatch to the same Endpoints.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Middleware wraps an Endpoint with cross-cutting concerns (request IDs, logging, recovery).
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first is outermost.
// Chain(a, b, c)(endpoint) == a(b(c(endpoint)))
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}

// RequestID assigns a random request ID unless the transport already set one.
func RequestID() Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			if GetRequestID(ctx) == "" {
				ctx = WithRequestID(ctx, uuid.NewString())
			}
			return next(ctx, request)
		}
	}
}

// Logging logs each call of the named endpoint with its transport, request
// ID and duration. Failures are logged at warn level.
func Logging(logger *slog.Logger, name string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, request)

			attrs := []slog.Attr{
				slog.String("endpoint", name),
				slog.String("transport", GetTransport(ctx)),
				slog.String("request_id", GetRequestID(ctx)),
				slog.Duration("duration", time.Since(start)),
			}
			level := slog.LevelDebug
			if err != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			logger.LogAttrs(ctx, level, "endpoint", attrs...)
			return resp, err
		}
	}
}

// Recover turns a panic inside the endpoint into an error.
func Recover(logger *slog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (resp any, err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.ErrorContext(ctx, "panic recovered",
						slog.Any("error", p),
						slog.String("stack", string(debug.Stack())),
						slog.String("request_id", GetRequestID(ctx)),
					)
					resp, err = nil, fmt.Errorf("internal error: %v", p)
				}
			}()
			return next(ctx, request)
		}
	}
}
