package kit

import "context"

type contextKey string

const (
	TransportKey contextKey = "kit_transport"
	RequestIDKey contextKey = "kit_request_id"
	SessionKey   contextKey = "kit_session"
)

// Transport names recorded in the request context.
const (
	TransportHTTP     = "http"
	TransportMCPStdio = "mcp_stdio"
	TransportMCPQUIC  = "mcp_quic"
	TransportIPC      = "ipc"
)

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}

// GetTransport defaults to "http" when no transport was recorded.
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return TransportHTTP
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionKey, id)
}
func GetSession(ctx context.Context) string {
	v, _ := ctx.Value(SessionKey).(string)
	return v
}
