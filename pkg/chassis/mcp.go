// CLAUDE:SUMMARY MCP JSON-RPC over a QUIC stream: MCP1 magic preamble, line-delimited messages, one session per connection.
package chassis

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"

	"github.com/hazyhaar/portul/pkg/kit"
)

const (
	ALPNProtocolHTTP3 = "h3"
	ALPNProtocolMCP   = "portul-mcp-v1"
	MagicBytesMCP     = "MCP1"

	// MaxMessageSize bounds one JSON-RPC line.
	MaxMessageSize     = 4 * 1024 * 1024
	DefaultIdleTimeout = 5 * time.Minute
	DefaultKeepAlive   = 30 * time.Second
)

// QUIC stream-level error codes
const (
	StreamErrorNoError           quic.StreamErrorCode = 0x00
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
	StreamErrorMessageTooLarge   quic.StreamErrorCode = 0x03
)

// QUIC connection-level error codes
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
	ConnErrorMCPDisabled       quic.ApplicationErrorCode = 0x10
)

var (
	ErrInvalidMagicBytes = errors.New("invalid magic bytes: expected " + MagicBytesMCP)
	ErrUnsupportedALPN   = errors.New("unsupported ALPN protocol")
	ErrMessageTooLarge   = errors.New("MCP message too large")
)

// ValidateMagicBytes reads and checks the 4-byte preamble a client sends
// right after opening its stream.
func ValidateMagicBytes(r io.Reader) error {
	magic := make([]byte, len(MagicBytesMCP))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("read magic bytes: %w", err)
	}
	if !bytes.Equal(magic, []byte(MagicBytesMCP)) {
		return fmt.Errorf("%w: got %q", ErrInvalidMagicBytes, string(magic))
	}
	return nil
}

// SendMagicBytes writes the preamble.
func SendMagicBytes(w io.Writer) error {
	if _, err := io.WriteString(w, MagicBytesMCP); err != nil {
		return fmt.Errorf("write magic bytes: %w", err)
	}
	return nil
}

// mcpHandler serves MCP sessions on QUIC connections accepted by the chassis.
type mcpHandler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

func newMCPHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *mcpHandler {
	return &mcpHandler{mcpServer: mcpSrv, logger: logger}
}

// serveConn runs one MCP session on the first stream the client opens.
func (h *mcpHandler) serveConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("MCP accept stream failed", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "stream accept failed")
		return
	}

	if err := ValidateMagicBytes(stream); err != nil {
		h.logger.Warn("MCP magic bytes invalid", "remote", remote, "error", err)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return
	}

	sess := newSession("quic_"+uuid.NewString(), stream)
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("MCP session register failed", "session", sess.id, "error", err)
		stream.Close()
		return
	}
	defer h.mcpServer.UnregisterSession(ctx, sess.id)
	h.logger.Info("MCP session started", "session", sess.id, "remote", remote)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = kit.WithSession(kit.WithTransport(ctx, kit.TransportMCPQUIC), sess.id)
	ctx = h.mcpServer.WithContext(ctx, sess)

	go sess.writeNotifications(ctx)

	sc := bufio.NewScanner(stream)
	sc.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		response := h.mcpServer.HandleMessage(ctx, json.RawMessage(line))
		if response == nil {
			continue
		}
		if err := sess.writeJSON(response); err != nil {
			h.logger.Warn("MCP write failed", "session", sess.id, "error", err)
			break
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		if errors.Is(err, bufio.ErrTooLong) {
			stream.CancelRead(StreamErrorMessageTooLarge)
			err = ErrMessageTooLarge
		}
		h.logger.Warn("MCP read failed", "session", sess.id, "error", err)
	}

	stream.Close()
	h.logger.Info("MCP session ended", "session", sess.id, "remote", remote)
}

// session implements server.ClientSession for a single QUIC stream.
// Responses and notifications share the stream, so writes are serialised.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
	mu            sync.Mutex
	w             io.Writer
}

func newSession(id string, w io.Writer) *session {
	return &session{
		id:            id,
		notifications: make(chan mcp.JSONRPCNotification, 100),
		w:             w,
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

func (s *session) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(data)
	return err
}

func (s *session) writeNotifications(ctx context.Context) {
	for {
		select {
		case n := <-s.notifications:
			_ = s.writeJSON(n)
		case <-ctx.Done():
			return
		}
	}
}
