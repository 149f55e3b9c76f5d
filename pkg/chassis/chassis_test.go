package chassis

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/portul/pkg/kit"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMagicBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SendMagicBytes(&buf))
	require.Equal(t, MagicBytesMCP, buf.String())
	require.NoError(t, ValidateMagicBytes(&buf))

	err := ValidateMagicBytes(strings.NewReader("HTTP"))
	require.ErrorIs(t, err, ErrInvalidMagicBytes)

	err = ValidateMagicBytes(strings.NewReader("MC"))
	require.Error(t, err)
}

func TestSecurityAndAltSvcHeaders(t *testing.T) {
	h := securityHeaders(altSvc(":9443", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, `h3=":9443"; ma=86400`, rec.Header().Get("Alt-Svc"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestNew(t *testing.T) {
	_, err := New(Config{Addr: ":0", Logger: quietLogger()})
	require.Error(t, err)

	s, err := New(Config{Addr: ":0", Handler: http.NotFoundHandler(), Logger: quietLogger()})
	require.NoError(t, err)
	require.Nil(t, s.mcp)
	require.Len(t, s.tlsCfg.Certificates, 1)
}

// echoServer registers one tool that reports its argument and transport.
func echoServer() *server.MCPServer {
	srv := server.NewMCPServer("echo", "0.0.0", server.WithToolCapabilities(false))
	srv.AddTool(mcp.NewTool("echo", mcp.WithString("msg", mcp.Required())),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			msg, _ := req.GetArguments()["msg"].(string)
			return mcp.NewToolResultText(msg + "|" + kit.GetTransport(ctx)), nil
		})
	return srv
}

// listenQUIC accepts connections for s on a loopback UDP port.
func listenQUIC(t *testing.T, s *Server) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	tlsCfg := s.tlsCfg.Clone()
	tlsCfg.NextProtos = []string{ALPNProtocolHTTP3, ALPNProtocolMCP}
	ln, err := quic.ListenAddr("127.0.0.1:0", tlsCfg, quicConfig())
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept(ctx)
			if err != nil {
				return
			}
			s.dispatch(ctx, conn)
		}
	}()
	return ln.Addr().String()
}

func dialMCP(t *testing.T, addr string) (*quic.Conn, *quic.Stream) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := quic.DialAddr(ctx, addr, ClientTLSConfig(true), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseWithError(ConnErrorNoError, "") })

	stream, err := conn.OpenStreamSync(ctx)
	require.NoError(t, err)
	return conn, stream
}

func roundTrip(t *testing.T, stream *quic.Stream, r *bufio.Reader, msg map[string]any) map[string]any {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = stream.Write(append(data, '\n'))
	require.NoError(t, err)

	line, err := r.ReadBytes('\n')
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(line, &out))
	return out
}

func TestMCPOverQUIC(t *testing.T) {
	s, err := New(Config{Addr: ":0", Handler: http.NotFoundHandler(), MCPServer: echoServer(), Logger: quietLogger()})
	require.NoError(t, err)
	addr := listenQUIC(t, s)

	conn, stream := dialMCP(t, addr)
	require.Equal(t, ALPNProtocolMCP, conn.ConnectionState().TLS.NegotiatedProtocol)
	require.NoError(t, SendMagicBytes(stream))

	r := bufio.NewReader(stream)
	initResp := roundTrip(t, stream, r, map[string]any{
		"jsonrpc": "2.0", "id": 1, "method": "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo":      map[string]any{"name": "test", "version": "0"},
			"capabilities":    map[string]any{},
		},
	})
	require.Contains(t, initResp, "result")

	resp := roundTrip(t, stream, r, map[string]any{
		"jsonrpc": "2.0", "id": 2, "method": "tools/call",
		"params": map[string]any{"name": "echo", "arguments": map[string]any{"msg": "hi"}},
	})
	content := resp["result"].(map[string]any)["content"].([]any)
	require.Equal(t, "hi|"+kit.TransportMCPQUIC, content[0].(map[string]any)["text"])
}

func TestMCPOverQUIC_BadMagic(t *testing.T) {
	s, err := New(Config{Addr: ":0", Handler: http.NotFoundHandler(), MCPServer: echoServer(), Logger: quietLogger()})
	require.NoError(t, err)
	addr := listenQUIC(t, s)

	_, stream := dialMCP(t, addr)
	_, err = stream.Write([]byte("GET / HTTP/1.1\n"))
	require.NoError(t, err)

	stream.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = io.ReadAll(stream)
	require.Error(t, err)
}

func TestMCPOverQUIC_Disabled(t *testing.T) {
	s, err := New(Config{Addr: ":0", Handler: http.NotFoundHandler(), Logger: quietLogger()})
	require.NoError(t, err)
	addr := listenQUIC(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := quic.DialAddr(ctx, addr, ClientTLSConfig(true), nil)
	require.NoError(t, err)
	select {
	case <-conn.Context().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("connection not closed")
	}
}

func TestSessionWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	sess := newSession("s1", &buf)
	require.Equal(t, "s1", sess.SessionID())
	require.False(t, sess.Initialized())
	sess.Initialize()
	require.True(t, sess.Initialized())

	require.NoError(t, sess.writeJSON(map[string]int{"a": 1}))
	require.Equal(t, "{\"a\":1}\n", buf.String())
}

func TestGenerateSelfSignedCert_Hosts(t *testing.T) {
	cert, err := GenerateSelfSignedCert("portul.internal", "10.0.0.7", "0.0.0.0", "localhost", "")
	require.NoError(t, err)
	leaf := cert.Leaf
	require.NotNil(t, leaf)
	require.Equal(t, []string{"localhost", "portul.internal"}, leaf.DNSNames)
	require.NoError(t, leaf.VerifyHostname("portul.internal"))
	require.NoError(t, leaf.VerifyHostname("10.0.0.7"))
	require.NoError(t, leaf.VerifyHostname("127.0.0.1"))
	require.Error(t, leaf.VerifyHostname("0.0.0.0"))
	require.True(t, leaf.NotAfter.After(time.Now().Add(24*time.Hour)))
}
