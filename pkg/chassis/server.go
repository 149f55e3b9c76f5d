// Package chassis serves the portul HTTP API and MCP tools on one port.
//
// Two listeners share the address:
//   - TCP: TLS with HTTP/1.1 and HTTP/2
//   - UDP: QUIC, demuxed by ALPN
//     "h3"            -> HTTP/3 (same handler as TCP)
//     "portul-mcp-v1" -> MCP JSON-RPC over one QUIC stream
//
// HTTP responses carry an Alt-Svc header advertising HTTP/3. Without cert
// files a self-signed ECDSA P-256 cert is generated.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// Server is the dual-transport chassis.
type Server struct {
	addr        string
	logger      *slog.Logger
	tlsCfg      *tls.Config
	httpHandler http.Handler
	mcp         *mcpHandler
	h3Server    *http3.Server
	tcpServer   *http.Server
	quicLn      *quic.Listener
	mu          sync.Mutex
}

// Config holds configuration for the chassis server.
type Config struct {
	Addr      string            // TCP and UDP listen address, e.g. ":8443"
	TLS       *tls.Config       // nil: load CertFile/KeyFile or generate a dev cert
	CertFile  string
	KeyFile   string
	Handler   http.Handler
	MCPServer *server.MCPServer // nil disables MCP over QUIC
	Logger    *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil HTTP handler")
	}

	tlsCfg := cfg.TLS
	if tlsCfg == nil {
		var err error
		if cfg.CertFile != "" && cfg.KeyFile != "" {
			tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("load TLS cert: %w", err)
			}
			cfg.Logger.Info("TLS: certificate loaded", "cert", cfg.CertFile)
		} else {
			host, _, _ := net.SplitHostPort(cfg.Addr)
			tlsCfg, err = DevelopmentTLSConfig(host)
			if err != nil {
				return nil, fmt.Errorf("generate dev TLS: %w", err)
			}
			cfg.Logger.Warn("TLS: self-signed dev cert generated")
		}
	}

	s := &Server{
		addr:        cfg.Addr,
		logger:      cfg.Logger,
		tlsCfg:      tlsCfg,
		httpHandler: cfg.Handler,
	}
	if cfg.MCPServer != nil {
		s.mcp = newMCPHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

// securityHeaders adds standard security headers. The API serves JSON only.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// altSvc advertises HTTP/3 on the same port.
func altSvc(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "8443"
	}
	header := fmt.Sprintf(`h3=":%s"; ma=86400`, port)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", header)
		next.ServeHTTP(w, r)
	})
}

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxStreamReceiveWindow:     10 * 1024 * 1024,
		MaxConnectionReceiveWindow: 50 * 1024 * 1024,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// Start launches both listeners and blocks until ctx is done or one of
// them fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()

	handler := securityHeaders(altSvc(s.addr, s.httpHandler))

	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	s.tcpServer = &http.Server{
		Addr:      s.addr,
		Handler:   handler,
		TLSConfig: tcpTLS,
	}

	quicTLS := s.tlsCfg.Clone()
	quicTLS.NextProtos = []string{ALPNProtocolHTTP3}
	if s.mcp != nil {
		quicTLS.NextProtos = append(quicTLS.NextProtos, ALPNProtocolMCP)
	}
	ln, err := quic.ListenAddr(s.addr, quicTLS, quicConfig())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("QUIC listen: %w", err)
	}
	s.quicLn = ln
	s.h3Server = &http3.Server{Handler: handler}

	s.mu.Unlock()

	s.logger.Info("chassis started",
		"addr", s.addr,
		"tcp", "HTTP/1.1+HTTP/2 (TLS)",
		"udp", "QUIC (HTTP/3 + MCP)",
		"mcp", s.mcp != nil,
	)

	errCh := make(chan error, 2)
	go func() {
		tcpLn, err := tls.Listen("tcp", s.addr, tcpTLS)
		if err != nil {
			errCh <- fmt.Errorf("TCP listen: %w", err)
			return
		}
		if err := s.tcpServer.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()

	go func() {
		for {
			conn, err := ln.Accept(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
					return
				}
				errCh <- fmt.Errorf("QUIC accept: %w", err)
				return
			}
			s.dispatch(ctx, conn)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// dispatch routes an accepted QUIC connection by its negotiated ALPN.
func (s *Server) dispatch(ctx context.Context, conn *quic.Conn) {
	alpn := conn.ConnectionState().TLS.NegotiatedProtocol
	switch {
	case alpn == ALPNProtocolHTTP3:
		go func() {
			if err := s.h3Server.ServeQUICConn(conn); err != nil {
				s.logger.Debug("HTTP/3 conn done", "remote", conn.RemoteAddr(), "error", err)
			}
		}()
	case alpn == ALPNProtocolMCP && s.mcp != nil:
		go s.mcp.serveConn(ctx, conn)
	case alpn == ALPNProtocolMCP:
		conn.CloseWithError(ConnErrorMCPDisabled, "MCP not enabled")
	default:
		s.logger.Warn("unknown ALPN, closing", "alpn", alpn, "remote", conn.RemoteAddr())
		conn.CloseWithError(ConnErrorUnsupportedALPN, fmt.Sprintf("%v: %s", ErrUnsupportedALPN, alpn))
	}
}

// Stop shuts down both listeners.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("chassis stopping")

	var errs []error
	if s.tcpServer != nil {
		errs = append(errs, s.tcpServer.Shutdown(ctx))
	}
	if s.h3Server != nil {
		errs = append(errs, s.h3Server.Close())
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
	}
	return errors.Join(errs...)
}
