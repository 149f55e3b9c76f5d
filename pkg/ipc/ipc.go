/*
Package ipc serves conversions as a msgpack request/response stream, normally
over stdin/stdout of `portul pipe`.

Each request is one msgpack map:

	{"id": "r1", "t": "The Cat sat.", "d": "portul", "dir": "forward"}

and gets exactly one response, in request order:

	{"id": "r1", "t": "The Kat sat.", "ms": 0}

Failures carry an error message and a code instead of text:

	{"id": "r1", "e": "unknown dictionary: \"x\"", "c": 404}

The optional "op" field selects "convert" (default), "explain", "dicts" or
"health". Explain responses fill "tok"; dicts responses fill "dicts".
*/
package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/hazyhaar/portul/pkg/convert"
	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/kit"
)

// Ops
const (
	OpConvert = "convert"
	OpExplain = "explain"
	OpDicts   = "dicts"
	OpHealth  = "health"
)

// Request is one IPC message from the client.
type Request struct {
	ID        string `msgpack:"id"`
	Op        string `msgpack:"op,omitempty"`
	Text      string `msgpack:"t"`
	Dict      string `msgpack:"d,omitempty"`
	Direction string `msgpack:"dir,omitempty"`
}

// Token is the compact per-token explanation.
type Token struct {
	Text   string `msgpack:"t"`
	Tag    string `msgpack:"p"`
	Tier   string `msgpack:"r"`
	Output string `msgpack:"o"`
	Space  string `msgpack:"w,omitempty"`
}

// Response answers one Request.
type Response struct {
	ID        string          `msgpack:"id"`
	Text      string          `msgpack:"t,omitempty"`
	Error     string          `msgpack:"e,omitempty"`
	Code      int             `msgpack:"c,omitempty"`
	ElapsedMS int64           `msgpack:"ms"`
	Tokens    []Token         `msgpack:"tok,omitempty"`
	Dicts     []dict.DictInfo `msgpack:"dicts,omitempty"`
}

// Server reads requests from r and writes responses to w, one at a time.
type Server struct {
	svc     *convert.Service
	r       io.Reader
	w       io.Writer
	logger  *slog.Logger
	convert kit.Endpoint
	explain kit.Endpoint
}

// NewServer creates an IPC server. logger may be nil.
func NewServer(svc *convert.Service, r io.Reader, w io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Recover(logger), kit.Logging(logger, name))(ep)
	}
	return &Server{
		svc:    svc,
		r:      r,
		w:      w,
		logger: logger,
		convert: wrap("ipc_convert", func(ctx context.Context, req any) (any, error) {
			return svc.Convert(ctx, req.(convert.Request))
		}),
		explain: wrap("ipc_explain", func(ctx context.Context, req any) (any, error) {
			return svc.Explain(ctx, req.(convert.Request))
		}),
	}
}

// Serve processes requests until EOF on the reader or ctx is done.
// A malformed message ends the stream since msgpack framing cannot resync.
func (s *Server) Serve(ctx context.Context) error {
	dec := msgpack.NewDecoder(bufio.NewReader(s.r))
	bw := bufio.NewWriter(s.w)
	enc := msgpack.NewEncoder(bw)

	ctx = kit.WithTransport(ctx, kit.TransportIPC)
	s.logger.Debug("ipc server ready")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			resp := Response{Error: "invalid msgpack request", Code: 400}
			_ = enc.Encode(&resp)
			_ = bw.Flush()
			return fmt.Errorf("decode request: %w", err)
		}

		resp := s.handle(kit.WithRequestID(ctx, req.ID), req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) *Response {
	start := time.Now()
	resp := &Response{ID: req.ID}
	creq := convert.Request{Text: req.Text, Dict: req.Dict, Direction: req.Direction}

	switch req.Op {
	case "", OpConvert:
		out, err := s.convert(ctx, creq)
		if err != nil {
			setError(resp, err)
			break
		}
		resp.Text = out.(*convert.Result).Text
	case OpExplain:
		out, err := s.explain(ctx, creq)
		if err != nil {
			setError(resp, err)
			break
		}
		exp := out.(*convert.Explanation)
		resp.Text = exp.Output
		resp.Tokens = make([]Token, len(exp.Tokens))
		for i, t := range exp.Tokens {
			resp.Tokens[i] = Token{Text: t.Text, Tag: t.Tag, Tier: t.Tier, Output: t.Output, Space: t.Whitespace}
		}
	case OpDicts:
		resp.Dicts = s.svc.Registry().ListDicts()
	case OpHealth:
		resp.Text = "ok"
	default:
		resp.Error = fmt.Sprintf("unknown op %q", req.Op)
		resp.Code = 400
	}

	resp.ElapsedMS = time.Since(start).Milliseconds()
	return resp
}

func setError(resp *Response, err error) {
	resp.Error = err.Error()
	switch {
	case errors.Is(err, convert.ErrUnknownDict):
		resp.Code = 404
	case errors.Is(err, dict.ErrBadDirection):
		resp.Code = 400
	case errors.Is(err, convert.ErrConversion):
		resp.Code = 503
	default:
		resp.Code = 500
	}
}
