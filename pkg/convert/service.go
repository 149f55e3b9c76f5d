// CLAUDE:SUMMARY Conversion service: routes requests to a registry dictionary and direction, single and batched.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/tagger"
)

// MaxBatch is the largest number of requests ConvertBatch accepts.
const MaxBatch = 100

// Request is one conversion request. An empty Dict selects the service
// default and an empty Direction means forward.
type Request struct {
	Text      string `json:"text"`
	Dict      string `json:"dict,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Result is the outcome of one conversion. Error is only set for failed
// items of a batch.
type Result struct {
	Text      string `json:"text"`
	Dict      string `json:"dict"`
	Direction string `json:"direction"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// Explanation is the per-token breakdown of one conversion.
type Explanation struct {
	Dict      string        `json:"dict"`
	Direction string        `json:"direction"`
	Output    string        `json:"output"`
	Tokens    []TokenResult `json:"tokens"`
}

// Service converts text with any dictionary loaded in a registry.
type Service struct {
	reg         *dict.Registry
	tagger      tagger.Tagger
	defaultDict string
	workers     int
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDefaultDict sets the dictionary used when a request names none.
func WithDefaultDict(id string) ServiceOption {
	return func(s *Service) { s.defaultDict = id }
}

// WithWorkers bounds the parallelism of ConvertBatch.
func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a conversion service over reg using t for every call.
func NewService(reg *dict.Registry, t tagger.Tagger, opts ...ServiceOption) *Service {
	s := &Service{
		reg:     reg,
		tagger:  t,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the service reads from.
func (s *Service) Registry() *dict.Registry { return s.reg }

// Converter returns a converter for a dictionary ID and direction name.
func (s *Service) Converter(dictID, direction string) (*Converter, error) {
	dir, err := dict.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	if dictID == "" {
		dictID = s.defaultDict
	}
	d, ok := s.reg.Get(dictID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDict, dictID)
	}
	return New(d, s.tagger, dir), nil
}

// Convert runs one request.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	c, err := s.Converter(req.Dict, req.Direction)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := c.ConvertPara(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	s.logger.Debug("converted",
		"dict", c.dict.ID(), "direction", c.dir.String(),
		"bytes", len(req.Text), "elapsed", elapsed)
	return &Result{
		Text:      out,
		Dict:      c.dict.ID(),
		Direction: c.dir.String(),
		ElapsedMS: elapsed.Milliseconds(),
	}, nil
}

// Explain runs one request and returns the per-token breakdown.
func (s *Service) Explain(ctx context.Context, req Request) (*Explanation, error) {
	c, err := s.Converter(req.Dict, req.Direction)
	if err != nil {
		return nil, err
	}
	toks, err := c.Explain(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, t := range toks {
		out = append(out, t.Output...)
		out = append(out, t.Whitespace...)
	}
	return &Explanation{
		Dict:      c.dict.ID(),
		Direction: c.dir.String(),
		Output:    string(out),
		Tokens:    toks,
	}, nil
}

// ConvertBatch converts up to MaxBatch requests in parallel. Results keep
// request order. A failing item records its error in Result.Error and does
// not affect the others; only context cancellation aborts the batch.
func (s *Service) ConvertBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no requests", ErrBatchSize)
	}
	if len(reqs) > MaxBatch {
		return nil, fmt.Errorf("%w: max %d, got %d", ErrBatchSize, MaxBatch, len(reqs))
	}

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Convert(gctx, req)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i] = Result{Dict: req.Dict, Direction: req.Direction, Error: err.Error()}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
