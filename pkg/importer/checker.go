// CLAUDE:SUMMARY Periodic availability probe of every dictionary source URL, results stored in SourceDB.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// checkParallelism bounds concurrent probes in one pass.
const checkParallelism = 4

// CheckSummary counts the outcome of one pass.
type CheckSummary struct {
	Total, OK, Failed int
}

// Checker probes source URLs and records whether they are still reachable,
// so that a dead upstream is noticed before the next import needs it.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that runs every interval. logger may be nil.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			// A redirect is an answer; it is recorded, not followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start checks immediately, then every interval until ctx is done.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll probes every source once and stores the results.
func (c *Checker) CheckAll(ctx context.Context) CheckSummary {
	sources, err := c.sources.List(ctx)
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return CheckSummary{}
	}

	var ok, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkParallelism)
	for _, src := range sources {
		g.Go(func() error {
			status, probeErr := c.probe(gctx, src.URL)
			if err := c.sources.RecordCheck(gctx, src.AdapterID, status, probeErr); err != nil {
				c.logger.Error("source check: record", "adapter", src.AdapterID, "error", err)
			}
			if status >= 200 && status < 400 {
				ok.Add(1)
				return nil
			}
			failed.Add(1)
			c.logger.Warn("source unreachable",
				"adapter", src.AdapterID, "url", src.URL, "status", status, "error", probeErr)
			return nil
		})
	}
	g.Wait()

	sum := CheckSummary{Total: len(sources), OK: int(ok.Load()), Failed: int(failed.Load())}
	if sum.Total > 0 {
		c.logger.Info("source check complete", "total", sum.Total, "ok", sum.OK, "failed", sum.Failed)
	}
	return sum
}

// probe sends a HEAD request. Hosts that reject HEAD get a one-byte ranged
// GET instead. status is 0 when no response arrived.
func (c *Checker) probe(ctx context.Context, url string) (int, error) {
	status, err := c.do(ctx, http.MethodHead, url)
	if err != nil || status != http.StatusMethodNotAllowed {
		return status, err
	}
	return c.do(ctx, http.MethodGet, url)
}

func (c *Checker) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, url, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("%s %s: HTTP %d", method, url, resp.StatusCode)
	}
	return resp.StatusCode, nil
}
