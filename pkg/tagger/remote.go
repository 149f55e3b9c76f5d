// CLAUDE:SUMMARY HTTP JSON adapter for an external tokenizer/tagger service (e.g. a spaCy sidecar).
package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote delegates tokenization to an HTTP service:
//
//	GET  {endpoint}/health
//	POST {endpoint}/tokenize  {"text": "..."} -> {"tokens": [{"text","lower","pos","whitespace"}]}
//
// Tags use the Universal POS names. A Remote is safe for concurrent use.
type Remote struct {
	endpoint string
	client   *http.Client
}

type remoteRequest struct {
	Text string `json:"text"`
}

type remoteResponse struct {
	Tokens []remoteToken `json:"tokens"`
}

type remoteToken struct {
	Text       string `json:"text"`
	Lower      string `json:"lower"`
	POS        string `json:"pos"`
	Whitespace string `json:"whitespace"`
}

// NewRemote checks the service health endpoint and returns a ready adapter.
// A failed check is reported as ErrUnavailable. client may be nil.
func NewRemote(ctx context.Context, endpoint string, client *http.Client) (*Remote, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	r := &Remote{endpoint: strings.TrimRight(endpoint, "/"), client: client}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: health check HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	return r, nil
}

// Tokenize implements Tagger. The returned tokens must reconstruct text,
// otherwise the response is rejected.
func (r *Remote) Tokenize(ctx context.Context, text string) ([]Token, error) {
	body, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/tokenize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tokenize: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	toks := make([]Token, len(out.Tokens))
	for i, rt := range out.Tokens {
		tag, ok := ParseTag(rt.POS)
		if !ok {
			tag = Other
		}
		lower := rt.Lower
		if lower == "" {
			lower = strings.ToLower(rt.Text)
		}
		toks[i] = Token{Text: rt.Text, Lower: lower, Tag: tag, Whitespace: rt.Whitespace}
	}
	if Join(toks) != text {
		return nil, fmt.Errorf("tokenize: tokens do not reconstruct the input")
	}
	return toks, nil
}
