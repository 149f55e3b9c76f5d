package tagger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeService(t *testing.T, tokens []remoteToken) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /tokenize", func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(remoteResponse{Tokens: tokens})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote_Tokenize(t *testing.T) {
	srv := fakeService(t, []remoteToken{
		{Text: "The", Lower: "the", POS: "DET", Whitespace: " "},
		{Text: "Cat", POS: "NOUN", Whitespace: " "},
		{Text: "sat", Lower: "sat", POS: "VERB"},
		{Text: ".", Lower: ".", POS: "PUNCT"},
	})

	r, err := NewRemote(context.Background(), srv.URL+"/", nil)
	require.NoError(t, err)

	toks, err := r.Tokenize(context.Background(), "The Cat sat.")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	require.Equal(t, "cat", toks[1].Lower)
	require.Equal(t, Noun, toks[1].Tag)
	require.Equal(t, "The Cat sat.", Join(toks))
}

func TestRemote_UnknownTagBecomesOther(t *testing.T) {
	srv := fakeService(t, []remoteToken{{Text: "x", POS: "WEIRD"}})
	r, err := NewRemote(context.Background(), srv.URL, nil)
	require.NoError(t, err)

	toks, err := r.Tokenize(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, Other, toks[0].Tag)
}

func TestRemote_RejectsNonReconstructingTokens(t *testing.T) {
	srv := fakeService(t, []remoteToken{{Text: "hello"}})
	r, err := NewRemote(context.Background(), srv.URL, nil)
	require.NoError(t, err)

	_, err = r.Tokenize(context.Background(), "hello world")
	require.Error(t, err)
}

func TestNewRemote_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRemote(context.Background(), srv.URL, nil)
	require.ErrorIs(t, err, ErrUnavailable)

	srv.Close()
	_, err = NewRemote(context.Background(), srv.URL, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

type countingTagger struct {
	active, peak int
	mu           sync.Mutex
}

func (c *countingTagger) Tokenize(ctx context.Context, text string) ([]Token, error) {
	c.mu.Lock()
	c.active++
	if c.active > c.peak {
		c.peak = c.active
	}
	c.mu.Unlock()

	c.mu.Lock()
	c.active--
	c.mu.Unlock()
	return []Token{{Text: text, Lower: text}}, nil
}

func TestLocked_Serialises(t *testing.T) {
	inner := &countingTagger{}
	l := Locked(inner)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Tokenize(context.Background(), "w")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, inner.peak)
}
