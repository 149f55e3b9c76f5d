package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/portul/pkg/config"
	"github.com/hazyhaar/portul/pkg/convert"
	"github.com/hazyhaar/portul/pkg/tagger"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTagger_DownloadsMissingLexicon(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("glimmer NOUN\n"))
	}))
	defer srv.Close()

	cfg := config.TaggerConfig{
		Kind:       config.TaggerRule,
		Lexicon:    filepath.Join(t.TempDir(), "data", "lexicon.txt"),
		LexiconURL: srv.URL,
	}
	tg, err := newTagger(context.Background(), cfg, discard())
	require.NoError(t, err)
	require.Equal(t, 1, hits)

	toks, err := tg.Tokenize(context.Background(), "glimmer")
	require.NoError(t, err)
	require.Equal(t, tagger.Noun, toks[0].Tag)
}

func TestNewTagger_UnavailableWithoutURL(t *testing.T) {
	cfg := config.TaggerConfig{
		Kind:    config.TaggerRule,
		Lexicon: filepath.Join(t.TempDir(), "missing.txt"),
	}
	_, err := newTagger(context.Background(), cfg, discard())
	require.ErrorIs(t, err, tagger.ErrUnavailable)
}

func TestNewTagger_RemediationFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := config.TaggerConfig{
		Kind:       config.TaggerRule,
		Lexicon:    filepath.Join(t.TempDir(), "lexicon.txt"),
		LexiconURL: srv.URL,
	}
	_, err := newTagger(ctx, cfg, discard())
	require.ErrorIs(t, err, tagger.ErrUnavailable)
}

func TestNewTagger_Defaults(t *testing.T) {
	tg, err := newTagger(context.Background(), config.TaggerConfig{Kind: config.TaggerRule, Serial: true}, discard())
	require.NoError(t, err)
	toks, err := tg.Tokenize(context.Background(), "the cat")
	require.NoError(t, err)
	require.Equal(t, "the cat", tagger.Join(toks))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger, err = newLogger(config.LogConfig{Level: "info", Format: "text"}, &buf)
	require.NoError(t, err)
	logger.Info("ready", "dicts", 1)
	require.Contains(t, buf.String(), "ready")

	_, err = newLogger(config.LogConfig{Level: "loud"}, &buf)
	require.Error(t, err)
}

func TestExplainTable(t *testing.T) {
	out := explainTable(&convert.Explanation{
		Dict:      "portul",
		Direction: "forward",
		Output:    "dha kat",
		Tokens: []convert.TokenResult{
			{Text: "the", Tag: "DET", Tier: "lower", Matched: true, Output: "dha", Whitespace: " "},
			{Text: "cat", Tag: "NOUN", Tier: "passthrough", Output: "cat"},
		},
	})
	require.True(t, strings.HasPrefix(out, "dict portul, forward\n"))
	require.Contains(t, out, "passthrough")
	require.Contains(t, out, `" "`)
	require.True(t, strings.HasSuffix(out, "dha kat"))
}
