package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/portul/pkg/convert"
	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/tagger"
)

func testService(t *testing.T) *convert.Service {
	t.Helper()
	reg := dict.NewRegistry(t.TempDir())
	reg.Add(dict.FromRows(&dict.Manifest{ID: "portul", Version: "1"}, []dict.Row{
		{Trad: "cat", Alt: "kat"},
		{Trad: "record", Alt: "rekord", POS: dict.POSNoun},
		{Trad: "record", Alt: "rikord", POS: dict.POSVerb},
		{Trad: "rough", Alt: "ruf"},
	}))
	return convert.NewService(reg, tagger.NewRule(), convert.WithDefaultDict("portul"))
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(testService(t), logger))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHTTP_Convert(t *testing.T) {
	srv := testServer(t)

	resp, out := post(t, srv.URL+"/v1/convert", `{"text":"The Cat sat."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "The Kat sat.", out["text"])
	require.Equal(t, "portul", out["dict"])
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	_, out = post(t, srv.URL+"/v1/convert", `{"text":"Kat sat.","direction":"reverse"}`)
	require.Equal(t, "Cat sat.", out["text"])
}

func TestHTTP_ConvertErrors(t *testing.T) {
	srv := testServer(t)

	resp, _ := post(t, srv.URL+"/v1/convert", `{"text":"x","dict":"nope"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = post(t, srv.URL+"/v1/convert", `{"text":"x","direction":"up"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, out := post(t, srv.URL+"/v1/convert", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid JSON body", out["error"])

	big := `{"text":"` + strings.Repeat("a", maxBody) + `"}`
	resp, _ = post(t, srv.URL+"/v1/convert", big)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHTTP_RequestIDPropagates(t *testing.T) {
	srv := testServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))
}

func TestHTTP_Batch(t *testing.T) {
	srv := testServer(t)

	resp, out := post(t, srv.URL+"/v1/convert/batch",
		`{"items":[{"text":"cat"},{"text":"kat","direction":"reverse"},{"text":"x","dict":"nope"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := out["results"].([]any)
	require.Len(t, results, 3)
	require.Equal(t, "kat", results[0].(map[string]any)["text"])
	require.Equal(t, "cat", results[1].(map[string]any)["text"])
	require.Contains(t, results[2].(map[string]any)["error"], "unknown dictionary")

	resp, _ = post(t, srv.URL+"/v1/convert/batch", `{"items":[]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/v1/convert/batch")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTP_Explain(t *testing.T) {
	srv := testServer(t)
	resp, out := post(t, srv.URL+"/v1/explain", `{"text":"we record"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "we rikord", out["output"])

	toks := out["tokens"].([]any)
	require.Len(t, toks, 2)
	second := toks[1].(map[string]any)
	require.Equal(t, "VERB", second["tag"])
	require.Equal(t, "v", second["pos"])
	require.Equal(t, "lower+pos", second["tier"])
}

func TestHTTP_Dicts(t *testing.T) {
	srv := testServer(t)

	_, out := get(t, srv.URL+"/v1/dicts")
	dicts := out["dictionaries"].([]any)
	require.Len(t, dicts, 1)
	require.Equal(t, "portul", dicts[0].(map[string]any)["id"])
	require.EqualValues(t, 4, dicts[0].(map[string]any)["rows"])

	_, out = get(t, srv.URL+"/v1/health")
	require.Equal(t, "ok", out["status"])
	require.EqualValues(t, 1, out["dictionaries"])
	require.EqualValues(t, 4, out["total_entries"])
}

func TestHTTP_Lookup(t *testing.T) {
	srv := testServer(t)

	_, out := get(t, srv.URL+"/v1/dicts/portul/lookup/record")
	require.Equal(t, true, out["found"])
	require.Len(t, out["entries"], 2)

	_, out = get(t, srv.URL+"/v1/dicts/portul/lookup/record?pos=v")
	entries := out["entries"].([]any)
	require.Len(t, entries, 1)
	require.Equal(t, "rikord", entries[0].(map[string]any)["result"])

	_, out = get(t, srv.URL+"/v1/dicts/portul/lookup/ruf?direction=reverse")
	require.Equal(t, "rough", out["entries"].([]any)[0].(map[string]any)["result"])

	_, out = get(t, srv.URL+"/v1/dicts/portul/lookup/zebra")
	require.Equal(t, false, out["found"])

	resp, _ := get(t, srv.URL+"/v1/dicts/nope/lookup/cat")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_Complete(t *testing.T) {
	srv := testServer(t)

	_, out := get(t, srv.URL+"/v1/dicts/portul/complete?prefix=r")
	require.Equal(t, []any{"record", "rough"}, out["words"])

	_, out = get(t, srv.URL+"/v1/dicts/portul/complete?prefix=r&limit=1")
	require.Equal(t, []any{"record"}, out["words"])

	_, out = get(t, srv.URL+"/v1/dicts/portul/complete?prefix=ri&direction=reverse")
	require.Equal(t, []any{"rikord"}, out["words"])

	resp, _ := get(t, srv.URL+"/v1/dicts/portul/complete?prefix=r&limit=x")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_CORSPreflight(t *testing.T) {
	srv := testServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/convert", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// callTool sends a tools/call JSON-RPC message straight to the MCP server.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) (string, bool) {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(srv.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	require.NotEmpty(t, resp.Result.Content, string(raw))
	return resp.Result.Content[0].Text, resp.Result.IsError
}

func TestMCPTools(t *testing.T) {
	srv := server.NewMCPServer("portul-test", "0.0.0", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, testService(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	text, isErr := callTool(t, srv, "convert_text", map[string]any{"text": "The Cat sat."})
	require.False(t, isErr)
	var res convert.Result
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	require.Equal(t, "The Kat sat.", res.Text)

	text, isErr = callTool(t, srv, "list_dicts", nil)
	require.False(t, isErr)
	require.Contains(t, text, `"id":"portul"`)

	text, isErr = callTool(t, srv, "explain_text", map[string]any{"text": "kat", "direction": "reverse"})
	require.False(t, isErr)
	require.Contains(t, text, `"output":"cat"`)

	text, isErr = callTool(t, srv, "lookup_word", map[string]any{"dict": "portul", "word": "record", "pos": "n"})
	require.False(t, isErr)
	require.Contains(t, text, `"result":"rekord"`)

	_, isErr = callTool(t, srv, "convert_text", map[string]any{"text": "x", "dict": "nope"})
	require.True(t, isErr)

	_, isErr = callTool(t, srv, "convert_text", map[string]any{})
	require.True(t, isErr)
}
