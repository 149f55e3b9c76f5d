package api

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/portul/pkg/convert"
	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/kit"
)

// RegisterMCPTools registers the portul MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc *convert.Service, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	eps := newEndpoints(svc, logger)
	registerConvertText(srv, eps)
	registerExplainText(srv, eps)
	registerListDicts(srv, eps)
	registerLookupWord(srv, eps)
}

func textArgs(req mcp.CallToolRequest) (any, error) {
	args := req.GetArguments()
	text, ok := args["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text is required")
	}
	d, _ := args["dict"].(string)
	dir, _ := args["direction"].(string)
	return &convert.Request{Text: text, Dict: d, Direction: dir}, nil
}

func registerConvertText(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("convert_text",
		mcp.WithDescription("Convert English text between traditional spelling and the Portul alternate spelling. Whitespace and unknown words are kept as is."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to convert")),
		mcp.WithString("dict", mcp.Description("Dictionary ID (default: the server default dictionary)")),
		mcp.WithString("direction", mcp.Description("forward (traditional to Portul) or reverse"), mcp.Enum("forward", "reverse")),
	)

	kit.RegisterMCPTool(srv, tool, eps.convert, textArgs)
}

func registerExplainText(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("explain_text",
		mcp.WithDescription("Convert text and report, per token, the part-of-speech tag, the dictionary lookup tier that matched and the output."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to explain")),
		mcp.WithString("dict", mcp.Description("Dictionary ID")),
		mcp.WithString("direction", mcp.Description("forward or reverse"), mcp.Enum("forward", "reverse")),
	)

	kit.RegisterMCPTool(srv, tool, eps.explain, textArgs)
}

func registerListDicts(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("list_dicts",
		mcp.WithDescription("List all loaded spelling dictionaries with metadata (language, spelling system, row count, source)."),
	)

	kit.RegisterMCPTool(srv, tool, eps.listDicts, kit.NoArgs)
}

func registerLookupWord(srv *server.MCPServer, eps *endpoints) {
	tool := mcp.NewTool("lookup_word",
		mcp.WithDescription("Look a single word up in a dictionary index without tagging. Forward lookups without pos list every part-of-speech entry."),
		mcp.WithString("dict", mcp.Required(), mcp.Description("Dictionary ID")),
		mcp.WithString("word", mcp.Required(), mcp.Description("The word, matched exactly")),
		mcp.WithString("direction", mcp.Description("forward or reverse"), mcp.Enum("forward", "reverse")),
		mcp.WithString("pos", mcp.Description("Part of speech filter: n, v, adj, adv, interj, or empty for unconstrained entries")),
	)

	kit.RegisterMCPTool(srv, tool, eps.lookup, func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		r := &lookupReq{}
		r.Dict, _ = args["dict"].(string)
		r.Word, _ = args["word"].(string)
		r.Direction, _ = args["direction"].(string)
		if r.Dict == "" || r.Word == "" {
			return nil, fmt.Errorf("dict and word are required")
		}
		if v, ok := args["pos"].(string); ok {
			pos := dict.POS(v)
			r.POS = &pos
		}
		return r, nil
	})
}
