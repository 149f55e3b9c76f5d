package kit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDecoder turns tool call arguments into the request an Endpoint expects.
type MCPDecoder func(mcp.CallToolRequest) (any, error)

// NoArgs is the decoder for tools that take no arguments.
func NoArgs(mcp.CallToolRequest) (any, error) { return nil, nil }

// RegisterMCPTool exposes endpoint as an MCP tool. Responses are returned as
// structured content with the same JSON as text fallback. Decode and
// endpoint errors become tool errors so the session stays usable.
func RegisterMCPTool(srv *server.MCPServer, tool mcp.Tool, endpoint Endpoint, decode MCPDecoder) {
	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		request, err := decode(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		// QUIC sessions set their transport; anything else is stdio.
		if _, ok := ctx.Value(TransportKey).(string); !ok {
			ctx = WithTransport(ctx, TransportMCPStdio)
		}

		resp, err := endpoint(ctx, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal: %v", err)), nil
		}
		return mcp.NewToolResultStructured(resp, string(data)), nil
	})
}
