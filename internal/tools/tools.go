// Package tools registers the server's MCP tools: the crawl/answer tools
// backed by the orchestrator plus the fixed set of demo tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sasif-infinite/mcp/internal/metrics"
)

// inputSchema builds a JSON Schema object for a tool's arguments.
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// register wires a typed handler as an MCP tool. Arguments arrive as
// json.RawMessage in req.Params.Arguments; decode failures and handler
// errors become tool errors on the result, never protocol errors.
func register[Req any](srv *mcp.Server, tool *mcp.Tool, handler func(ctx context.Context, req Req) (any, error)) {
	name := tool.Name
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics.ToolCalled(name)

		var args Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("%s: invalid arguments: %w", name, err))
				return &res, nil
			}
		}

		resp, err := handler(ctx, args)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}
		return textResult(resp)
	})
}

// textResult marshals the response value into a single text content block.
func textResult(v any) (*mcp.CallToolResult, error) {
	text, ok := v.(string)
	if !ok {
		data, err := json.Marshal(v)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal response: %w", err))
			return &res, nil
		}
		text = string(data)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil
}
