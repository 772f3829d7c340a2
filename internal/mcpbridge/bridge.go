// Package mcpbridge exposes internal/tools' catalog over the Model
// Context Protocol, as a second front-end alongside internal/rpcserver's
// hand-built JSON-RPC loop. Both share the same tools.Handler
// implementations; only the wire format differs.
package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ccwio/ccw/internal/tools"
)

// serverName/serverVersion identify ccw to MCP clients such as Claude
// Desktop.
const (
	serverName    = "ccw"
	serverVersion = "0.1.0"
)

// New builds an *mcp.Server with one AddTool registration per entry in
// catalog, already filtered to the enabled tool set by the caller.
func New(catalog []tools.Tool) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	for _, t := range catalog {
		tool := t // capture for the closure below
		mcp.AddTool(server, &mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: toJSONSchema(tool.InputSchema),
		}, adaptHandler(tool))
	}

	return server
}

// adaptHandler wraps a tools.Handler — which works in terms of raw JSON
// arguments and a handled *tools.Error — as an MCP tool function, which
// works in terms of typed maps and a CallToolResult/isError envelope.
func adaptHandler(tool tools.Tool) func(context.Context, *mcp.CallToolRequest, map[string]any) (*mcp.CallToolResult, map[string]any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, map[string]any, error) {
		raw, err := json.Marshal(input)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal arguments: %w", err)
		}

		result, toolErr := tool.Handle(ctx, raw)
		if toolErr != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: toolErr.Error()}},
			}, nil, nil
		}

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal result: %w", err)
		}

		var output map[string]any
		if json.Unmarshal(resultJSON, &output) != nil {
			output = map[string]any{"value": result}
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(resultJSON)}},
		}, output, nil
	}
}

// toJSONSchema converts internal/tools' Schema (the same vocabulary
// internal/rpcserver's tools/list speaks) into the jsonschema.Schema the
// MCP SDK expects, so both front-ends advertise identical tool shapes.
func toJSONSchema(s tools.Schema) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(s.Properties))
	for name, p := range s.Properties {
		field := &jsonschema.Schema{Type: p.Type, Description: p.Description}
		if len(p.Enum) > 0 {
			field.Enum = make([]any, len(p.Enum))
			for i, v := range p.Enum {
				field.Enum[i] = v
			}
		}
		props[name] = field
	}
	return &jsonschema.Schema{
		Type:       s.Type,
		Properties: props,
		Required:   s.Required,
	}
}
