package mcpbridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ccwio/ccw/internal/tools"
)

func TestToJSONSchemaCarriesRequiredAndProperties(t *testing.T) {
	schema := tools.Schema{
		Type: "object",
		Properties: map[string]tools.SchemaProperty{
			"action": {Type: "string", Enum: []string{"read", "write"}},
		},
		Required: []string{"action"},
	}

	out := toJSONSchema(schema)
	if out.Type != "object" {
		t.Fatalf("expected object type, got %s", out.Type)
	}
	if len(out.Required) != 1 || out.Required[0] != "action" {
		t.Fatalf("expected required=[action], got %v", out.Required)
	}
	prop, ok := out.Properties["action"]
	if !ok {
		t.Fatal("expected action property")
	}
	if len(prop.Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %d", len(prop.Enum))
	}
}

func TestAdaptHandlerFoldsToolErrorIntoIsError(t *testing.T) {
	tool := tools.Tool{
		Name: "fails",
		Handle: func(ctx context.Context, raw json.RawMessage) (any, *tools.Error) {
			return nil, &tools.Error{Kind: tools.KindInvalidParams, Message: "bad input"}
		},
	}

	result, output, err := adaptHandler(tool)(context.Background(), nil, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if output != nil {
		t.Fatalf("expected nil output on tool error, got %+v", output)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true")
	}
}

func TestAdaptHandlerMarshalsSuccessResult(t *testing.T) {
	tool := tools.Tool{
		Name: "ok",
		Handle: func(ctx context.Context, raw json.RawMessage) (any, *tools.Error) {
			return map[string]any{"success": true}, nil
		},
	}

	result, output, err := adaptHandler(tool)(context.Background(), nil, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected IsError=false")
	}
	if output["success"] != true {
		t.Fatalf("expected output to carry success=true, got %+v", output)
	}
}
