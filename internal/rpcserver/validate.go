package rpcserver

import (
	"encoding/json"
	"fmt"

	"github.com/ccwio/ccw/internal/tools"
)

// toWireSchema converts a tools.Schema into the wire-level inputSchema,
// asserting the required-subset-of-properties invariant along the way;
// a violation here is a programming error in the catalog, not caller
// input, so it panics rather than degrading to a silent bad response.
func toWireSchema(s tools.Schema) inputSchema {
	props := make(map[string]schemaField, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = schemaField{Type: p.Type, Description: p.Description, Enum: p.Enum}
	}
	for _, req := range s.Required {
		if _, ok := props[req]; !ok {
			panic(fmt.Sprintf("tool schema invariant violated: required key %q missing from properties", req))
		}
	}
	return inputSchema{Type: s.Type, Properties: props, Required: s.Required}
}

// validateArguments checks that arguments contains every required key and
// that each supplied key's JSON type matches the schema's declared type.
// It does not attempt full JSON-Schema validation (nested objects, enum
// membership, etc.) — spec.md's parameter-validation property is scoped to
// "required keys present; top-level types match".
func validateArguments(schema tools.Schema, arguments json.RawMessage) error {
	var parsed map[string]json.RawMessage
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &parsed); err != nil {
			return fmt.Errorf("arguments must be a JSON object")
		}
	}

	for _, req := range schema.Required {
		if _, ok := parsed[req]; !ok {
			return fmt.Errorf("parameter %s is required", req)
		}
	}

	for name, raw := range parsed {
		prop, ok := schema.Properties[name]
		if !ok {
			continue
		}
		if !jsonTypeMatches(raw, prop.Type) {
			return fmt.Errorf("parameter %s must be of type %s", name, prop.Type)
		}
	}

	return nil
}

func jsonTypeMatches(raw json.RawMessage, wantType string) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch wantType {
	case "string":
		_, ok := v.(string)
		return ok
	case "number", "integer":
		_, ok := v.(float64)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}
