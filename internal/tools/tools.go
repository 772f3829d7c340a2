// Package tools implements the thin handlers behind ccw's tool catalog:
// session_manager, write_file, edit_file, smart_search, and outline. Both
// the raw JSON-RPC server (internal/rpcserver) and the MCP bridge
// (internal/mcpbridge) dispatch to the same handlers here, so neither
// transport's quirks leak into the Session Store.
package tools

import (
	"context"
	"encoding/json"
)

// Kind classifies a handled tool-level error, mirroring internal/store's
// Kind taxonomy so callers can render a consistent message without
// string-matching.
type Kind string

const (
	KindInvalidParams Kind = "invalid-params"
	KindInvalidPath   Kind = "invalid-path"
	KindNotFound      Kind = "not-found"
	KindStore         Kind = "store-error"
)

// Error is a handled tool failure. It is never a protocol-level error —
// callers render it as {content:[{type:"text",text}], isError:true}.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func invalidParams(msg string) *Error { return &Error{Kind: KindInvalidParams, Message: msg} }
func invalidPath(msg string) *Error   { return &Error{Kind: KindInvalidPath, Message: msg} }

// Handler is the shape every tool implementation conforms to: parse its
// own arguments out of raw, do its work, and return a JSON-marshalable
// result or a handled *Error.
type Handler func(ctx context.Context, raw json.RawMessage) (any, *Error)

// Catalog names the core tool set, in the order they appear in tools/list.
var Catalog = []string{"session_manager", "write_file", "edit_file", "smart_search", "outline"}

// Tool describes one catalog entry: its name, description, JSON-Schema
// input shape, and handler.
type Tool struct {
	Name        string
	Description string
	InputSchema Schema
	Handle      Handler
}

// Schema is the JSON-Schema subset the spec's tools/list response uses:
// an object with named properties and a required-name list. Every name in
// Required must also appear in Properties — this invariant is enforced
// by the rpcserver's catalog validation, not re-checked per call here.
type Schema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// SchemaProperty describes one property of a Schema.
type SchemaProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}
