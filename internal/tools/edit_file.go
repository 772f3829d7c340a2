package tools

import (
	"context"
	"encoding/json"
	"os"
	"strings"
)

type editFileArgs struct {
	Path    string `json:"path"`
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
	Mode    string `json:"mode"`
}

// NewEditFile returns the edit_file tool handler. In "update" mode it
// replaces exactly one occurrence of oldText with newText, failing on
// zero or multiple matches. "insert" appends newText after the single
// oldText match; "delete" removes the single oldText match outright.
func NewEditFile(projectRoot string) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, *Error) {
		var args editFileArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, invalidParams("malformed edit_file arguments: " + err.Error())
		}
		if args.Path == "" {
			return nil, invalidParams("path is required")
		}
		switch args.Mode {
		case "update", "insert", "delete":
		default:
			return nil, invalidParams("mode must be one of update, insert, delete")
		}

		abs, ok := resolveWithinRoot(projectRoot, args.Path)
		if !ok {
			return nil, invalidPath("path escapes project root: " + args.Path)
		}

		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, &Error{Kind: KindNotFound, Message: "cannot read file: " + err.Error()}
		}
		text := string(data)

		count := strings.Count(text, args.OldText)
		if count == 0 {
			return nil, invalidParams("oldText not found in file")
		}
		if count > 1 {
			return nil, invalidParams("oldText matches multiple locations; must match exactly once")
		}

		var replacement string
		switch args.Mode {
		case "update":
			replacement = args.NewText
		case "insert":
			replacement = args.OldText + args.NewText
		case "delete":
			replacement = ""
		}

		updated := strings.Replace(text, args.OldText, replacement, 1)
		if err := os.WriteFile(abs, []byte(updated), 0644); err != nil {
			return nil, &Error{Kind: KindStore, Message: "failed to write file: " + err.Error()}
		}

		return map[string]any{"path": args.Path, "mode": args.Mode}, nil
	}
}

var editFileSchema = Schema{
	Type: "object",
	Properties: map[string]SchemaProperty{
		"path":    {Type: "string"},
		"oldText": {Type: "string"},
		"newText": {Type: "string"},
		"mode":    {Type: "string", Enum: []string{"update", "insert", "delete"}},
	},
	Required: []string{"path", "oldText", "newText", "mode"},
}
