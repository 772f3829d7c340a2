package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

type writeFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// NewWriteFile returns the write_file tool handler: an atomic create-or-
// replace of a file at path, confined to projectRoot.
func NewWriteFile(projectRoot string) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, *Error) {
		var args writeFileArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, invalidParams("malformed write_file arguments: " + err.Error())
		}
		if args.Path == "" {
			return nil, invalidParams("path is required")
		}

		abs, ok := resolveWithinRoot(projectRoot, args.Path)
		if !ok {
			return nil, invalidPath("path escapes project root: " + args.Path)
		}

		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return nil, &Error{Kind: KindStore, Message: "failed to create parent directory: " + err.Error()}
		}

		tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".tmp-*")
		if err != nil {
			return nil, &Error{Kind: KindStore, Message: "failed to create temp file: " + err.Error()}
		}
		if _, err := tmp.WriteString(args.Content); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, &Error{Kind: KindStore, Message: "failed to write content: " + err.Error()}
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return nil, &Error{Kind: KindStore, Message: "failed to close temp file: " + err.Error()}
		}
		if err := os.Rename(tmp.Name(), abs); err != nil {
			os.Remove(tmp.Name())
			return nil, &Error{Kind: KindStore, Message: "failed to finalize write: " + err.Error()}
		}

		return map[string]any{"path": args.Path, "bytesWritten": len(args.Content)}, nil
	}
}

var writeFileSchema = Schema{
	Type: "object",
	Properties: map[string]SchemaProperty{
		"path":    {Type: "string", Description: "File path relative to or within the project root"},
		"content": {Type: "string"},
	},
	Required: []string{"path", "content"},
}

// resolveWithinRoot cleans and absolutizes path against root, returning
// false if the result would escape root.
func resolveWithinRoot(root, path string) (string, bool) {
	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(root, path))
	}

	cleanRoot := filepath.Clean(root)
	if abs == cleanRoot {
		return abs, true
	}
	withSep := cleanRoot
	if withSep[len(withSep)-1] != filepath.Separator {
		withSep += string(filepath.Separator)
	}
	if len(abs) > len(withSep) && abs[:len(withSep)] == withSep {
		return abs, true
	}
	return "", false
}
