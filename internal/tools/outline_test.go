package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestOutlineDelegatesToParser(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "f.go"), []byte("package main\n"), 0644)

	handler := NewOutline(root, StubOutlineParser{})
	args, _ := json.Marshal(outlineArgs{Path: "f.go"})

	result, toolErr := handler(context.Background(), args)
	if toolErr != nil {
		t.Fatalf("unexpected error: %v", toolErr)
	}
	out := result.(Outline)
	if out.TotalSymbols != 0 {
		t.Errorf("stub parser should return no symbols, got %d", out.TotalSymbols)
	}
}

func TestOutlineRejectsEscapingPath(t *testing.T) {
	root := t.TempDir()
	handler := NewOutline(root, StubOutlineParser{})
	args, _ := json.Marshal(outlineArgs{Path: "../../etc/passwd"})

	_, toolErr := handler(context.Background(), args)
	if toolErr == nil || toolErr.Kind != KindInvalidPath {
		t.Fatalf("expected invalid-path error, got %v", toolErr)
	}
}

func TestNewRegistryDefaultsToStubParserWhenNil(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "f.go"), []byte("package main\n"), 0644)

	catalog := NewRegistry(nil, root, nil)
	if len(catalog) != len(Catalog) {
		t.Fatalf("expected %d tools, got %d", len(Catalog), len(catalog))
	}

	for _, tool := range catalog {
		if tool.Name == "outline" {
			args, _ := json.Marshal(outlineArgs{Path: "f.go"})
			_, toolErr := tool.Handle(context.Background(), args)
			if toolErr != nil {
				t.Fatalf("outline via registry failed: %v", toolErr)
			}
		}
	}
}

func TestEveryToolRequiredKeySubsetOfProperties(t *testing.T) {
	root := t.TempDir()
	for _, tool := range NewRegistry(nil, root, nil) {
		for _, req := range tool.InputSchema.Required {
			if _, ok := tool.InputSchema.Properties[req]; !ok {
				t.Errorf("tool %q: required key %q missing from properties", tool.Name, req)
			}
		}
	}
}
