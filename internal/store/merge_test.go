package store

import "testing"

func TestShallowMergeOverwritesOnlySuppliedKeys(t *testing.T) {
	existing := []byte(`{"status":"pending","title":"do it","tags":["a"]}`)
	patch := map[string]any{"status": "done"}

	merged, err := shallowMerge(existing, patch)
	if err != nil {
		t.Fatalf("shallowMerge: %v", err)
	}

	if merged["status"] != "done" {
		t.Errorf("status = %v, want done", merged["status"])
	}
	if merged["title"] != "do it" {
		t.Errorf("title should be preserved, got %v", merged["title"])
	}
}

func TestShallowMergeOnEmptyExisting(t *testing.T) {
	merged, err := shallowMerge(nil, map[string]any{"status": "initialized"})
	if err != nil {
		t.Fatalf("shallowMerge: %v", err)
	}
	if merged["status"] != "initialized" {
		t.Errorf("status = %v, want initialized", merged["status"])
	}
}

func TestShallowMergeRejectsInvalidJSON(t *testing.T) {
	_, err := shallowMerge([]byte("not json"), map[string]any{"a": 1})
	if err == nil {
		t.Fatal("expected error for invalid existing JSON")
	}
}
