package main

import (
	"path/filepath"
	"testing"
)

func TestSessionIDFromMutationPath(t *testing.T) {
	stateRoot := filepath.FromSlash("/tmp/ccw-state")

	cases := []struct {
		path        string
		wantSession string
		wantTask    bool
	}{
		{filepath.Join(stateRoot, "active", "WFS-1", "workflow-session.json"), "WFS-1", false},
		{filepath.Join(stateRoot, "active", "WFS-1", ".task", "TASK-1.json"), "WFS-1", true},
		{filepath.Join(stateRoot, "archives", "WFS-2", "workflow-session.json"), "WFS-2", false},
		{filepath.Join(stateRoot, ".lite-plan", "LP-1", "plan.json"), "LP-1", false},
		{stateRoot, "", false},
	}

	for _, c := range cases {
		gotSession, gotTask := sessionIDFromMutationPath(stateRoot, c.path)
		if gotSession != c.wantSession || gotTask != c.wantTask {
			t.Errorf("sessionIDFromMutationPath(%q) = (%q, %v), want (%q, %v)",
				c.path, gotSession, gotTask, c.wantSession, c.wantTask)
		}
	}
}
