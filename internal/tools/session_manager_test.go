package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ccwio/ccw/internal/eventbus"
	"github.com/ccwio/ccw/internal/store"
)

func newTestHandler(t *testing.T) Handler {
	t.Helper()
	root := t.TempDir()
	s := store.NewAt(root, eventbus.New(0))
	return NewSessionManager(s)
}

func TestSessionManagerInitAndRead(t *testing.T) {
	handler := newTestHandler(t)

	initArgs, _ := json.Marshal(sessionManagerArgs{Operation: "init", SessionID: "WFS-001", Type: "workflow"})
	result, toolErr := handler(context.Background(), initArgs)
	if toolErr != nil {
		t.Fatalf("init failed: %v", toolErr)
	}
	if !result.(sessionManagerResult).Success {
		t.Fatalf("init result not successful: %+v", result)
	}

	readArgs, _ := json.Marshal(sessionManagerArgs{Operation: "read", SessionID: "WFS-001", ContentType: "session"})
	result, toolErr = handler(context.Background(), readArgs)
	if toolErr != nil {
		t.Fatalf("read failed: %v", toolErr)
	}
	if !result.(sessionManagerResult).Success {
		t.Fatalf("read result not successful: %+v", result)
	}
}

func TestSessionManagerRejectsMissingOperation(t *testing.T) {
	handler := newTestHandler(t)

	args, _ := json.Marshal(sessionManagerArgs{})
	_, toolErr := handler(context.Background(), args)
	if toolErr == nil || toolErr.Kind != KindInvalidParams {
		t.Fatalf("expected invalid-params error, got %v", toolErr)
	}
}

func TestSessionManagerStoreErrorFoldedIntoEnvelope(t *testing.T) {
	handler := newTestHandler(t)

	// Reading a session that was never init'd is a store-level NotFound,
	// which session_manager folds into {success:false, error} rather
	// than returning a *Error from the handler itself.
	args, _ := json.Marshal(sessionManagerArgs{Operation: "read", SessionID: "WFS-404", ContentType: "session"})
	result, toolErr := handler(context.Background(), args)
	if toolErr != nil {
		t.Fatalf("unexpected handler-level error: %v", toolErr)
	}
	res := result.(sessionManagerResult)
	if res.Success {
		t.Fatal("expected success=false for missing session")
	}
	if res.Error == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestSessionManagerList(t *testing.T) {
	handler := newTestHandler(t)

	initArgs, _ := json.Marshal(sessionManagerArgs{Operation: "init", SessionID: "WFS-001", Type: "workflow"})
	if _, toolErr := handler(context.Background(), initArgs); toolErr != nil {
		t.Fatalf("init failed: %v", toolErr)
	}

	listArgs, _ := json.Marshal(sessionManagerArgs{Operation: "list", Location: "active"})
	result, toolErr := handler(context.Background(), listArgs)
	if toolErr != nil {
		t.Fatalf("list failed: %v", toolErr)
	}
	res := result.(sessionManagerResult)
	if !res.Success {
		t.Fatalf("list result not successful: %+v", res)
	}
	sessions, ok := res.Result.([]store.SessionSummary)
	if !ok || len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %+v", res.Result)
	}
}
