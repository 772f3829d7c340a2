package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccwio/ccw/internal/eventbus"
	"github.com/ccwio/ccw/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bus := eventbus.New(0)
	s := store.NewAt(t.TempDir(), bus)
	return NewServer(Config{Port: 0}, s, bus)
}

func TestHandleHookPublishesToEventBus(t *testing.T) {
	srv := newTestServer(t)
	sub := srv.bus.Subscribe()
	defer sub.Cancel()

	body, _ := json.Marshal(hookPayload{Type: "SESSION_UPDATED", SessionID: "WFS-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/hook", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case evt := <-sub.Events:
		if evt.SessionID != "WFS-1" || evt.Type != eventbus.SessionUpdated {
			t.Errorf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestHandleHookRejectsMissingType(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(hookPayload{SessionID: "WFS-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/hook", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHookAcceptsSessionlessNotification(t *testing.T) {
	srv := newTestServer(t)
	sub := srv.bus.Subscribe()
	defer sub.Cancel()

	body, _ := json.Marshal(hookPayload{Type: "FILE_WRITTEN"})
	req := httptest.NewRequest(http.MethodPost, "/api/hook", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case evt := <-sub.Events:
		if evt.SessionID != "" || evt.Type != eventbus.FileWritten {
			t.Errorf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestHandleHookRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/hook", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleStatusAllReturnsInitializedSessions(t *testing.T) {
	srv := newTestServer(t)

	if err := srv.store.Init("WFS-1", store.TypeWorkflow, nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status/all", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Sessions []store.SessionSummary `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(body.Sessions))
	}
}

func TestHandleSessionDetailRequiresTypeAndID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session-detail", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSessionDetailReadsSessionHeader(t *testing.T) {
	srv := newTestServer(t)
	if err := srv.store.Init("WFS-1", store.TypeWorkflow, nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session-detail?sessionId=WFS-1&type=session", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSessionDetailRejectsUnknownType(t *testing.T) {
	srv := newTestServer(t)
	if err := srv.store.Init("WFS-1", store.TypeWorkflow, nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session-detail?sessionId=WFS-1&type=bogus", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIssueTicketRedeemsOnce(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ws/ticket", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	var body struct {
		Ticket string `json:"ticket"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Ticket == "" {
		t.Fatal("expected a non-empty ticket")
	}

	if !srv.tickets.Redeem(body.Ticket) {
		t.Fatal("expected first redemption to succeed")
	}
	if srv.tickets.Redeem(body.Ticket) {
		t.Fatal("expected second redemption of the same ticket to fail")
	}
}

func TestBearerAuthRejectsMissingToken(t *testing.T) {
	bus := eventbus.New(0)
	s := store.NewAt(t.TempDir(), bus)
	srv := NewServer(Config{Port: 0, Token: "secret"}, s, bus)

	req := httptest.NewRequest(http.MethodGet, "/api/status/all", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuthExemptsWSAndMetrics(t *testing.T) {
	bus := eventbus.New(0)
	s := store.NewAt(t.TempDir(), bus)
	srv := NewServer(Config{Port: 0, Token: "secret"}, s, bus)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to bypass auth, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code == http.StatusUnauthorized {
		t.Fatalf("expected /ws to bypass bearer auth, got %d", rec.Code)
	}
}

func TestSwaggerDocJSONServed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBearerAuthAcceptsValidToken(t *testing.T) {
	bus := eventbus.New(0)
	s := store.NewAt(t.TempDir(), bus)
	srv := NewServer(Config{Port: 0, Token: "secret"}, s, bus)

	req := httptest.NewRequest(http.MethodGet, "/api/status/all", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
