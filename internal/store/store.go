// Package store implements the Session Store: a filesystem-backed CRUD and
// archive API over sessions and their child entities (tasks, summaries,
// context packages, review findings). Every mutation is durable before its
// corresponding event is published.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ccwio/ccw/internal/cwlog"
	"github.com/ccwio/ccw/internal/eventbus"
	"github.com/ccwio/ccw/internal/locator"
)

// ContentType names which kind of entity an operation addresses.
type ContentType string

const (
	ContentSession ContentType = "session"
	ContentTask    ContentType = "task"
	ContentSummary ContentType = "summary"
	ContentContext ContentType = "context"
	ContentReview  ContentType = "review"
	ContentPlan    ContentType = "plan"
)

// PathParams carries the identifiers needed to derive a content type's
// on-disk path: a taskId, a review dimension, or a summary/plan filename.
type PathParams struct {
	TaskID    string `json:"taskId,omitempty"`
	Dimension string `json:"dimension,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// Store is the Session Store's entry point, bound to one project's state
// root and event bus.
type Store struct {
	stateRoot string
	bus       *eventbus.Bus
}

// New creates a Store rooted at the given project path's location, as
// resolved by the locator package.
func New(projectPath string, bus *eventbus.Bus) (*Store, error) {
	loc, err := locator.Locate(projectPath)
	if err != nil {
		return nil, err
	}
	return &Store{stateRoot: loc.StateRoot, bus: bus}, nil
}

// NewAt creates a Store rooted directly at stateRoot, bypassing the
// locator. Used by tests and by callers that have already resolved a root.
func NewAt(stateRoot string, bus *eventbus.Bus) *Store {
	return &Store{stateRoot: stateRoot, bus: bus}
}

// sessionsRoot is the directory under stateRoot holding the .workflow tree.
func (s *Store) sessionsRoot() string {
	return filepath.Join(s.stateRoot, ".workflow")
}

// findSessionDir resolves a sessionId's directory under its (unknown a priori)
// location, by checking each candidate location in turn. Returns the
// location it was found in and the directory, or ("", "") if not found
// anywhere.
func (s *Store) findSessionDir(sessionID string) (Location, string) {
	for _, loc := range []Location{LocationActive, LocationArchived, LocationLitePlanRoot, LocationLiteFixRoot} {
		dir := filepath.Join(s.sessionsRoot(), locationDir(loc), sessionID)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return loc, dir
		}
	}
	return "", ""
}

// Init creates a new session directory, writes its header document, and
// creates its empty child subdirectories.
func (s *Store) Init(sessionID string, typ Type, metadata map[string]any) (*Session, error) {
	if !validID(sessionID) {
		return nil, errInvalidID("sessionId contains disallowed characters")
	}
	if _, dir := s.findSessionDir(sessionID); dir != "" {
		return nil, errExists("session already exists: " + sessionID)
	}

	loc := defaultLocationForType(typ)
	dir := filepath.Join(s.sessionsRoot(), locationDir(loc), sessionID)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errIO("failed to create session directory", err)
	}
	for _, sub := range sessionSubdirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, errIO("failed to create session subdirectory", err)
		}
	}

	now := time.Now().UTC()
	sess := &Session{
		SessionID: sessionID,
		Type:      typ,
		Status:    StatusInitialized,
		Location:  loc,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata,
	}

	if err := atomicWriteJSON(filepath.Join(dir, headerFilename), sess); err != nil {
		return nil, errIO("failed to write session header", err)
	}

	s.emit(eventbus.SessionCreated, sessionID, "", map[string]any{"type": typ, "status": sess.Status})
	return sess, nil
}

// Read returns the raw, unparsed bytes of the document (JSON, or text for
// summaries and plans) addressed by (sessionID, contentType, params).
func (s *Store) Read(sessionID string, contentType ContentType, params PathParams) ([]byte, error) {
	if !validID(sessionID) {
		return nil, errInvalidID("sessionId contains disallowed characters")
	}
	path, err := s.derivePath(sessionID, contentType, params)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errNotFound("no such " + string(contentType) + ": " + sessionID)
	}
	if err != nil {
		return nil, errIO("failed to read "+string(contentType), err)
	}
	return data, nil
}

// Write creates or atomically replaces the target file's content.
func (s *Store) Write(sessionID string, contentType ContentType, params PathParams, content []byte) error {
	if !validID(sessionID) {
		return errInvalidID("sessionId contains disallowed characters")
	}
	path, err := s.derivePath(sessionID, contentType, params)
	if err != nil {
		return err
	}

	if err := atomicWriteFile(path, content, 0644); err != nil {
		return errIO("failed to write "+string(contentType), err)
	}

	s.touchSession(sessionID)
	entityID := entityIDFor(contentType, params)
	s.emit(eventTypeForWrite(contentType), sessionID, entityID, nil)
	return nil
}

// Update reads the existing JSON document, shallow-merges patch's
// top-level keys on top of it, and writes the result atomically. The
// target must already exist.
func (s *Store) Update(sessionID string, contentType ContentType, params PathParams, patch map[string]any) (map[string]any, error) {
	if !validID(sessionID) {
		return nil, errInvalidID("sessionId contains disallowed characters")
	}
	path, err := s.derivePath(sessionID, contentType, params)
	if err != nil {
		return nil, err
	}

	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errNotFound("no such " + string(contentType) + ": " + sessionID)
	}
	if err != nil {
		return nil, errIO("failed to read "+string(contentType), err)
	}

	merged, err := shallowMerge(existing, patch)
	if err != nil {
		return nil, errInvalidJSON("existing document is not valid JSON", err)
	}

	if contentType == ContentSession {
		merged["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
	}

	if err := atomicWriteJSON(path, merged); err != nil {
		return nil, errIO("failed to write "+string(contentType), err)
	}

	s.touchSession(sessionID)
	entityID := entityIDFor(contentType, params)
	s.emit(eventTypeForUpdate(contentType), sessionID, entityID, merged)
	return merged, nil
}

// Archive moves an entire session directory into the archived location.
// If updateStatus is true, status and archivedAt are stamped onto the
// header before the move.
func (s *Store) Archive(sessionID string, updateStatus bool) error {
	if !validID(sessionID) {
		return errInvalidID("sessionId contains disallowed characters")
	}
	loc, dir := s.findSessionDir(sessionID)
	if dir == "" {
		return errNotFound("no such session: " + sessionID)
	}
	if loc == LocationArchived {
		return nil // already archived; archive is idempotent
	}

	if updateStatus {
		headerPath := filepath.Join(dir, headerFilename)
		data, err := os.ReadFile(headerPath)
		if err == nil {
			var sess Session
			if json.Unmarshal(data, &sess) == nil {
				now := time.Now().UTC()
				sess.Status = StatusCompleted
				sess.ArchivedAt = &now
				sess.UpdatedAt = now
				sess.Location = LocationArchived
				_ = atomicWriteJSON(headerPath, sess)
			}
		}
	}

	dest := filepath.Join(s.sessionsRoot(), locationDir(LocationArchived), sessionID)
	if _, err := os.Stat(dest); err == nil {
		return newError(KindDestinationExists, "archive destination already exists: "+sessionID, nil)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errIO("failed to create archive root", err)
	}
	if err := os.Rename(dir, dest); err != nil {
		return errIO("failed to move session to archive", err)
	}

	s.emit(eventbus.SessionArchived, sessionID, "", nil)
	return nil
}

// ListFilter selects which location(s) List scans.
type ListFilter string

const (
	ListActive   ListFilter = "active"
	ListArchived ListFilter = "archived"
	ListLitePlan ListFilter = "lite-plan"
	ListLiteFix  ListFilter = "lite-fix"
	ListAll      ListFilter = "all"
)

// SessionSummary is one entry in a List result.
type SessionSummary struct {
	SessionID string   `json:"sessionId"`
	Location  Location `json:"location"`
	Header    *Session `json:"header,omitempty"`
}

// List scans the given location(s) for session directories. When
// includeMetadata is true, each session's header file is parsed and
// attached; otherwise Header is nil and the scan is a directory listing
// only. Missing directories yield an empty list, never an error.
func (s *Store) List(filter ListFilter, includeMetadata bool) ([]SessionSummary, error) {
	var locs []Location
	switch filter {
	case ListActive:
		locs = []Location{LocationActive}
	case ListArchived:
		locs = []Location{LocationArchived}
	case ListLitePlan:
		locs = []Location{LocationLitePlanRoot}
	case ListLiteFix:
		locs = []Location{LocationLiteFixRoot}
	default:
		locs = []Location{LocationActive, LocationArchived, LocationLitePlanRoot, LocationLiteFixRoot}
	}

	var out []SessionSummary
	for _, loc := range locs {
		root := filepath.Join(s.sessionsRoot(), locationDir(loc))
		entries, err := os.ReadDir(root)
		if err != nil {
			continue // missing dir: empty, not an error
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			summary := SessionSummary{SessionID: e.Name(), Location: loc}
			if includeMetadata {
				data, err := os.ReadFile(filepath.Join(root, e.Name(), headerFilename))
				if err == nil {
					var sess Session
					if json.Unmarshal(data, &sess) == nil {
						summary.Header = &sess
					}
				}
			}
			out = append(out, summary)
		}
	}
	return out, nil
}

// touchSession updates a session's header updatedAt timestamp, best-effort.
func (s *Store) touchSession(sessionID string) {
	_, dir := s.findSessionDir(sessionID)
	if dir == "" {
		return
	}
	headerPath := filepath.Join(dir, headerFilename)
	data, err := os.ReadFile(headerPath)
	if err != nil {
		return
	}
	var sess Session
	if json.Unmarshal(data, &sess) != nil {
		return
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := atomicWriteJSON(headerPath, sess); err != nil {
		cwlog.Log.Warn("store: failed to touch session header", "sessionId", sessionID, "error", err)
	}
}

func (s *Store) emit(evtType eventbus.EventType, sessionID, entityID string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Type:      evtType,
		SessionID: sessionID,
		EntityID:  entityID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

func entityIDFor(contentType ContentType, params PathParams) string {
	switch contentType {
	case ContentTask:
		return params.TaskID
	case ContentReview:
		return params.Dimension
	case ContentSummary:
		return params.Filename
	default:
		return ""
	}
}

func eventTypeForWrite(contentType ContentType) eventbus.EventType {
	if contentType == ContentTask {
		return eventbus.TaskCreated
	}
	return eventbus.FileWritten
}

func eventTypeForUpdate(contentType ContentType) eventbus.EventType {
	switch contentType {
	case ContentSession:
		return eventbus.SessionUpdated
	case ContentTask:
		return eventbus.TaskUpdated
	default:
		return eventbus.FileWritten
	}
}

// derivePath resolves (sessionID, contentType, params) to an absolute file
// path inside the session's directory, rejecting anything that would
// escape it after resolution.
func (s *Store) derivePath(sessionID string, contentType ContentType, params PathParams) (string, error) {
	loc, dir := s.findSessionDir(sessionID)
	if dir == "" {
		return "", errNotFound("no such session: " + sessionID)
	}

	var rel string
	switch contentType {
	case ContentSession:
		rel = headerFilename
	case ContentTask:
		if !validID(params.TaskID) {
			return "", errInvalidPath("invalid taskId")
		}
		rel = filepath.Join(".task", taskFilename(params.TaskID))
	case ContentSummary:
		if !validID(baseNameNoExt(params.Filename)) {
			return "", errInvalidPath("invalid summary filename")
		}
		rel = filepath.Join(summariesDir, params.Filename)
	case ContentContext:
		rel = contextPackageFilename
	case ContentReview:
		if !validID(params.Dimension) {
			return "", errInvalidPath("invalid review dimension")
		}
		rel = filepath.Join(".review", reviewFilename(params.Dimension))
	case ContentPlan:
		switch loc {
		case LocationLitePlanRoot, LocationLiteFixRoot:
			rel = "plan.json"
		default:
			rel = "IMPL_PLAN.md"
		}
	default:
		return "", errInvalidPath("unknown content type: " + string(contentType))
	}

	full := filepath.Join(dir, rel)
	if !isPathWithin(full, dir) {
		return "", errInvalidPath("derived path escapes session directory")
	}
	return full, nil
}

// baseNameNoExt validates a supplied filename's stem against the same
// charset as any other path fragment, ignoring its extension.
func baseNameNoExt(filename string) string {
	ext := filepath.Ext(filename)
	return filename[:len(filename)-len(ext)]
}
