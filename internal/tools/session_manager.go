package tools

import (
	"context"
	"encoding/json"

	"github.com/ccwio/ccw/internal/store"
)

type sessionManagerArgs struct {
	Operation    string         `json:"operation"`
	SessionID    string         `json:"sessionId,omitempty"`
	ContentType  string         `json:"contentType,omitempty"`
	PathParams   store.PathParams `json:"pathParams,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	Location     string         `json:"location,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	UpdateStatus bool           `json:"updateStatus,omitempty"`
	Type         string         `json:"type,omitempty"`
	IncludeMetadata bool        `json:"includeMetadata,omitempty"`
}

type sessionManagerResult struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSessionManager returns the session_manager tool handler, a thin
// wrapper over internal/store.Store's operations. Store failures are
// folded into the returned {success:false, error} envelope rather than
// returned as a *Error; the handler returns an invalid-params *Error only
// for malformed arguments, a missing operation, or an unknown operation.
func NewSessionManager(s *store.Store) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, *Error) {
		var args sessionManagerArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, invalidParams("malformed session_manager arguments: " + err.Error())
		}
		if args.Operation == "" {
			return nil, invalidParams("operation is required")
		}

		switch args.Operation {
		case "init":
			sess, err := s.Init(args.SessionID, store.Type(args.Type), args.Metadata)
			if err != nil {
				return sessionManagerResult{Success: false, Error: err.Error()}, nil
			}
			return sessionManagerResult{Success: true, Result: sess}, nil

		case "read":
			data, err := s.Read(args.SessionID, store.ContentType(args.ContentType), args.PathParams)
			if err != nil {
				return sessionManagerResult{Success: false, Error: err.Error()}, nil
			}
			var parsed any
			if json.Unmarshal(data, &parsed) != nil {
				parsed = string(data) // raw text (e.g. a summary) falls back to string
			}
			return sessionManagerResult{Success: true, Result: parsed}, nil

		case "write":
			content := []byte(args.Content)
			var text string
			if json.Unmarshal(args.Content, &text) == nil {
				content = []byte(text) // a JSON string (e.g. summary markdown) is stored as its raw text
			}
			if err := s.Write(args.SessionID, store.ContentType(args.ContentType), args.PathParams, content); err != nil {
				return sessionManagerResult{Success: false, Error: err.Error()}, nil
			}
			return sessionManagerResult{Success: true}, nil

		case "update":
			var patch map[string]any
			if err := json.Unmarshal(args.Content, &patch); err != nil {
				return sessionManagerResult{Success: false, Error: "content must be a JSON object for update"}, nil
			}
			merged, err := s.Update(args.SessionID, store.ContentType(args.ContentType), args.PathParams, patch)
			if err != nil {
				return sessionManagerResult{Success: false, Error: err.Error()}, nil
			}
			return sessionManagerResult{Success: true, Result: merged}, nil

		case "archive":
			if err := s.Archive(args.SessionID, args.UpdateStatus); err != nil {
				return sessionManagerResult{Success: false, Error: err.Error()}, nil
			}
			return sessionManagerResult{Success: true}, nil

		case "list":
			filter := store.ListFilter(args.Location)
			if filter == "" {
				filter = store.ListAll
			}
			results, err := s.List(filter, args.IncludeMetadata)
			if err != nil {
				return sessionManagerResult{Success: false, Error: err.Error()}, nil
			}
			return sessionManagerResult{Success: true, Result: results}, nil

		default:
			return nil, invalidParams("unknown operation: " + args.Operation)
		}
	}
}

// sessionManagerSchema is the tools/list entry for session_manager.
var sessionManagerSchema = Schema{
	Type: "object",
	Properties: map[string]SchemaProperty{
		"operation":       {Type: "string", Enum: []string{"init", "read", "write", "update", "archive", "list"}},
		"sessionId":       {Type: "string"},
		"contentType":     {Type: "string", Enum: []string{"session", "task", "summary", "context", "review", "plan"}},
		"pathParams":      {Type: "object"},
		// content is untyped: a session/task/update payload is a JSON object,
		// but a summary is free-form markdown text, so the wire schema can't
		// pin one JSON type here. write stores a JSON string as its raw text
		// and any other value as its JSON; update requires a JSON object.
		"content":         {Type: ""},
		"location":        {Type: "string"},
		"metadata":        {Type: "object"},
		"updateStatus":    {Type: "boolean"},
		"type":            {Type: "string"},
		"includeMetadata": {Type: "boolean"},
	},
	Required: []string{"operation"},
}
