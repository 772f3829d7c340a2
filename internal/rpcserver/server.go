package rpcserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ccwio/ccw/internal/cwlog"
	"github.com/ccwio/ccw/internal/tools"
)

// DefaultCallTimeout is how long a single tools/call handler invocation is
// allowed to run before its result is discarded and a timeout error is
// returned to the caller.
const DefaultCallTimeout = 30 * time.Second

// Server is the line-delimited JSON-RPC 2.0 loop over stdio.
type Server struct {
	catalog     []tools.Tool
	byName      map[string]tools.Tool
	callTimeout time.Duration

	writeMu sync.Mutex
}

// New builds a Server over catalog, already filtered to the enabled tool
// set by the caller (config.ResolveEnabledTools / config.ToolEnabled).
func New(catalog []tools.Tool, callTimeout time.Duration) *Server {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	byName := make(map[string]tools.Tool, len(catalog))
	for _, t := range catalog {
		byName[t.Name] = t
	}
	return &Server{catalog: catalog, byName: byName, callTimeout: callTimeout}
}

// Run reads newline-delimited JSON-RPC requests from r and writes
// responses to w until ctx is canceled or r returns EOF. Requests are read
// serially; each is dispatched in its own goroutine so slow tools/call
// invocations don't block the reader, and response writes are serialized
// so each JSON-RPC frame is emitted atomically.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var wg sync.WaitGroup
	defer wg.Wait()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// Copy the line: scanner.Bytes() is reused on the next Scan.
		frame := append([]byte(nil), line...)

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleFrame(ctx, frame, w)
		}()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

func (s *Server) handleFrame(ctx context.Context, frame []byte, w io.Writer) {
	var req request
	if err := json.Unmarshal(frame, &req); err != nil {
		s.write(w, errorResponse(nil, codeParseError, "Parse error"))
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.write(w, errorResponse(req.ID, codeInvalidRequest, "Invalid Request"))
		return
	}

	switch req.Method {
	case "tools/list":
		s.write(w, resultResponse(req.ID, s.toolsList()))
	case "tools/call":
		s.write(w, s.toolsCall(ctx, req))
	default:
		s.write(w, errorResponse(req.ID, codeMethodNotFound, "Method not found"))
	}
}

func (s *Server) toolsList() toolsListResult {
	out := make([]toolDescriptor, 0, len(s.catalog))
	for _, t := range s.catalog {
		out = append(out, toolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: toWireSchema(t.InputSchema),
		})
	}
	return toolsListResult{Tools: out}
}

func (s *Server) toolsCall(ctx context.Context, req request) response {
	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params")
	}

	tool, ok := s.byName[params.Name]
	if !ok {
		return resultResponse(req.ID, textResult("tool not found or not enabled", true))
	}

	if err := validateArguments(tool.InputSchema, params.Arguments); err != nil {
		return resultResponse(req.ID, textResult(err.Error(), true))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	type outcome struct {
		result any
		err    *tools.Error
	}
	done := make(chan outcome, 1)
	go func() {
		result, toolErr := tool.Handle(callCtx, params.Arguments)
		done <- outcome{result: result, err: toolErr}
	}()

	select {
	case <-callCtx.Done():
		cwlog.Log.Warn("rpcserver: tool call timed out", "tool", params.Name)
		return resultResponse(req.ID, textResult("timeout", true))
	case out := <-done:
		if out.err != nil {
			return resultResponse(req.ID, textResult(out.err.Error(), true))
		}
		text, err := json.Marshal(out.result)
		if err != nil {
			return resultResponse(req.ID, textResult(fmt.Sprintf("failed to marshal result: %v", err), true))
		}
		return resultResponse(req.ID, textResult(string(text), false))
	}
}

func (s *Server) write(w io.Writer, resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		cwlog.Log.Error("rpcserver: failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := w.Write(data); err != nil {
		cwlog.Log.Error("rpcserver: failed to write response", "error", err)
	}
}
