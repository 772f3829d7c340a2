package mcpbridge

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ccwio/ccw/internal/cwlog"
)

// RunStdio runs server on stdin/stdout until ctx is canceled or the
// transport reports the peer disconnected.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	transport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    os.Stderr,
	}
	cwlog.Log.Info("mcpbridge: starting stdio server")
	err := server.Run(ctx, transport)
	cwlog.Log.Info("mcpbridge: stdio server stopped", "error", err)
	return err
}

// RunHTTP runs server over HTTP using the MCP SSE transport, blocking
// until ctx is canceled.
func RunHTTP(ctx context.Context, server *mcp.Server, host string, port int) error {
	sseHandler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		cwlog.Log.Info("mcpbridge: new SSE connection", "remote", r.RemoteAddr)
		return server
	}, nil)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{Addr: addr, Handler: sseHandler}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cwlog.Log.Info("mcpbridge: shutting down")
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	cwlog.Log.Info("mcpbridge: listening", "addr", ln.Addr().String())
	err = httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
