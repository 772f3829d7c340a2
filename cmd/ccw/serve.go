package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ccwio/ccw/internal/config"
	"github.com/ccwio/ccw/internal/cwlog"
	"github.com/ccwio/ccw/internal/dashboard"
	"github.com/ccwio/ccw/internal/eventbus"
	"github.com/ccwio/ccw/internal/locator"
	"github.com/ccwio/ccw/internal/mcpbridge"
	"github.com/ccwio/ccw/internal/rpcserver"
	"github.com/ccwio/ccw/internal/store"
	"github.com/ccwio/ccw/internal/tools"
)

var (
	servePath  string
	servePort  int
	serveMCP   bool
	serveQuiet bool
	serveLog   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard bridge and tool-calling server",
	Long: `Start ccw for the project at --path (default: the current directory).

Runs two sibling servers until interrupted:
  - the Dashboard Bridge, an HTTP/WebSocket server streaming live session
    state to a browser dashboard
  - the Tool-Calling Server, a JSON-RPC 2.0 loop over stdio (or, with
    --mcp, an MCP bridge instead) exposing the tool catalog to an agent

Either server's fatal error shuts down both.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePath, "path", "", "project root (default: current directory)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "dashboard bridge port (default: config/CCW_PORT/8784)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "expose tools over MCP (stdio) instead of the raw JSON-RPC server")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "suppress request logging")
	serveCmd.Flags().StringVar(&serveLog, "log", "", "write debug log to file")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveLog != "" {
		if err := cwlog.Init(serveLog); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer cwlog.Log.Close()
	}

	projectRoot := servePath
	if projectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		projectRoot = wd
	}
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	port := servePort
	if port == 0 {
		port = config.ResolvePort(cfg)
	}

	bus := eventbus.New(0)
	sessionStore, err := store.New(projectRoot, bus)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	allowlist := config.ResolveEnabledTools(cfg)
	catalog := filterCatalog(tools.NewRegistry(sessionStore, projectRoot, nil), allowlist)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if loc, err := locator.Locate(projectRoot); err != nil {
		cwlog.Log.Warn("serve: filesystem watch disabled", "error", err)
	} else if mutations, err := locator.Watch(ctx, loc.StateRoot); err != nil {
		cwlog.Log.Warn("serve: filesystem watch disabled", "error", err)
	} else {
		go publishMutations(bus, filepath.Join(loc.StateRoot, ".workflow"), mutations)
	}

	dash := dashboard.NewServer(dashboard.Config{
		Port:        port,
		Quiet:       serveQuiet,
		ProjectRoot: projectRoot,
	}, sessionStore, bus)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dash.ListenAndServe(gctx)
	})

	g.Go(func() error {
		if serveMCP {
			return mcpbridge.RunStdio(gctx, mcpbridge.New(catalog))
		}
		return rpcserver.New(catalog, rpcserver.DefaultCallTimeout).Run(gctx, os.Stdin, os.Stdout)
	})

	fmt.Fprintf(os.Stderr, "ccw serving %s — dashboard on http://%s\n", projectRoot, dash.Addr())

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	return nil
}

// publishMutations bridges locator's out-of-band filesystem watch onto the
// Event Bus, so a dashboard stays in sync even when a session file is
// edited by something other than the Session Store's own write path.
func publishMutations(bus *eventbus.Bus, sessionsRoot string, mutations <-chan locator.MutationEvent) {
	for evt := range mutations {
		sessionID, isTask := sessionIDFromMutationPath(sessionsRoot, evt.Path)
		if sessionID == "" {
			continue
		}
		eventType := eventbus.SessionUpdated
		if isTask {
			eventType = eventbus.TaskUpdated
		}
		bus.Publish(eventbus.Event{
			Type:      eventType,
			SessionID: sessionID,
			Timestamp: time.Now(),
			Payload:   map[string]any{"path": evt.Path, "fsEvent": evt.EventType},
		})
	}
}

// sessionIDFromMutationPath extracts the session directory name from an
// absolute path under stateRoot (.../<location>/<sessionId>/...) and
// reports whether the change landed under that session's .task/ directory.
// Paths outside stateRoot yield "".
func sessionIDFromMutationPath(stateRoot, path string) (sessionID string, isTask bool) {
	rel, err := filepath.Rel(stateRoot, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == ".." {
		return "", false
	}
	sessionID = parts[1]
	for _, p := range parts[2:] {
		if p == ".task" {
			isTask = true
		}
	}
	return sessionID, isTask
}

func filterCatalog(catalog []tools.Tool, allowlist []string) []tools.Tool {
	if len(allowlist) == 0 {
		return nil
	}
	out := make([]tools.Tool, 0, len(catalog))
	for _, t := range catalog {
		if config.ToolEnabled(allowlist, t.Name) {
			out = append(out, t)
		}
	}
	return out
}
