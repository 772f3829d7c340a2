// ccw is a developer-workstation orchestrator for agent-driven coding
// workflows: it records session/task/review state to disk, streams live
// updates to a local dashboard, and exposes a tool-calling surface to an
// external AI agent process.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ccw",
	Short: "Orchestrator for agent-driven coding workflows",
	Long: `ccw records the lifecycle of multi-turn AI coding sessions (plans,
tasks, reviews, fix cycles), streams live state to a local dashboard, and
exposes a JSON-RPC tool-calling surface to an external AI agent process.`,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(viewCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
