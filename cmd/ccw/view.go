package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccwio/ccw/internal/locator"
	"github.com/ccwio/ccw/internal/store"
)

var viewPath string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the resolved project location and a session summary",
	Long: `A minimal boundary CLI for inspecting ccw's state without the
dashboard: resolves --path (default: the current directory) to its
ProjectLocation and prints every known session across all locations.`,
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewPath, "path", "", "project root (default: current directory)")
}

func runView(cmd *cobra.Command, args []string) error {
	projectRoot := viewPath
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

	loc, err := locator.Locate(projectRoot)
	if err != nil {
		return fmt.Errorf("locate project: %w", err)
	}

	fmt.Printf("project:     %s\n", loc.ProjectPath)
	fmt.Printf("project id:  %s\n", loc.ProjectID)
	if loc.ParentProjectID != "" {
		fmt.Printf("parent:      %s (%s)\n", loc.ParentProjectID, loc.RelativeFromParent)
	}
	fmt.Printf("state root:  %s\n", loc.StateRoot)

	sessionStore, err := store.New(projectRoot, nil)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	sessions, err := sessionStore.List(store.ListAll, true)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	fmt.Printf("\n%d session(s):\n", len(sessions))
	for _, s := range sessions {
		fmt.Printf("  %-24s %-10s", s.SessionID, s.Location)
		if s.Header != nil {
			fmt.Printf(" type=%s status=%s", s.Header.Type, s.Header.Status)
		}
		fmt.Println()
	}

	return nil
}
