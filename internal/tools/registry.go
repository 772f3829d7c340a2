package tools

import "github.com/ccwio/ccw/internal/store"

// NewRegistry builds the full tool catalog, wiring each handler to the
// given Store, project root, and outline parser.
func NewRegistry(s *store.Store, projectRoot string, parser OutlineParser) []Tool {
	if parser == nil {
		parser = StubOutlineParser{}
	}
	return []Tool{
		{
			Name:        "session_manager",
			Description: "Create, read, update, archive, and list workflow sessions and their child entities.",
			InputSchema: sessionManagerSchema,
			Handle:      NewSessionManager(s),
		},
		{
			Name:        "write_file",
			Description: "Atomically create or replace a file within the project root.",
			InputSchema: writeFileSchema,
			Handle:      NewWriteFile(projectRoot),
		},
		{
			Name:        "edit_file",
			Description: "Replace, insert after, or delete a single occurrence of text in a file.",
			InputSchema: editFileSchema,
			Handle:      NewEditFile(projectRoot),
		},
		{
			Name:        "smart_search",
			Description: "Search file names and contents across the project tree.",
			InputSchema: smartSearchSchema,
			Handle:      NewSmartSearch(projectRoot),
		},
		{
			Name:        "outline",
			Description: "Parse a file into a symbol outline.",
			InputSchema: outlineSchema,
			Handle:      NewOutline(projectRoot, parser),
		},
	}
}
