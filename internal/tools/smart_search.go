package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type smartSearchArgs struct {
	Action        string `json:"action"`
	Query         string `json:"query,omitempty"`
	Pattern       string `json:"pattern,omitempty"`
	Path          string `json:"path,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
}

type searchMatch struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// NewSmartSearch returns the smart_search tool handler. It performs a
// plain substring search over file contents ("search") and a regexp
// search over relative file names ("find_files") across the project
// tree — no embedding or vector index is involved.
func NewSmartSearch(projectRoot string) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, *Error) {
		var args smartSearchArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, invalidParams("malformed smart_search arguments: " + err.Error())
		}

		root := projectRoot
		if args.Path != "" {
			abs, ok := resolveWithinRoot(projectRoot, args.Path)
			if !ok {
				return nil, invalidPath("path escapes project root: " + args.Path)
			}
			root = abs
		}

		switch args.Action {
		case "status":
			return map[string]any{"root": projectRoot, "ready": true}, nil

		case "init":
			return map[string]any{"root": projectRoot, "initialized": true}, nil

		case "find_files":
			return findFiles(root, args.Pattern, args.Limit, args.Offset)

		case "search":
			if args.Query == "" {
				return nil, invalidParams("query is required for search")
			}
			return searchContents(root, args.Query, args.CaseSensitive, args.Limit, args.Offset)

		default:
			return nil, invalidParams("action must be one of status, search, find_files, init")
		}
	}
}

func findFiles(root, pattern string, limit, offset int) (any, *Error) {
	var re *regexp.Regexp
	if pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, invalidParams("invalid pattern: " + err.Error())
		}
		re = compiled
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if re == nil || re.MatchString(rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Kind: KindStore, Message: "walk failed: " + err.Error()}
	}

	return map[string]any{"files": paginate(matches, limit, offset), "total": len(matches)}, nil
}

func searchContents(root, query string, caseSensitive bool, limit, offset int) (any, *Error) {
	needle := query
	if !caseSensitive {
		needle = strings.ToLower(needle)
	}

	var matches []searchMatch
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		for i, line := range strings.Split(string(data), "\n") {
			haystack := line
			if !caseSensitive {
				haystack = strings.ToLower(haystack)
			}
			if strings.Contains(haystack, needle) {
				matches = append(matches, searchMatch{File: rel, Line: i + 1, Text: strings.TrimSpace(line)})
			}
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Kind: KindStore, Message: "search failed: " + err.Error()}
	}

	return map[string]any{"matches": paginateMatches(matches, limit, offset), "total": len(matches)}, nil
}

func paginate(items []string, limit, offset int) []string {
	if offset > len(items) {
		return []string{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func paginateMatches(items []searchMatch, limit, offset int) []searchMatch {
	if offset > len(items) {
		return []searchMatch{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var smartSearchSchema = Schema{
	Type: "object",
	Properties: map[string]SchemaProperty{
		"action":        {Type: "string", Enum: []string{"status", "search", "find_files", "init"}},
		"query":         {Type: "string"},
		"pattern":       {Type: "string"},
		"path":          {Type: "string"},
		"limit":         {Type: "integer"},
		"offset":        {Type: "integer"},
		"caseSensitive": {Type: "boolean"},
	},
	Required: []string{"action"},
}
