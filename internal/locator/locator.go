// Package locator maps a project's filesystem path to the on-disk root
// where ccw persists all session state for that project, detecting
// parent/child nesting between projects along the way.
package locator

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ccwio/ccw/internal/config"
	"github.com/ccwio/ccw/internal/cwlog"
)

// ProjectLocation identifies where a project's session state lives.
type ProjectLocation struct {
	// ProjectPath is the normalized absolute project path this location
	// was computed for.
	ProjectPath string

	// ProjectID is a filesystem-safe slug derived from ProjectPath.
	ProjectID string

	// ParentProjectID is the id of the nearest ancestor project that
	// already has a state directory, or "" if this project is flat.
	ParentProjectID string

	// RelativeFromParent is the forward-slash path fragment from the
	// parent's project path down to this one. Empty when flat.
	RelativeFromParent string

	// StateRoot is the absolute directory under which all session state
	// for this project is persisted.
	StateRoot string
}

var (
	cacheMu sync.RWMutex
	cache   = map[string]ProjectLocation{}
)

// Clear empties the process-wide location cache, forcing the next Locate
// call for every path to recompute from disk.
func Clear() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[string]ProjectLocation{}
}

// Locate resolves projectPath to its ProjectLocation, consulting the
// process-wide cache first. The filesystem is read, never written, except
// for the one-shot flat-to-hierarchical migration described in step 5 of
// the algorithm, which is best-effort and non-fatal on failure.
func Locate(projectPath string) (ProjectLocation, error) {
	norm, err := normalize(projectPath)
	if err != nil {
		return ProjectLocation{}, err
	}

	cacheMu.RLock()
	loc, ok := cache[norm]
	cacheMu.RUnlock()
	if ok {
		return loc, nil
	}

	globalRoot, err := config.Dir()
	if err != nil {
		return ProjectLocation{}, err
	}
	projectsRoot := filepath.Join(globalRoot, "projects")

	loc = ProjectLocation{
		ProjectPath: norm,
		ProjectID:   slugify(norm),
	}

	parentID, relFromParent, parentPath := findAncestorProject(norm, projectsRoot)
	loc.ParentProjectID = parentID
	loc.RelativeFromParent = relFromParent

	if parentID == "" {
		loc.StateRoot = filepath.Join(projectsRoot, loc.ProjectID)
	} else {
		loc.StateRoot = filepath.Join(projectsRoot, parentID, filepath.FromSlash(relFromParent))
		migrateFlatToHierarchical(projectsRoot, loc.ProjectID, loc.StateRoot, parentPath)
	}

	cacheMu.Lock()
	cache[norm] = loc
	cacheMu.Unlock()

	return loc, nil
}

// findAncestorProject walks ancestors of path (deepest first) looking for
// the first one with an existing project directory under projectsRoot.
func findAncestorProject(path, projectsRoot string) (parentID, relativeFromParent, parentPath string) {
	dir := filepath.Dir(path)
	for {
		ancestorID := slugify(dir)
		candidate := filepath.Join(projectsRoot, ancestorID)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err == nil {
				return ancestorID, filepath.ToSlash(rel), dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", ""
		}
		dir = parent
	}
}

// migrateFlatToHierarchical moves a pre-existing flat project directory
// into its newly-discovered hierarchical location. Best-effort: failures
// are logged, never returned, so a permissions error never breaks lookup.
func migrateFlatToHierarchical(projectsRoot, projectID, stateRoot, parentPath string) {
	if parentPath == "" {
		return
	}
	flatRoot := filepath.Join(projectsRoot, projectID)

	flatInfo, err := os.Stat(flatRoot)
	if err != nil || !flatInfo.IsDir() {
		return
	}
	if _, err := os.Stat(stateRoot); err == nil {
		return // hierarchical root already exists, nothing to migrate
	}

	if err := os.MkdirAll(filepath.Dir(stateRoot), 0755); err != nil {
		cwlog.Log.Warn("locator: migration mkdir failed", "stateRoot", stateRoot, "error", err)
		return
	}
	if err := os.Rename(flatRoot, stateRoot); err != nil {
		cwlog.Log.Warn("locator: migration rename failed", "from", flatRoot, "to", stateRoot, "error", err)
		return
	}
	cwlog.Log.Info("locator: migrated flat project to hierarchical root", "from", flatRoot, "to", stateRoot)
}

// normalize resolves path to an absolute, cleaned form. Relative paths are
// resolved against the current working directory.
func normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	abs = strings.TrimRight(abs, string(filepath.Separator))
	if abs == "" {
		abs = string(filepath.Separator)
	}
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		abs = strings.ToLower(abs)
	}
	return abs, nil
}

// slugify replaces path separators and a Windows drive-letter colon with
// "--", producing a filesystem-safe, collision-resistant identifier.
func slugify(path string) string {
	id := strings.ReplaceAll(path, ":", "--")
	id = strings.ReplaceAll(id, string(filepath.Separator), "--")
	id = strings.ReplaceAll(id, "/", "--")
	id = strings.TrimPrefix(id, "--")
	if id == "" {
		id = "root"
	}
	return id
}
