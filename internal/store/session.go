package store

import "time"

// Type identifies what kind of workflow a session represents.
type Type string

const (
	TypeWorkflow     Type = "workflow"
	TypeLitePlan     Type = "lite-plan"
	TypeLiteFix      Type = "lite-fix"
	TypeReview       Type = "review"
	TypeReviewCycle  Type = "review-cycle"
	TypeTestFix      Type = "test-fix"
	TypeFix          Type = "fix"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusArchived     Status = "archived"
	StatusFailed       Status = "failed"
)

// Location names a directory root a session can live under.
type Location string

const (
	LocationActive       Location = "active"
	LocationArchived     Location = "archived"
	LocationLitePlanRoot Location = "lite-plan-root"
	LocationLiteFixRoot  Location = "lite-fix-root"
)

// Session is the top-level unit of a workflow, persisted as
// workflow-session.json inside its session directory.
type Session struct {
	SessionID  string         `json:"sessionId"`
	Type       Type           `json:"type"`
	Status     Status         `json:"status"`
	Location   Location       `json:"location"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	ArchivedAt *time.Time     `json:"archivedAt,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// headerFilename is the session's own descriptor file, read for `list`
// with includeMetadata and rewritten on every session-level mutation.
const headerFilename = "workflow-session.json"

// sessionSubdirs are created empty alongside the header file on init.
var sessionSubdirs = []string{".task", ".summaries", ".process"}

// locationDir maps a Location to its directory name under a root-specific
// parent (active/archives/.lite-plan/.lite-fix), per the on-disk layout.
func locationDir(loc Location) string {
	switch loc {
	case LocationActive:
		return "active"
	case LocationArchived:
		return "archives"
	case LocationLitePlanRoot:
		return ".lite-plan"
	case LocationLiteFixRoot:
		return ".lite-fix"
	default:
		return "active"
	}
}

// defaultLocationForType returns the location a newly-init'd session of
// the given type starts in.
func defaultLocationForType(t Type) Location {
	switch t {
	case TypeLitePlan:
		return LocationLitePlanRoot
	case TypeLiteFix:
		return LocationLiteFixRoot
	default:
		return LocationActive
	}
}
