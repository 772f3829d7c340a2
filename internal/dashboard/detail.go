package dashboard

import (
	"fmt"
	"net/url"

	"github.com/ccwio/ccw/internal/store"
)

// contentTypeForDetail maps the session-detail endpoint's "type" query
// param and its accompanying params into a store.ContentType/PathParams
// pair, the same vocabulary session_manager's read operation accepts.
func contentTypeForDetail(kind string, q url.Values) (store.ContentType, store.PathParams, error) {
	switch kind {
	case "session":
		return store.ContentSession, store.PathParams{}, nil
	case "task":
		taskID := q.Get("taskId")
		if taskID == "" {
			return "", store.PathParams{}, fmt.Errorf("taskId is required for type=task")
		}
		return store.ContentTask, store.PathParams{TaskID: taskID}, nil
	case "context":
		return store.ContentContext, store.PathParams{}, nil
	case "plan":
		return store.ContentPlan, store.PathParams{}, nil
	case "review":
		dimension := q.Get("dimension")
		if dimension == "" {
			return "", store.PathParams{}, fmt.Errorf("dimension is required for type=review")
		}
		return store.ContentReview, store.PathParams{Dimension: dimension}, nil
	case "summary":
		filename := q.Get("filename")
		if filename == "" {
			return "", store.PathParams{}, fmt.Errorf("filename is required for type=summary")
		}
		return store.ContentSummary, store.PathParams{Filename: filename}, nil
	default:
		return "", store.PathParams{}, fmt.Errorf("unknown detail type %q", kind)
	}
}
