package store

// taskFilename is the on-disk filename for a task document.
func taskFilename(taskID string) string {
	return taskID + ".json"
}
