// Package journal records version operations to the filesystem, one JSON
// file per operation, so a pipeline TD can answer "what happened to this
// file" without a database.
package journal

import "time"

// OperationType represents the type of operation.
type OperationType string

const (
	// OpCommit represents archiving a working file into its versions folder.
	OpCommit OperationType = "commit"
	// OpRestore represents copying a version back out of the archive.
	OpRestore OperationType = "restore"
	// OpPublish represents promoting a file into the publish folder.
	OpPublish OperationType = "publish"
	// OpPreview represents placing a file into the preview folder.
	OpPreview OperationType = "preview"
)

// Entry represents a single journal entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Source    string        `json:"source"`
	Target    string        `json:"target"`
	Version   int           `json:"version,omitempty"`
	State     string        `json:"state,omitempty"`
}
