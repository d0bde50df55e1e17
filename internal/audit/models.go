// Package audit records who changed what on a check payment request.
package audit

import "time"

// Actions recorded on the audit trail.
const (
	ActionStatusUpdated     = "status_updated"
	ActionRecordDeleted     = "record_deleted"
	ActionCommentAdded      = "comment_added"
	ActionDuplicateResolved = "duplicate_resolved"
)

// Event is a single audit trail entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	RecordID  string    `json:"recordId,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
