// Package resolution records decisions raters take on duplicate alerts and
// tracks which alerts are already settled, within a session and permanently.
package resolution

import "time"

// Status is the decision a rater recorded for a duplicate group.
type Status string

const (
	// StatusValidatedNotDuplicate marks the group as a reviewed false alarm.
	StatusValidatedNotDuplicate Status = "validated_not_duplicate"
	// StatusDeletionRequested marks the group as a real duplicate whose
	// redundant records should be removed.
	StatusDeletionRequested Status = "deletion_requested"
)

func (s Status) Valid() bool {
	return s == StatusValidatedNotDuplicate || s == StatusDeletionRequested
}

// Record is one persisted resolution. The store is append-only: a key may
// accumulate several records over time, and any of them makes the key
// permanently resolved.
type Record struct {
	ID             string    `json:"id"`
	DuplicateKey   string    `json:"duplicateKey"`
	DuplicateIDs   []string  `json:"duplicateIds"`
	TrackingNumber string    `json:"trackingNumber"`
	Status         Status    `json:"status"`
	ResolvedBy     string    `json:"resolvedBy"`
	ResolvedAt     time.Time `json:"resolvedAt"`
}
