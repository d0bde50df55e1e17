package request

import (
	"context"
	"time"
)

// QueryPlan is a fully resolved store query: an inclusive request-date window,
// an optional ownership predicate, and the sort direction. Plans are built by
// the search planner; stores execute them verbatim.
type QueryPlan struct {
	From time.Time
	To   time.Time

	// OwnedBy restricts results to records saved by one of these identities.
	// Empty means no ownership predicate.
	OwnedBy []string

	SortDescending bool
}

// FieldUpdate names the document fields a partial write sets.
type FieldUpdate map[string]any

// Store is the persistence port for check payment requests and their
// comments. Implementations translate backend failures into the
// pkg/platform/sentinel errors so callers can classify without knowing the
// backend.
type Store interface {
	// Query returns the raw documents matching the plan, sorted by request
	// date according to the plan.
	Query(ctx context.Context, plan QueryPlan) ([]StoredRecord, error)

	// Get returns a single document or sentinel.ErrNotFound.
	Get(ctx context.Context, id string) (StoredRecord, error)

	// UpdateFields merges the given fields into the document. For every field
	// written the store also stamps "<field>UpdatedAt" with a server-assigned
	// timestamp and "<field>UpdatedBy" with the writer identity. The assigned
	// stamp is returned so callers can mirror it locally.
	UpdateFields(ctx context.Context, id string, fields FieldUpdate, writer string) (time.Time, error)

	// Delete removes the document and its comments.
	Delete(ctx context.Context, id string) error

	// ListComments returns the record's comments ordered by creation ascending.
	ListComments(ctx context.Context, recordID string) ([]Comment, error)

	// CountComments returns the number of comments without loading bodies.
	CountComments(ctx context.Context, recordID string) (int, error)

	// AppendComment adds a comment with a server-assigned id and timestamp.
	AppendComment(ctx context.Context, recordID, body, author string) (Comment, error)
}
