package resolution

import "context"

// Store persists resolution records. Append-only; List returns every record
// ever written, which the tracker collapses into a key set.
type Store interface {
	// List returns all resolution records, oldest first.
	List(ctx context.Context) ([]Record, error)

	// Append persists a record, assigning its id and timestamp, and returns
	// the stored form.
	Append(ctx context.Context, rec Record) (Record, error)
}
