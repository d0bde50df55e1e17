package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: document does not exist in the store
// - ErrPermissionDenied: the store rejected the caller's credentials for this query
// - ErrMissingIndex: the query shape needs a composite index the store does not have
// - ErrUnavailable: store temporarily unreachable; a later retry may succeed
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrMissingIndex     = errors.New("missing index")
	ErrUnavailable      = errors.New("unavailable")
)
