package request

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aconic-ni/customspayapp/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]map[string]any
	comments map[string][]Comment
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]map[string]any),
		comments: make(map[string][]Comment),
		now:      time.Now,
	}
}

// WithClock overrides the server-timestamp source. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Put inserts or replaces a document. Used by tests and dev seeding; not part
// of the Store interface.
func (s *MemoryStore) Put(doc StoredRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]any, len(doc.Fields))
	for k, v := range doc.Fields {
		cp[k] = v
	}
	s.docs[doc.ID] = cp
}

func (s *MemoryStore) Query(_ context.Context, plan QueryPlan) ([]StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []StoredRecord
	for id, fields := range s.docs {
		when := optTime(fields, "requestDate")
		if when.Before(plan.From) || when.After(plan.To) {
			continue
		}
		if len(plan.OwnedBy) > 0 && !contains(plan.OwnedBy, optString(fields, "savedBy")) {
			continue
		}
		out = append(out, StoredRecord{ID: id, Fields: copyFields(fields)})
	}

	sort.Slice(out, func(i, j int) bool {
		ti := optTime(out[i].Fields, "requestDate")
		tj := optTime(out[j].Fields, "requestDate")
		if ti.Equal(tj) {
			return out[i].ID < out[j].ID
		}
		if plan.SortDescending {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.docs[id]
	if !ok {
		return StoredRecord{}, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	return StoredRecord{ID: id, Fields: copyFields(fields)}, nil
}

func (s *MemoryStore) UpdateFields(_ context.Context, id string, fields FieldUpdate, writer string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return time.Time{}, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	stamp := s.now().UTC()
	for k, v := range fields {
		doc[k] = v
		doc[k+"UpdatedAt"] = stamp.Format(time.RFC3339Nano)
		doc[k+"UpdatedBy"] = writer
	}
	return stamp, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.docs, id)
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) ListComments(_ context.Context, recordID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Comment, len(s.comments[recordID]))
	copy(out, s.comments[recordID])
	return out, nil
}

func (s *MemoryStore) CountComments(_ context.Context, recordID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments[recordID]), nil
}

func (s *MemoryStore) AppendComment(_ context.Context, recordID, body, author string) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[recordID]; !ok {
		return Comment{}, fmt.Errorf("request %s: %w", recordID, sentinel.ErrNotFound)
	}
	c := Comment{
		ID:          uuid.NewString(),
		RecordID:    recordID,
		AuthorEmail: author,
		Body:        body,
		CreatedAt:   s.now().UTC(),
	}
	s.comments[recordID] = append(s.comments[recordID], c)
	return c, nil
}

func copyFields(fields map[string]any) map[string]any {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return cp
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
