package search

import (
	"slices"
	"time"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/request"
)

// Session is one caller's active result set: the records fetched by the last
// search, the duplicate groups found in them, and the filter set currently
// applied on top. Status mutations patch the session copy in place after the
// store write is confirmed, so the table reflects the write without a
// re-fetch.
type Session struct {
	Mode      Mode
	Term      string
	FetchedAt time.Time
	Records   []request.Record
	Groups    []request.DuplicateGroup
	Filters   Filters
}

// Tallies are the pending-work counters shown above the table. They are
// computed over the displayed set, so narrowing the filters narrows the
// counts with it.
type Tallies struct {
	Records              int `json:"records"`
	PaymentPending       int `json:"paymentPending"`
	DocumentsPending     int `json:"documentsPending"`
	NotificationsPending int `json:"notificationsPending"`
}

// Displayed returns the records after the filter chain.
func (s *Session) Displayed(caps authz.Capabilities) []request.Record {
	return Apply(s.Records, s.Filters, caps)
}

// Snapshot returns an owned copy of the displayed records, safe to read after
// the session lock is released. Displayed may return the session's backing
// slice when no filter narrows it, and status writes patch those structs in
// place.
func (s *Session) Snapshot(caps authz.Capabilities) []request.Record {
	return slices.Clone(s.Displayed(caps))
}

// UnresolvedGroups returns the duplicate groups not yet marked resolved.
func (s *Session) UnresolvedGroups(resolved func(key string) bool) []request.DuplicateGroup {
	var out []request.DuplicateGroup
	for _, g := range s.Groups {
		if !resolved(g.Key) {
			out = append(out, g)
		}
	}
	return out
}

// Tally counts the outstanding work in records, normally the displayed set.
func Tally(records []request.Record) Tallies {
	t := Tallies{Records: len(records)}
	for _, r := range records {
		if r.PaymentPending() {
			t.PaymentPending++
		}
		if !r.DocumentReceived {
			t.DocumentsPending++
		}
		if !r.EmailNotified {
			t.NotificationsPending++
		}
	}
	return t
}

// Patch applies a confirmed write to the session copy of a record.
func (s *Session) Patch(id string, apply func(*request.Record)) {
	for i := range s.Records {
		if s.Records[i].ID == id {
			apply(&s.Records[i])
			return
		}
	}
}

// Remove drops a deleted record from the session and recomputes the duplicate
// groups, since the deletion may have dissolved one.
func (s *Session) Remove(id string) {
	kept := s.Records[:0]
	for _, r := range s.Records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.Records = kept
	s.Groups = request.DuplicateGroups(s.Records)
}
