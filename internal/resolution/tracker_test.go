package resolution

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/request"
	dErrors "github.com/aconic-ni/customspayapp/pkg/domain-errors"
	"github.com/aconic-ni/customspayapp/pkg/requestcontext"
)

type TrackerSuite struct {
	suite.Suite
	store   *MemoryStore
	tracker *Tracker
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.tracker = NewTracker(s.store, nil, slog.New(slog.DiscardHandler), nil)
}

func asRater() context.Context {
	return requestcontext.WithIdentity(context.Background(), authz.Identity{
		Email: "rater@example.com",
		Role:  authz.RoleRater,
	})
}

func asReviewer() context.Context {
	return requestcontext.WithIdentity(context.Background(), authz.Identity{
		Email: "reviewer@example.com",
		Role:  authz.RoleReviewer,
	})
}

var group = request.DuplicateGroup{Key: "NX1001-500-dolar", IDs: []string{"a", "b"}}

func (s *TrackerSuite) TestResolvePersists() {
	outcome, err := s.tracker.Resolve(asRater(), group, StatusValidatedNotDuplicate)
	s.Require().NoError(err)
	s.False(outcome.AlreadyResolved)
	s.Equal("NX1001-500-dolar", outcome.Record.DuplicateKey)
	s.Equal([]string{"a", "b"}, outcome.Record.DuplicateIDs)
	s.Equal("NX1001", outcome.Record.TrackingNumber)
	s.Equal("rater@example.com", outcome.Record.ResolvedBy)
	s.NotEmpty(outcome.Record.ID)
	s.False(outcome.Record.ResolvedAt.IsZero())

	s.True(s.tracker.IsResolved(group.Key))

	records, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *TrackerSuite) TestResolveIdempotentOncePermanent() {
	_, err := s.tracker.Resolve(asRater(), group, StatusValidatedNotDuplicate)
	s.Require().NoError(err)

	outcome, err := s.tracker.Resolve(asRater(), group, StatusDeletionRequested)
	s.Require().NoError(err)
	s.True(outcome.AlreadyResolved)

	records, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Len(records, 1, "no second record written")
}

func (s *TrackerSuite) TestResolveRaterOnly() {
	_, err := s.tracker.Resolve(asReviewer(), group, StatusValidatedNotDuplicate)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	s.False(s.tracker.IsResolved(group.Key))
}

func (s *TrackerSuite) TestResolveValidation() {
	_, err := s.tracker.Resolve(asRater(), group, Status("maybe"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.tracker.Resolve(asRater(), request.DuplicateGroup{}, StatusValidatedNotDuplicate)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

type failingStore struct{}

func (failingStore) List(context.Context) ([]Record, error) {
	return nil, errors.New("store down")
}

func (failingStore) Append(context.Context, Record) (Record, error) {
	return Record{}, errors.New("store down")
}

func (s *TrackerSuite) TestResolveFailureLeavesAlertVisible() {
	tracker := NewTracker(failingStore{}, nil, slog.New(slog.DiscardHandler), nil)

	_, err := tracker.Resolve(asRater(), group, StatusValidatedNotDuplicate)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.False(tracker.IsResolved(group.Key), "failed write must not mark any tier")
}

func (s *TrackerSuite) TestSessionTierClearsDurableDoesNot() {
	_, err := s.tracker.Resolve(asRater(), group, StatusValidatedNotDuplicate)
	s.Require().NoError(err)

	s.tracker.ResetSession()
	s.True(s.tracker.IsResolved(group.Key), "durable tier survives session reset")
}

func (s *TrackerSuite) TestLoadIsMonotonic() {
	_, err := s.store.Append(context.Background(), Record{
		DuplicateKey: "k1", Status: StatusValidatedNotDuplicate, ResolvedBy: "x@example.com",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.tracker.Load(context.Background()))
	s.True(s.tracker.IsResolved("k1"))

	// A later load from an emptier store never regresses the durable tier.
	s.tracker.store = NewMemoryStore()
	s.Require().NoError(s.tracker.Load(context.Background()))
	s.True(s.tracker.IsResolved("k1"))
}

func (s *TrackerSuite) TestLoadFailure() {
	tracker := NewTracker(failingStore{}, nil, slog.New(slog.DiscardHandler), nil)
	err := tracker.Load(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestReconcile(t *testing.T) {
	session := map[string]struct{}{"a": {}, "b": {}}
	durable := map[string]struct{}{"b": {}, "c": {}}

	out := Reconcile(session, durable)
	if len(out) != 3 {
		t.Fatalf("want union of 3 keys, got %d", len(out))
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok := out[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}

	if len(Reconcile(nil, nil)) != 0 {
		t.Error("empty tiers should reconcile to an empty set")
	}
}
