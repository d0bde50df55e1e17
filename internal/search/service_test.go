package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/request"
	"github.com/aconic-ni/customspayapp/internal/resolution"
	dErrors "github.com/aconic-ni/customspayapp/pkg/domain-errors"
	"github.com/aconic-ni/customspayapp/pkg/requestcontext"
)

type SearchServiceSuite struct {
	suite.Suite
	store       *request.MemoryStore
	resolutions *resolution.MemoryStore
	svc         *Service
	tracker     *resolution.Tracker
	now         time.Time
}

func TestSearchServiceSuite(t *testing.T) {
	suite.Run(t, new(SearchServiceSuite))
}

func (s *SearchServiceSuite) SetupTest() {
	log := slog.New(slog.DiscardHandler)
	s.now = time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)
	s.store = request.NewMemoryStore()
	s.resolutions = resolution.NewMemoryStore()
	s.svc = NewService(s.store, Modes{DateRange: true, CurrentMonth: true}, log, nil)
	s.tracker = resolution.NewTracker(s.resolutions, nil, log, nil)
}

func (s *SearchServiceSuite) ctx(id authz.Identity) context.Context {
	ctx := requestcontext.WithIdentity(context.Background(), id)
	return requestcontext.WithTime(ctx, s.now)
}

func (s *SearchServiceSuite) seed(id, tracking string, amount float64, currency, savedBy string) {
	s.store.Put(request.StoredRecord{ID: id, Fields: map[string]any{
		"trackingNumber": tracking,
		"amount":         amount,
		"amountCurrency": currency,
		"savedBy":        savedBy,
		"requestDate":    s.now.Format(time.RFC3339),
	}})
}

func (s *SearchServiceSuite) TestTodaySearchWithDuplicates() {
	s.seed("a", "NX1001", 500, "dolar", "maria@example.com")
	s.seed("b", "NX1001", 500, "dolar", "maria@example.com")
	s.seed("c", "NX2002", 900, "cordoba", "jose@example.com")

	rater := authz.Identity{Email: "rater@example.com", Role: authz.RoleRater}
	session, err := s.svc.Search(s.ctx(rater), s.tracker, nil, Input{Mode: ModeToday})
	s.Require().NoError(err)

	s.Len(session.Records, 3)
	s.Require().Len(session.Groups, 1)
	s.Equal("NX1001-500-dolar", session.Groups[0].Key)
	s.Equal("10 Jan 2025", session.Term)
	s.Equal(ModeToday, session.Mode)
}

func (s *SearchServiceSuite) TestSelfReviewerSeesOnlyOwnRecords() {
	s.seed("a", "NX1001", 500, "dolar", "self@example.com")
	s.seed("b", "NX2002", 900, "cordoba", "other@example.com")

	self := authz.Identity{Email: "self@example.com", Role: authz.RoleSelfReviewer}
	session, err := s.svc.Search(s.ctx(self), s.tracker, nil, Input{Mode: ModeToday})
	s.Require().NoError(err)
	s.Require().Len(session.Records, 1)
	s.Equal("a", session.Records[0].ID)
}

func (s *SearchServiceSuite) TestCommentCountsHydrated() {
	s.seed("a", "NX1001", 500, "dolar", "maria@example.com")
	_, err := s.store.AppendComment(context.Background(), "a", "note", "maria@example.com")
	s.Require().NoError(err)

	rater := authz.Identity{Email: "rater@example.com", Role: authz.RoleRater}
	session, err := s.svc.Search(s.ctx(rater), s.tracker, nil, Input{Mode: ModeToday})
	s.Require().NoError(err)
	s.Require().Len(session.Records, 1)
	s.Equal(1, session.Records[0].CommentsCount)
}

func (s *SearchServiceSuite) TestResolutionSurvivesReSearch() {
	s.seed("a", "NX1001", 500, "dolar", "maria@example.com")
	s.seed("b", "NX1001", 500, "dolar", "maria@example.com")

	rater := authz.Identity{Email: "rater@example.com", Role: authz.RoleRater}
	session, err := s.svc.Search(s.ctx(rater), s.tracker, nil, Input{Mode: ModeToday})
	s.Require().NoError(err)
	s.Require().Len(session.Groups, 1)

	_, err = s.tracker.Resolve(s.ctx(rater), session.Groups[0], resolution.StatusValidatedNotDuplicate)
	s.Require().NoError(err)

	// A fresh search clears the session tier, but the durable record keeps
	// the alert suppressed.
	session, err = s.svc.Search(s.ctx(rater), s.tracker, nil, Input{Mode: ModeToday})
	s.Require().NoError(err)
	s.Require().Len(session.Groups, 1)
	s.Empty(session.UnresolvedGroups(s.tracker.IsResolved))
}

func (s *SearchServiceSuite) TestPreserveFiltersCarriesFilterSet() {
	s.seed("a", "NX1001", 500, "dolar", "maria@example.com")

	rater := authz.Identity{Email: "rater@example.com", Role: authz.RoleRater}
	first, err := s.svc.Search(s.ctx(rater), s.tracker, nil, Input{Mode: ModeToday})
	s.Require().NoError(err)
	first.Filters = Filters{Consignee: "blue"}

	second, err := s.svc.Search(s.ctx(rater), s.tracker, first, Input{Mode: ModeToday, PreserveFilters: true})
	s.Require().NoError(err)
	s.Equal(Filters{Consignee: "blue"}, second.Filters)

	third, err := s.svc.Search(s.ctx(rater), s.tracker, second, Input{Mode: ModeToday})
	s.Require().NoError(err)
	s.Equal(Filters{}, third.Filters)
}

func (s *SearchServiceSuite) TestValidationErrorsPropagate() {
	rater := authz.Identity{Email: "rater@example.com", Role: authz.RoleRater}
	_, err := s.svc.Search(s.ctx(rater), s.tracker, nil, Input{Mode: ModeSpecificDate})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *SearchServiceSuite) TestEmptyWindow() {
	rater := authz.Identity{Email: "rater@example.com", Role: authz.RoleRater}
	session, err := s.svc.Search(s.ctx(rater), s.tracker, nil, Input{
		Mode: ModeSpecificDate,
		Date: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	s.Empty(session.Records)
	s.Empty(session.Groups)
	s.Equal("01 Jun 2020", session.Term)
}
