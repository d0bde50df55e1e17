package request

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aconic-ni/customspayapp/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.now = time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)
	s.store = NewMemoryStore().WithClock(func() time.Time { return s.now })
}

func (s *MemoryStoreSuite) seed(id, savedBy string, requestDate time.Time) {
	s.store.Put(StoredRecord{ID: id, Fields: map[string]any{
		"trackingNumber": "NX" + id,
		"savedBy":        savedBy,
		"requestDate":    requestDate.Format(time.RFC3339),
	}})
}

func (s *MemoryStoreSuite) TestQueryWindow() {
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	s.seed("1", "a@example.com", day.Add(9*time.Hour))
	s.seed("2", "a@example.com", day.Add(15*time.Hour))
	s.seed("3", "a@example.com", day.AddDate(0, 0, 1)) // next day

	docs, err := s.store.Query(context.Background(), QueryPlan{
		From:           day,
		To:             day.Add(24*time.Hour - time.Nanosecond),
		SortDescending: true,
	})
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	// Descending by request date.
	s.Equal("2", docs[0].ID)
	s.Equal("1", docs[1].ID)
}

func (s *MemoryStoreSuite) TestQueryOwnership() {
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	s.seed("1", "maria@example.com", day.Add(time.Hour))
	s.seed("2", "jose@example.com", day.Add(2*time.Hour))
	s.seed("3", "ana@example.com", day.Add(3*time.Hour))

	docs, err := s.store.Query(context.Background(), QueryPlan{
		From:    day,
		To:      day.Add(24 * time.Hour),
		OwnedBy: []string{"maria@example.com", "ana@example.com"},
	})
	s.Require().NoError(err)
	s.Len(docs, 2)
}

func (s *MemoryStoreSuite) TestRoundTripThroughNormalize() {
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	s.store.Put(StoredRecord{ID: "r1", Fields: map[string]any{
		"trackingNumber": "NX1001",
		"amount":         float64(500),
		"amountCurrency": "dolar",
		"savedBy":        "maria@example.com",
		"requestDate":    day.Format(time.RFC3339),
		"support":        true,
	}})

	docs, err := s.store.Query(context.Background(), QueryPlan{From: day, To: day.Add(time.Hour)})
	s.Require().NoError(err)
	s.Require().Len(docs, 1)

	rec := Normalize(docs[0])
	s.Equal("NX1001", rec.TrackingNumber)
	s.Require().NotNil(rec.Amount)
	s.Equal(float64(500), *rec.Amount)
	s.True(rec.Support)
	s.True(rec.RequestDate.Equal(day))
}

func (s *MemoryStoreSuite) TestUpdateFieldsStamps() {
	s.seed("r1", "maria@example.com", s.now)

	at, err := s.store.UpdateFields(context.Background(), "r1",
		FieldUpdate{"paymentStatus": PaymentStatusPaid}, "rater@example.com")
	s.Require().NoError(err)
	s.True(at.Equal(s.now))

	doc, err := s.store.Get(context.Background(), "r1")
	s.Require().NoError(err)
	rec := Normalize(doc)
	s.Equal(PaymentStatusPaid, rec.PaymentStatus)
	s.Equal("rater@example.com", rec.PaymentStatusUpdatedBy)
	s.True(rec.PaymentStatusUpdatedAt.Equal(s.now))
}

func (s *MemoryStoreSuite) TestUpdateFieldsMissing() {
	_, err := s.store.UpdateFields(context.Background(), "nope",
		FieldUpdate{"paymentStatus": ""}, "rater@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDelete() {
	s.seed("r1", "maria@example.com", s.now)
	_, err := s.store.AppendComment(context.Background(), "r1", "check this", "maria@example.com")
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(context.Background(), "r1"))

	_, err = s.store.Get(context.Background(), "r1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	n, err := s.store.CountComments(context.Background(), "r1")
	s.Require().NoError(err)
	s.Zero(n)

	s.ErrorIs(s.store.Delete(context.Background(), "r1"), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestComments() {
	s.seed("r1", "maria@example.com", s.now)

	first, err := s.store.AppendComment(context.Background(), "r1", "first", "a@example.com")
	s.Require().NoError(err)
	s.now = s.now.Add(time.Minute)
	_, err = s.store.AppendComment(context.Background(), "r1", "second", "b@example.com")
	s.Require().NoError(err)

	comments, err := s.store.ListComments(context.Background(), "r1")
	s.Require().NoError(err)
	s.Require().Len(comments, 2)
	s.Equal("first", comments[0].Body)
	s.Equal(first.ID, comments[0].ID)
	s.NotEmpty(first.ID)

	n, err := s.store.CountComments(context.Background(), "r1")
	s.Require().NoError(err)
	s.Equal(2, n)

	_, err = s.store.AppendComment(context.Background(), "missing", "x", "a@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
