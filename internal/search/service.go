package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/platform/metrics"
	"github.com/aconic-ni/customspayapp/internal/request"
	"github.com/aconic-ni/customspayapp/internal/resolution"
	dErrors "github.com/aconic-ni/customspayapp/pkg/domain-errors"
	"github.com/aconic-ni/customspayapp/pkg/platform/sentinel"
	"github.com/aconic-ni/customspayapp/pkg/requestcontext"
)

// countConcurrency bounds the comment-count hydration fan-out per search.
const countConcurrency = 8

// Service runs searches: plan, fetch, normalize, hydrate comment counts,
// detect duplicates, and refresh the caller's resolved-alert view.
type Service struct {
	requests request.Store
	modes    Modes
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

func NewService(requests request.Store, modes Modes, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		requests: requests,
		modes:    modes,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("customspayapp/search"),
	}
}

// Modes returns the enabled search modes for capability discovery.
func (s *Service) Modes() Modes { return s.modes }

// Search executes a search and returns the fresh session. When the input
// preserves filters, the previous session's filter set carries over and the
// tracker keeps its session marks; otherwise both start clean. A failed
// tracker load is logged and tolerated: the durable tier may lag, but
// resolution writes are still idempotent against the store.
func (s *Service) Search(ctx context.Context, tracker *resolution.Tracker, prev *Session, in Input) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "search.Search",
		trace.WithAttributes(attribute.String("search.mode", string(in.Mode))))
	defer span.End()

	started := time.Now()
	now := requestcontext.Now(ctx)
	caps := authz.Resolve(requestcontext.Identity(ctx))

	plan, term, err := Plan(caps, in, now, s.modes)
	if err != nil {
		return nil, err
	}

	docs, err := s.requests.Query(ctx, plan)
	if err != nil {
		return nil, coerce(err)
	}

	records := make([]request.Record, len(docs))
	for i, doc := range docs {
		records[i] = request.Normalize(doc)
	}
	s.hydrateCommentCounts(ctx, records)

	groups := request.DuplicateGroups(records)

	if !in.PreserveFilters {
		tracker.ResetSession()
	}
	if err := tracker.Load(ctx); err != nil {
		s.logger.Warn("resolved-alert refresh failed", slog.String("error", err.Error()))
	}

	session := &Session{
		Mode:      in.Mode,
		Term:      term,
		FetchedAt: now,
		Records:   records,
		Groups:    groups,
	}
	if in.PreserveFilters && prev != nil {
		session.Filters = prev.Filters
	}

	span.SetAttributes(
		attribute.Int("search.records", len(records)),
		attribute.Int("search.duplicate_groups", len(groups)),
	)
	s.metrics.ObserveSearch(string(in.Mode), time.Since(started), len(records), len(groups))
	s.logger.Info("search completed",
		slog.String("mode", string(in.Mode)),
		slog.String("term", term),
		slog.Int("records", len(records)),
		slog.Int("duplicate_groups", len(groups)))
	return session, nil
}

// hydrateCommentCounts fills CommentsCount on each record with a bounded
// fan-out. A failed count logs and leaves zero; it never fails the search.
func (s *Service) hydrateCommentCounts(ctx context.Context, records []request.Record) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)
	for i := range records {
		g.Go(func() error {
			n, err := s.requests.CountComments(ctx, records[i].ID)
			if err != nil {
				s.logger.Warn("comment count failed",
					slog.String("record_id", records[i].ID),
					slog.String("error", err.Error()))
				return nil
			}
			records[i].CommentsCount = n
			return nil
		})
	}
	_ = g.Wait()
}

// coerce translates store sentinels into coded errors at the service boundary.
func coerce(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrPermissionDenied):
		return dErrors.Wrap(err, dErrors.CodePermissionDenied, "the store refused the query")
	case errors.Is(err, sentinel.ErrMissingIndex):
		return dErrors.Wrap(err, dErrors.CodeMissingIndex, "the store needs an index for this query")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "the store is temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "search query failed")
	}
}
