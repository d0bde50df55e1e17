package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aconic-ni/customspayapp/internal/audit"
	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/platform/metrics"
	dErrors "github.com/aconic-ni/customspayapp/pkg/domain-errors"
	"github.com/aconic-ni/customspayapp/pkg/platform/sentinel"
	"github.com/aconic-ni/customspayapp/pkg/requestcontext"
)

// Stamp mirrors the server-assigned write metadata so callers can update
// their local copy of a record without re-running the search.
type Stamp struct {
	At time.Time `json:"at"`
	By string    `json:"by"`
}

// Service owns single-record reads and mutations: status updates, comments,
// and admin deletion. Result-set concerns (search, filters, duplicates) live
// in internal/search.
type Service struct {
	store   Store
	audit   audit.Emitter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, emitter audit.Emitter, logger *slog.Logger, m *metrics.Metrics) *Service {
	if emitter == nil {
		emitter = audit.Discard{}
	}
	return &Service{store: store, audit: emitter, logger: logger, metrics: m}
}

// Get returns one normalized record with its comment count hydrated.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, coerce(err)
	}
	rec := Normalize(doc)
	if n, err := s.store.CountComments(ctx, id); err == nil {
		rec.CommentsCount = n
	} else {
		s.logger.Warn("comment count failed", slog.String("record_id", id), slog.String("error", err.Error()))
	}
	return rec, nil
}

// SetPaymentStatus writes the payment status field. Accepted values are the
// empty string (back to pending), "Paid", and error notes carrying the
// "Error: " prefix.
func (s *Service) SetPaymentStatus(ctx context.Context, id, status string) (Stamp, error) {
	if err := s.requireRater(ctx); err != nil {
		return Stamp{}, err
	}
	if status != "" && status != PaymentStatusPaid && !strings.HasPrefix(status, PaymentErrorPrefix) {
		return Stamp{}, dErrors.Newf(dErrors.CodeValidation,
			"payment status must be empty, %q, or start with %q", PaymentStatusPaid, PaymentErrorPrefix)
	}
	return s.write(ctx, id, "paymentStatus", status, status)
}

// ReportPaymentError records a rater-entered payment failure note.
func (s *Service) ReportPaymentError(ctx context.Context, id, message string) (Stamp, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Stamp{}, dErrors.New(dErrors.CodeValidation, "an error note needs a message")
	}
	return s.SetPaymentStatus(ctx, id, PaymentErrorPrefix+message)
}

// SetDocumentReceived toggles the document-received flag.
func (s *Service) SetDocumentReceived(ctx context.Context, id string, received bool) (Stamp, error) {
	if err := s.requireRater(ctx); err != nil {
		return Stamp{}, err
	}
	return s.write(ctx, id, "documentReceived", received, fmt.Sprintf("%t", received))
}

// SetEmailNotified toggles the notification-sent flag.
func (s *Service) SetEmailNotified(ctx context.Context, id string, notified bool) (Stamp, error) {
	if err := s.requireRater(ctx); err != nil {
		return Stamp{}, err
	}
	return s.write(ctx, id, "emailNotified", notified, fmt.Sprintf("%t", notified))
}

func (s *Service) write(ctx context.Context, id, field string, value any, detail string) (Stamp, error) {
	actor := requestcontext.Identity(ctx).Email
	at, err := s.store.UpdateFields(ctx, id, FieldUpdate{field: value}, actor)
	if err != nil {
		return Stamp{}, coerce(err)
	}
	s.metrics.IncStatusUpdate(field)
	s.audit.Emit(ctx, audit.Event{
		Actor:    actor,
		Action:   audit.ActionStatusUpdated,
		RecordID: id,
		Detail:   field + "=" + detail,
	})
	s.logger.Info("record status updated",
		slog.String("record_id", id),
		slog.String("field", field),
		slog.String("actor", actor))
	return Stamp{At: at, By: actor}, nil
}

// Delete removes a record permanently. Admin only.
func (s *Service) Delete(ctx context.Context, id string) error {
	identity := requestcontext.Identity(ctx)
	if !authz.Resolve(identity).CanDelete {
		return dErrors.New(dErrors.CodePermissionDenied, "only administrators can delete records")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return coerce(err)
	}
	s.metrics.IncRecordDeleted()
	s.audit.Emit(ctx, audit.Event{
		Actor:    identity.Email,
		Action:   audit.ActionRecordDeleted,
		RecordID: id,
	})
	s.logger.Info("record deleted",
		slog.String("record_id", id),
		slog.String("actor", identity.Email))
	return nil
}

// Comments returns a record's comments, oldest first.
func (s *Service) Comments(ctx context.Context, id string) ([]Comment, error) {
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, coerce(err)
	}
	return comments, nil
}

// AddComment appends a comment authored by the caller.
func (s *Service) AddComment(ctx context.Context, id, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, dErrors.New(dErrors.CodeValidation, "a comment needs a body")
	}
	actor := requestcontext.Identity(ctx).Email
	comment, err := s.store.AppendComment(ctx, id, body, actor)
	if err != nil {
		return Comment{}, coerce(err)
	}
	s.audit.Emit(ctx, audit.Event{
		Actor:    actor,
		Action:   audit.ActionCommentAdded,
		RecordID: id,
	})
	return comment, nil
}

func (s *Service) requireRater(ctx context.Context) error {
	if !authz.Resolve(requestcontext.Identity(ctx)).CanRate {
		return dErrors.New(dErrors.CodePermissionDenied, "only raters can update record statuses")
	}
	return nil
}

// coerce translates store sentinels into coded errors at the service boundary.
func coerce(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "record not found")
	case errors.Is(err, sentinel.ErrPermissionDenied):
		return dErrors.Wrap(err, dErrors.CodePermissionDenied, "the store refused the operation")
	case errors.Is(err, sentinel.ErrMissingIndex):
		return dErrors.Wrap(err, dErrors.CodeMissingIndex, "the store needs an index for this query")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "the store is temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "store operation failed")
	}
}
