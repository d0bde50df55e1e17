package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aconic-ni/customspayapp/internal/export"
	"github.com/aconic-ni/customspayapp/internal/platform/metrics"
	"github.com/aconic-ni/customspayapp/internal/request"
	"github.com/aconic-ni/customspayapp/internal/resolution"
	"github.com/aconic-ni/customspayapp/internal/search"
	dErrors "github.com/aconic-ni/customspayapp/pkg/domain-errors"
	"github.com/aconic-ni/customspayapp/pkg/requestcontext"

	"github.com/aconic-ni/customspayapp/internal/authz"
)

const dateParam = "2006-01-02"

// Handler wires the HTTP surface to the services.
type Handler struct {
	logger   *slog.Logger
	searches *search.Service
	records  *request.Service
	exporter *export.Serializer
	sessions *SessionRegistry
	metrics  *metrics.Metrics
}

func NewHandler(logger *slog.Logger, searches *search.Service, records *request.Service,
	exporter *export.Serializer, sessions *SessionRegistry, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		searches: searches,
		records:  records,
		exporter: exporter,
		sessions: sessions,
		metrics:  m,
	}
}

// sessionView is the JSON shape of a caller's active session.
type sessionView struct {
	Mode            search.Mode              `json:"mode"`
	Term            string                   `json:"term"`
	FetchedAt       time.Time                `json:"fetchedAt"`
	Records         []request.Record         `json:"records"`
	Tallies         search.Tallies           `json:"tallies"`
	DuplicateAlerts []request.DuplicateGroup `json:"duplicateAlerts"`
	Filters         search.Filters           `json:"filters"`
}

func (h *Handler) view(cs *callerState, caps authz.Capabilities) sessionView {
	s := cs.session
	displayed := s.Displayed(caps)
	return sessionView{
		Mode:            s.Mode,
		Term:            s.Term,
		FetchedAt:       s.FetchedAt,
		Records:         displayed,
		Tallies:         search.Tally(displayed),
		DuplicateAlerts: s.UnresolvedGroups(cs.tracker.IsResolved),
		Filters:         s.Filters,
	}
}

type searchBody struct {
	Mode            search.Mode `json:"mode"`
	Date            string      `json:"date,omitempty"`
	RangeStart      string      `json:"rangeStart,omitempty"`
	RangeEnd        string      `json:"rangeEnd,omitempty"`
	PreserveFilters bool        `json:"preserveFilters,omitempty"`
}

// Search runs a search and replaces the caller's active session.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	in := search.Input{Mode: body.Mode, PreserveFilters: body.PreserveFilters}
	var err error
	if in.Date, err = parseDate(body.Date); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if in.RangeStart, err = parseDate(body.RangeStart); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if in.RangeEnd, err = parseDate(body.RangeEnd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	identity := requestcontext.Identity(r.Context())
	cs := h.sessions.state(identity.Email)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	session, err := h.searches.Search(r.Context(), cs.tracker, cs.session, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	cs.session = session
	writeJSON(w, http.StatusOK, h.view(cs, authz.Resolve(identity)))
}

// Session renders the caller's active session without re-fetching.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	identity := requestcontext.Identity(r.Context())
	cs := h.sessions.state(identity.Email)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.session == nil {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeNotFound, "no active search session"))
		return
	}
	writeJSON(w, http.StatusOK, h.view(cs, authz.Resolve(identity)))
}

// SetFilters replaces the session's filter set and returns the new view.
func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var filters search.Filters
	if err := decodeBody(r, &filters); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	identity := requestcontext.Identity(r.Context())
	cs := h.sessions.state(identity.Email)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.session == nil {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeNotFound, "no active search session"))
		return
	}
	cs.session.Filters = filters
	writeJSON(w, http.StatusOK, h.view(cs, authz.Resolve(identity)))
}

// GetRecord returns one record with its comment count.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type paymentStatusBody struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SetPaymentStatus updates the payment status and patches the session copy.
func (h *Handler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var body paymentStatusBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id := chi.URLParam(r, "id")

	var stamp request.Stamp
	var value string
	var err error
	switch body.Status {
	case "pending":
		value = ""
		stamp, err = h.records.SetPaymentStatus(r.Context(), id, value)
	case "paid":
		value = request.PaymentStatusPaid
		stamp, err = h.records.SetPaymentStatus(r.Context(), id, value)
	case "error":
		value = request.PaymentErrorPrefix + body.Message
		stamp, err = h.records.ReportPaymentError(r.Context(), id, body.Message)
	default:
		err = dErrors.Newf(dErrors.CodeValidation, "unknown payment status %q", body.Status)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.patchSession(r, id, func(rec *request.Record) {
		rec.PaymentStatus = value
		rec.PaymentStatusUpdatedAt = stamp.At
		rec.PaymentStatusUpdatedBy = stamp.By
	})
	writeJSON(w, http.StatusOK, stamp)
}

type documentReceivedBody struct {
	Received bool `json:"received"`
}

func (h *Handler) SetDocumentReceived(w http.ResponseWriter, r *http.Request) {
	var body documentReceivedBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id := chi.URLParam(r, "id")
	stamp, err := h.records.SetDocumentReceived(r.Context(), id, body.Received)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.patchSession(r, id, func(rec *request.Record) {
		rec.DocumentReceived = body.Received
		rec.DocumentReceivedUpdatedAt = stamp.At
		rec.DocumentReceivedUpdatedBy = stamp.By
	})
	writeJSON(w, http.StatusOK, stamp)
}

type emailNotifiedBody struct {
	Notified bool `json:"notified"`
}

func (h *Handler) SetEmailNotified(w http.ResponseWriter, r *http.Request) {
	var body emailNotifiedBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id := chi.URLParam(r, "id")
	stamp, err := h.records.SetEmailNotified(r.Context(), id, body.Notified)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.patchSession(r, id, func(rec *request.Record) {
		rec.EmailNotified = body.Notified
		rec.EmailNotifiedUpdatedAt = stamp.At
		rec.EmailNotifiedUpdatedBy = stamp.By
	})
	writeJSON(w, http.StatusOK, stamp)
}

// DeleteRecord removes a record and drops it from the session.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.records.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	identity := requestcontext.Identity(r.Context())
	cs := h.sessions.state(identity.Email)
	cs.mu.Lock()
	if cs.session != nil {
		cs.session.Remove(id)
	}
	cs.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// ListComments returns a record's comments, oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.records.Comments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if comments == nil {
		comments = []request.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

type commentBody struct {
	Body string `json:"body"`
}

// AddComment appends a comment and bumps the session copy's count.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id := chi.URLParam(r, "id")
	comment, err := h.records.AddComment(r.Context(), id, body.Body)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.patchSession(r, id, func(rec *request.Record) {
		rec.CommentsCount++
	})
	writeJSON(w, http.StatusCreated, comment)
}

type resolveBody struct {
	Key    string            `json:"key"`
	Status resolution.Status `json:"status"`
}

// ResolveDuplicate records a decision for a duplicate alert in the caller's
// active session.
func (h *Handler) ResolveDuplicate(w http.ResponseWriter, r *http.Request) {
	var body resolveBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	identity := requestcontext.Identity(r.Context())
	cs := h.sessions.state(identity.Email)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.session == nil {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeNotFound, "no active search session"))
		return
	}

	var group *request.DuplicateGroup
	for i := range cs.session.Groups {
		if cs.session.Groups[i].Key == body.Key {
			group = &cs.session.Groups[i]
			break
		}
	}
	if group == nil {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeNotFound, "no duplicate alert with that key in the active session"))
		return
	}

	outcome, err := cs.tracker.Resolve(r.Context(), *group, body.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// Export streams the displayed records of the active session as a workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	identity := requestcontext.Identity(r.Context())
	cs := h.sessions.state(identity.Email)
	cs.mu.Lock()
	if cs.session == nil {
		cs.mu.Unlock()
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeNotFound, "no active search session"))
		return
	}
	displayed := cs.session.Snapshot(authz.Resolve(identity))
	mode, term := cs.session.Mode, cs.session.Term
	cs.mu.Unlock()

	filename := export.Filename(mode, term, requestcontext.Now(r.Context()))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := h.exporter.WriteWorkbook(r.Context(), w, displayed); err != nil {
		h.logger.Error("export failed",
			slog.String("request_id", requestcontext.RequestID(r.Context())),
			slog.String("error", err.Error()))
		return
	}
	h.metrics.ObserveExport(len(displayed))
}

// patchSession applies a confirmed write to the caller's session copy, if a
// session holds the record.
func (h *Handler) patchSession(r *http.Request, id string, apply func(*request.Record)) {
	identity := requestcontext.Identity(r.Context())
	cs := h.sessions.state(identity.Email)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.session != nil {
		cs.session.Patch(id, apply)
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateParam, s)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
