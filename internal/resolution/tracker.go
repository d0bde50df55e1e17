package resolution

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aconic-ni/customspayapp/internal/audit"
	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/platform/metrics"
	"github.com/aconic-ni/customspayapp/internal/request"
	dErrors "github.com/aconic-ni/customspayapp/pkg/domain-errors"
	"github.com/aconic-ni/customspayapp/pkg/requestcontext"
)

// Outcome reports what a Resolve call did.
type Outcome struct {
	// AlreadyResolved is true when the key was permanently settled before the
	// call; no new record was written.
	AlreadyResolved bool `json:"alreadyResolved"`
	Record          Record `json:"record"`
}

// Tracker keeps one caller's view of which duplicate keys are settled. It
// holds two tiers: session marks, cleared when a fresh search starts, and
// durable marks loaded from the store. A key is effectively resolved when
// either tier has it, and the durable tier only ever grows within a tracker's
// lifetime, so a key observed as permanently resolved never flips back.
type Tracker struct {
	store   Store
	audit   audit.Emitter
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	session map[string]struct{}
	durable map[string]struct{}
}

func NewTracker(store Store, emitter audit.Emitter, logger *slog.Logger, m *metrics.Metrics) *Tracker {
	if emitter == nil {
		emitter = audit.Discard{}
	}
	return &Tracker{
		store:   store,
		audit:   emitter,
		logger:  logger,
		metrics: m,
		session: make(map[string]struct{}),
		durable: make(map[string]struct{}),
	}
}

// ResetSession drops the session tier. Called when a fresh search starts
// without filter preservation; the durable tier is untouched.
func (t *Tracker) ResetSession() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = make(map[string]struct{})
}

// Load refreshes the durable tier from the store. Existing durable marks are
// kept even if the store response no longer carries them, keeping the tier
// monotonic for the tracker's lifetime.
func (t *Tracker) Load(ctx context.Context) error {
	records, err := t.store.List(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not load resolved duplicate alerts")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		t.durable[rec.DuplicateKey] = struct{}{}
	}
	return nil
}

// IsResolved reports whether the key is settled in either tier.
func (t *Tracker) IsResolved(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, inSession := t.session[key]
	_, inDurable := t.durable[key]
	return inSession || inDurable
}

// Effective returns the reconciled set of resolved keys.
func (t *Tracker) Effective() map[string]struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Reconcile(t.session, t.durable)
}

// Reconcile merges the session and durable tiers into the effective resolved
// set. Pure; exposed for direct testing.
func Reconcile(session, durable map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(session)+len(durable))
	for k := range session {
		out[k] = struct{}{}
	}
	for k := range durable {
		out[k] = struct{}{}
	}
	return out
}

// Resolve records the caller's decision for a duplicate group. Rater-only.
// If the key is already permanently resolved the call is an idempotent no-op
// that still marks the session tier. On store failure no tier changes, so the
// alert stays visible for a retry.
func (t *Tracker) Resolve(ctx context.Context, group request.DuplicateGroup, status Status) (Outcome, error) {
	identity := requestcontext.Identity(ctx)
	if !authz.Resolve(identity).CanRate {
		return Outcome{}, dErrors.New(dErrors.CodePermissionDenied, "only raters can resolve duplicate alerts")
	}
	if !status.Valid() {
		return Outcome{}, dErrors.Newf(dErrors.CodeValidation, "unknown resolution status %q", status)
	}
	if group.Key == "" {
		return Outcome{}, dErrors.New(dErrors.CodeValidation, "a duplicate key is required")
	}

	t.mu.Lock()
	if _, done := t.durable[group.Key]; done {
		t.session[group.Key] = struct{}{}
		t.mu.Unlock()
		t.metrics.IncResolution("already_resolved")
		return Outcome{AlreadyResolved: true}, nil
	}
	t.mu.Unlock()

	stored, err := t.store.Append(ctx, Record{
		DuplicateKey:   group.Key,
		DuplicateIDs:   group.IDs,
		TrackingNumber: request.TrackingFromKey(group.Key),
		Status:         status,
		ResolvedBy:     identity.Email,
	})
	if err != nil {
		t.metrics.IncResolution("failed")
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not record the resolution")
	}

	t.mu.Lock()
	t.session[group.Key] = struct{}{}
	t.durable[group.Key] = struct{}{}
	t.mu.Unlock()

	t.metrics.IncResolution(string(status))
	t.audit.Emit(ctx, audit.Event{
		Actor:  identity.Email,
		Action: audit.ActionDuplicateResolved,
		Detail: group.Key + " " + string(status),
	})
	t.logger.Info("duplicate alert resolved",
		slog.String("duplicate_key", group.Key),
		slog.String("status", string(status)),
		slog.String("actor", identity.Email))
	return Outcome{Record: stored}, nil
}
