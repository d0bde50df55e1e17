// Package search turns a caller's search request into a store query plan,
// runs it, and carries the resulting session: normalized records, duplicate
// groups, and the active filter set.
package search

import (
	"time"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/request"
	dErrors "github.com/aconic-ni/customspayapp/pkg/domain-errors"
)

// Mode selects the request-date window of a search.
type Mode string

const (
	ModeToday        Mode = "today"
	ModeSpecificDate Mode = "specific_date"
	ModeDateRange    Mode = "date_range"
	ModeCurrentMonth Mode = "current_month"
)

// Modes flags which optional search modes the deployment has enabled. Today
// and specific-date are always available.
type Modes struct {
	DateRange    bool
	CurrentMonth bool
}

// Input is a caller's search request before planning.
type Input struct {
	Mode       Mode
	Date       time.Time
	RangeStart time.Time
	RangeEnd   time.Time

	// PreserveFilters keeps the previous session's filters and resolved-alert
	// marks across the re-fetch instead of starting clean.
	PreserveFilters bool
}

// Plan validates the input and produces the store query plan plus the
// human-readable term describing the window. The capability descriptor
// decides whether an ownership predicate is attached.
func Plan(caps authz.Capabilities, in Input, now time.Time, modes Modes) (request.QueryPlan, string, error) {
	var from, to time.Time
	var term string

	switch in.Mode {
	case ModeToday:
		from, to = dayBounds(now)
		term = now.Format("02 Jan 2006")
	case ModeSpecificDate:
		if in.Date.IsZero() {
			return request.QueryPlan{}, "", dErrors.New(dErrors.CodeValidation, "a specific date is required")
		}
		from, to = dayBounds(in.Date)
		term = in.Date.Format("02 Jan 2006")
	case ModeDateRange:
		if !modes.DateRange {
			return request.QueryPlan{}, "", dErrors.New(dErrors.CodeValidation, "date-range search is disabled")
		}
		if in.RangeStart.IsZero() || in.RangeEnd.IsZero() {
			return request.QueryPlan{}, "", dErrors.New(dErrors.CodeValidation, "a date range needs both a start and an end")
		}
		if in.RangeEnd.Before(in.RangeStart) {
			return request.QueryPlan{}, "", dErrors.New(dErrors.CodeValidation, "the range end precedes its start")
		}
		from, _ = dayBounds(in.RangeStart)
		_, to = dayBounds(in.RangeEnd)
		term = in.RangeStart.Format("02 Jan 2006") + " - " + in.RangeEnd.Format("02 Jan 2006")
	case ModeCurrentMonth:
		if !modes.CurrentMonth {
			return request.QueryPlan{}, "", dErrors.New(dErrors.CodeValidation, "current-month search is disabled")
		}
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		_, to = dayBounds(from.AddDate(0, 1, -1))
		term = now.Format("January 2006")
	default:
		return request.QueryPlan{}, "", dErrors.Newf(dErrors.CodeValidation, "unknown search mode %q", in.Mode)
	}

	plan := request.QueryPlan{
		From:           from,
		To:             to,
		OwnedBy:        caps.Ownership,
		SortDescending: true,
	}
	return plan, term, nil
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	to := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
	return from, to
}
