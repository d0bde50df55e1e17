package search

import (
	"strings"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/request"
)

// Filters is the per-column filter set applied client-side to a fetched
// result set. Empty values are pass-through.
type Filters struct {
	StatusBadges      string `json:"statusBadges,omitempty"`
	PaymentStatus     string `json:"paymentStatus,omitempty"`
	DocumentReceived  string `json:"documentReceived,omitempty"`
	EmailNotified     string `json:"emailNotified,omitempty"`
	RecordID          string `json:"recordId,omitempty"`
	Date              string `json:"date,omitempty"`
	TrackingNumber    string `json:"trackingNumber,omitempty"`
	Amount            string `json:"amount,omitempty"`
	Consignee         string `json:"consignee,omitempty"`
	DeclarationNumber string `json:"declarationNumber,omitempty"`
	Reference         string `json:"reference,omitempty"`
	SavedBy           string `json:"savedBy,omitempty"`
}

// Apply runs the filter chain over the records in its fixed column order.
// Each step is a case-insensitive substring match on the column's display
// rendering, with one quirk kept on purpose: a step whose term matches
// nothing leaves the set untouched instead of emptying it, so one overzealous
// filter never blanks the table.
//
// Self-review callers are pinned to their own records by an exact-match step
// that ignores both the substring semantics and the no-op fallback.
func Apply(records []request.Record, f Filters, caps authz.Capabilities) []request.Record {
	out := records

	out = step(out, f.StatusBadges, func(r request.Record, term string) bool {
		for _, badge := range r.StatusBadges() {
			if strings.Contains(strings.ToLower(badge), term) {
				return true
			}
		}
		return false
	})
	out = step(out, f.PaymentStatus, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.PaymentStatusLabel()), term)
	})
	out = step(out, f.DocumentReceived, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.DocumentReceivedLabel()), term)
	})
	out = step(out, f.EmailNotified, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.EmailNotifiedLabel()), term)
	})
	out = step(out, f.RecordID, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.ID), term)
	})
	out = step(out, f.Date, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(dateLabel(r)), term)
	})
	out = step(out, f.TrackingNumber, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.TrackingNumber), term)
	})
	out = step(out, f.Amount, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(request.FormatAmount(r.Amount, r.AmountCurrency)), term)
	})
	out = step(out, f.Consignee, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.Consignee), term)
	})
	out = step(out, f.DeclarationNumber, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.DeclarationNumber), term)
	})
	out = step(out, f.Reference, func(r request.Record, term string) bool {
		return strings.Contains(strings.ToLower(r.Reference), term)
	})

	if caps.OwnsRestriction() {
		var owned []request.Record
		for _, r := range out {
			for _, owner := range caps.Ownership {
				if r.SavedBy == owner {
					owned = append(owned, r)
					break
				}
			}
		}
		out = owned
	} else {
		out = step(out, f.SavedBy, func(r request.Record, term string) bool {
			return strings.Contains(strings.ToLower(r.SavedBy), term)
		})
	}

	return out
}

// step applies one filter with the no-op fallback: an empty term passes
// everything through, and a term that filters a non-empty set down to nothing
// returns the input set unchanged.
func step(data []request.Record, value string, match func(request.Record, string) bool) []request.Record {
	term := strings.ToLower(strings.TrimSpace(value))
	if term == "" {
		return data
	}
	var filtered []request.Record
	for _, r := range data {
		if match(r, term) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > 0 || len(data) == 0 {
		return filtered
	}
	return data
}

func dateLabel(r request.Record) string {
	if r.RequestDate.IsZero() {
		return "N/A"
	}
	return r.RequestDate.Format("02/01/06")
}
