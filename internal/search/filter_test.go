package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/internal/request"
)

func amt(v float64) *float64 { return &v }

func viewAll() authz.Capabilities { return authz.Capabilities{CanViewAll: true} }

func tenRecords() []request.Record {
	out := make([]request.Record, 10)
	for i := range out {
		out[i] = request.Record{
			ID:             fmt.Sprintf("NX%d-20250110-14300%d", i, i),
			TrackingNumber: fmt.Sprintf("NX%d", i),
			Consignee:      "ACME Imports",
			SavedBy:        "maria@example.com",
		}
	}
	return out
}

func TestApplyEmptyFiltersPassThrough(t *testing.T) {
	records := tenRecords()
	assert.Len(t, Apply(records, Filters{}, viewAll()), 10)
}

func TestApplyZeroMatchFallback(t *testing.T) {
	// A term matching none of the ten records leaves the set untouched.
	records := tenRecords()
	out := Apply(records, Filters{Consignee: "zzz-no-such"}, viewAll())
	assert.Len(t, out, 10)
}

func TestApplyPartialMatch(t *testing.T) {
	records := tenRecords()
	records[1].Consignee = "Blue Harbor"
	records[4].Consignee = "Blue Harbor"
	records[7].Consignee = "blue harbor ltd"

	out := Apply(records, Filters{Consignee: "Blue"}, viewAll())
	require.Len(t, out, 3)
	assert.Equal(t, records[1].ID, out[0].ID)
	assert.Equal(t, records[4].ID, out[1].ID)
	assert.Equal(t, records[7].ID, out[2].ID)
}

func TestApplyEmptyInputStaysEmpty(t *testing.T) {
	out := Apply(nil, Filters{Consignee: "blue"}, viewAll())
	assert.Empty(t, out)
}

func TestApplyMatchesDisplayLabels(t *testing.T) {
	records := []request.Record{
		{ID: "a"},
		{ID: "b", PaymentStatus: request.PaymentStatusPaid},
		{ID: "c", PaymentStatus: "Error: wrong account"},
	}

	out := Apply(records, Filters{PaymentStatus: "pend"}, viewAll())
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)

	out = Apply(records, Filters{PaymentStatus: "error"}, viewAll())
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].ID)
}

func TestApplyBadgeFilter(t *testing.T) {
	records := []request.Record{
		{ID: "a", Support: true},
		{ID: "b"},
		{ID: "c", ServicePayment: true},
	}

	out := Apply(records, Filters{StatusBadges: "no flags"}, viewAll())
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	out = Apply(records, Filters{StatusBadges: "service"}, viewAll())
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].ID)
}

func TestApplyAmountMatchesFormattedValue(t *testing.T) {
	records := []request.Record{
		{ID: "a", Amount: amt(1500), AmountCurrency: request.CurrencyDollar},
		{ID: "b", Amount: amt(980), AmountCurrency: request.CurrencyCordoba},
	}

	out := Apply(records, Filters{Amount: "us$1,500"}, viewAll())
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
}

func TestApplyDateFilter(t *testing.T) {
	records := tenRecords()
	// Zero dates render as N/A.
	out := Apply(records, Filters{Date: "n/a"}, viewAll())
	assert.Len(t, out, 10)
}

func TestApplyChainOrder(t *testing.T) {
	records := tenRecords()
	records[2].PaymentStatus = request.PaymentStatusPaid
	records[2].Consignee = "Blue Harbor"

	out := Apply(records, Filters{PaymentStatus: "paid", Consignee: "blue"}, viewAll())
	require.Len(t, out, 1)
	assert.Equal(t, records[2].ID, out[0].ID)
}

func TestApplySelfReviewerPinned(t *testing.T) {
	records := tenRecords()
	records[3].SavedBy = "other@example.com"
	records[6].SavedBy = "other@example.com"

	caps := authz.Capabilities{Ownership: []string{"maria@example.com"}}
	out := Apply(records, Filters{}, caps)
	assert.Len(t, out, 8)
	for _, r := range out {
		assert.Equal(t, "maria@example.com", r.SavedBy)
	}

	// The pin is exact-match and exempt from the zero-match fallback: a
	// caller owning nothing in the set sees nothing.
	caps = authz.Capabilities{Ownership: []string{"nobody@example.com"}}
	assert.Empty(t, Apply(records, Filters{}, caps))
}

func TestApplySavedByFilterForViewAll(t *testing.T) {
	records := tenRecords()
	records[0].SavedBy = "jose@example.com"

	out := Apply(records, Filters{SavedBy: "jose"}, viewAll())
	require.Len(t, out, 1)
	assert.Equal(t, records[0].ID, out[0].ID)
}
