package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v float64) *float64 { return &v }

func TestDuplicateKey(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantKey string
		wantOK  bool
	}{
		{
			name:    "complete components",
			record:  Record{TrackingNumber: "NX1001", Amount: amt(500), AmountCurrency: "dolar"},
			wantKey: "NX1001-500-dolar",
			wantOK:  true,
		},
		{
			name:    "whitespace trimmed",
			record:  Record{TrackingNumber: " NX1001 ", Amount: amt(500), AmountCurrency: " dolar "},
			wantKey: "NX1001-500-dolar",
			wantOK:  true,
		},
		{
			name:    "fractional amount kept distinct",
			record:  Record{TrackingNumber: "NX1001", Amount: amt(1500.5), AmountCurrency: "cordoba"},
			wantKey: "NX1001-1500.5-cordoba",
			wantOK:  true,
		},
		{
			name:   "missing amount exempt",
			record: Record{TrackingNumber: "NX1001", AmountCurrency: "dolar"},
			wantOK: false,
		},
		{
			name:   "blank tracking exempt",
			record: Record{TrackingNumber: "   ", Amount: amt(500), AmountCurrency: "dolar"},
			wantOK: false,
		},
		{
			name:   "blank currency exempt",
			record: Record{TrackingNumber: "NX1001", Amount: amt(500), AmountCurrency: ""},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := tt.record.DuplicateKey()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestDuplicateKeyTrailingZeros(t *testing.T) {
	a, _ := Record{TrackingNumber: "NX1001", Amount: amt(1500), AmountCurrency: "dolar"}.DuplicateKey()
	b, _ := Record{TrackingNumber: "NX1001", Amount: amt(1500.0), AmountCurrency: "dolar"}.DuplicateKey()
	assert.Equal(t, a, b)
}

func TestDuplicateGroups(t *testing.T) {
	records := []Record{
		{ID: "a", TrackingNumber: "NX1001", Amount: amt(500), AmountCurrency: "dolar"},
		{ID: "b", TrackingNumber: "NX2002", Amount: amt(900), AmountCurrency: "cordoba"},
		{ID: "c", TrackingNumber: "NX1001", Amount: amt(500), AmountCurrency: "dolar"},
		{ID: "d", TrackingNumber: "NX3003"}, // no amount, exempt
		{ID: "e", TrackingNumber: "NX2002", Amount: amt(900), AmountCurrency: "cordoba"},
		{ID: "f", TrackingNumber: "NX1001", Amount: amt(500), AmountCurrency: "dolar"},
	}

	groups := DuplicateGroups(records)
	require.Len(t, groups, 2)

	// First-seen order of the keys.
	assert.Equal(t, "NX1001-500-dolar", groups[0].Key)
	assert.Equal(t, []string{"a", "c", "f"}, groups[0].IDs)
	assert.Equal(t, "NX2002-900-cordoba", groups[1].Key)
	assert.Equal(t, []string{"b", "e"}, groups[1].IDs)
}

func TestDuplicateGroupsSingletonsDropped(t *testing.T) {
	records := []Record{
		{ID: "a", TrackingNumber: "NX1001", Amount: amt(500), AmountCurrency: "dolar"},
		{ID: "b", TrackingNumber: "NX2002", Amount: amt(900), AmountCurrency: "cordoba"},
	}
	assert.Empty(t, DuplicateGroups(records))
}

func TestTrackingFromKey(t *testing.T) {
	assert.Equal(t, "NX1001", TrackingFromKey("NX1001-500-dolar"))
}
