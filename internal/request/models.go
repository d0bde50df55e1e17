// Package request holds the canonical check-payment-request record, its
// normalization from raw store documents, and duplicate-key grouping.
package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Payment status values. An empty status means pending; anything carrying the
// error prefix is a rater-entered failure note shown verbatim.
const (
	PaymentStatusPaid  = "Paid"
	PaymentErrorPrefix = "Error: "
)

// Display labels derived from status fields. The filter pipeline and the
// export serializer match against these, not against the stored values.
const (
	LabelPending  = "Pending"
	LabelPaid     = "Paid"
	LabelReceived = "Received"
	LabelNotified = "Notified"
)

// Amount currencies as stored on the record.
const (
	CurrencyCordoba = "cordoba"
	CurrencyDollar  = "dolar"
	CurrencyEuro    = "euro"
)

// Special-cased enum values for the bank and service blocks. Everything else
// in those fields passes through opaquely.
const (
	BankOtherValue        = "other"
	BankCheckActionNoBank = "check_action_no_bank"

	AccountCurrencyOtherValue = "other"
	ServiceTypeOtherValue     = "other"
)

// Record is the canonical in-memory check payment request. Booleans default
// to false, strings to "", and absent dates stay zero; downstream components
// never branch on "missing" versus "empty".
type Record struct {
	ID string `json:"id"`

	// Business key fields.
	TrackingNumber string   `json:"trackingNumber"`
	Amount         *float64 `json:"amount"`
	AmountCurrency string   `json:"amountCurrency"`

	// Request header.
	Reference   string    `json:"reference"`
	Manager     string    `json:"manager"`
	RequestDate time.Time `json:"requestDate"`
	Recipient   string    `json:"recipient"`

	AmountInWords string `json:"amountInWords"`

	// Descriptive fields, opaque pass-through for normalization purposes.
	Consignee            string `json:"consignee"`
	DeclarationNumber    string `json:"declarationNumber"`
	RevenueUnit          string `json:"revenueUnit"`
	Code1                string `json:"code1"`
	Code2                string `json:"code2"`
	Bank                 string `json:"bank"`
	BankOther            string `json:"bankOther"`
	AccountNumber        string `json:"accountNumber"`
	AccountCurrency      string `json:"accountCurrency"`
	AccountCurrencyOther string `json:"accountCurrencyOther"`
	PayCheckTo           string `json:"payCheckTo"`
	PayTransferTo        string `json:"payTransferTo"`

	TaxesPaidByClient  bool   `json:"taxesPaidByClient"`
	TaxesPaidReceipt   string `json:"taxesPaidReceipt"`
	TaxesPaidTransfer  string `json:"taxesPaidTransfer"`
	TaxesPaidCheck     string `json:"taxesPaidCheck"`
	TaxesPendingClient bool   `json:"taxesPendingClient"`

	Support           bool `json:"support"`
	DocumentsAttached bool `json:"documentsAttached"`

	NonRetentionCerts bool `json:"nonRetentionCerts"`
	NonRetentionCert1 bool `json:"nonRetentionCert1"`
	NonRetentionCert2 bool `json:"nonRetentionCert2"`

	ServicePayment     bool   `json:"servicePayment"`
	ServiceType        string `json:"serviceType"`
	ServiceTypeOther   string `json:"serviceTypeOther"`
	ServiceInvoice     string `json:"serviceInvoice"`
	ServiceInstitution string `json:"serviceInstitution"`

	NotifyEmail string `json:"notifyEmail"`
	Observation string `json:"observation"`

	SavedBy string    `json:"savedBy"`
	SavedAt time.Time `json:"savedAt"`

	// Status fields, each independently mutable with its own audit pair.
	PaymentStatus          string    `json:"paymentStatus"`
	PaymentStatusUpdatedAt time.Time `json:"paymentStatusUpdatedAt"`
	PaymentStatusUpdatedBy string    `json:"paymentStatusUpdatedBy"`

	DocumentReceived          bool      `json:"documentReceived"`
	DocumentReceivedUpdatedAt time.Time `json:"documentReceivedUpdatedAt"`
	DocumentReceivedUpdatedBy string    `json:"documentReceivedUpdatedBy"`

	EmailNotified          bool      `json:"emailNotified"`
	EmailNotifiedUpdatedAt time.Time `json:"emailNotifiedUpdatedAt"`
	EmailNotifiedUpdatedBy string    `json:"emailNotifiedUpdatedBy"`

	// Derived, not persisted on the document.
	CommentsCount int `json:"commentsCount"`
}

// Comment is an append-only child of a Record, ordered by creation ascending.
type Comment struct {
	ID          string    `json:"id"`
	RecordID    string    `json:"recordId"`
	AuthorEmail string    `json:"authorEmail"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewRecordID builds the immutable record id assigned at creation time.
func NewRecordID(trackingNumber string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", strings.TrimSpace(trackingNumber),
		now.Format("20060102"), now.Format("150405"))
}

// PaymentStatusLabel returns the display label the filter pipeline and the
// export match against: "Pending" for an empty status, the stored value
// otherwise ("Paid" or a verbatim "Error: ..." note).
func (r Record) PaymentStatusLabel() string {
	if r.PaymentStatus == "" {
		return LabelPending
	}
	return r.PaymentStatus
}

// PaymentPending reports whether the record still needs a payment decision.
// An error note does not count as pending; it is an explicit outcome.
func (r Record) PaymentPending() bool {
	if r.PaymentStatus == "" {
		return true
	}
	return r.PaymentStatus != PaymentStatusPaid && !strings.HasPrefix(r.PaymentStatus, PaymentErrorPrefix)
}

// DocumentReceivedLabel returns "Received" or "Pending".
func (r Record) DocumentReceivedLabel() string {
	if r.DocumentReceived {
		return LabelReceived
	}
	return LabelPending
}

// EmailNotifiedLabel returns "Notified" or "Pending".
func (r Record) EmailNotifiedLabel() string {
	if r.EmailNotified {
		return LabelNotified
	}
	return LabelPending
}

// StatusBadges returns the state badge labels for the record. A record with
// no flags set gets the single "No Flags" badge so the badge filter always
// has something to match against.
func (r Record) StatusBadges() []string {
	var badges []string
	if r.DocumentsAttached {
		badges = append(badges, "Docs Attached")
	}
	if r.Support {
		badges = append(badges, "Support")
	}
	if r.TaxesPendingClient {
		badges = append(badges, "Taxes Pending")
	}
	if r.NonRetentionCerts {
		badges = append(badges, "Non-Retention Cert.")
	}
	if r.ServicePayment {
		badges = append(badges, "Service Payment")
	}
	if len(badges) == 0 {
		badges = append(badges, "No Flags")
	}
	return badges
}

// FormatAmount renders an amount with its currency prefix, thousands grouping
// and two decimals, or "N/A" when absent.
func FormatAmount(amount *float64, currency string) string {
	if amount == nil {
		return "N/A"
	}
	var prefix string
	switch currency {
	case CurrencyCordoba:
		prefix = "C$"
	case CurrencyDollar:
		prefix = "US$"
	case CurrencyEuro:
		prefix = "€"
	}
	return prefix + groupThousands(strconv.FormatFloat(*amount, 'f', 2, 64))
}

// groupThousands inserts comma separators into the integer part of a fixed
// decimal rendering like "1234567.89".
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
