// Package export flattens a displayed result set into spreadsheet rows and
// writes them as an xlsx workbook.
package export

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aconic-ni/customspayapp/internal/request"
	"github.com/aconic-ni/customspayapp/internal/search"
)

// Cell sentinels.
const (
	cellNA            = "N/A"
	cellYes           = "Yes"
	cellNo            = "No"
	cellNoComments    = "No comments"
	cellCommentsError = "Error loading comments"
)

// commentConcurrency bounds the per-export comment fan-out.
const commentConcurrency = 8

// CommentLister is the slice of the request store the serializer needs.
type CommentLister interface {
	ListComments(ctx context.Context, recordID string) ([]request.Comment, error)
}

// Serializer turns records into workbook rows. Comment fetches run
// concurrently but each row's failure is contained to its own comments cell,
// so one bad record never sinks the export.
type Serializer struct {
	comments CommentLister
	logger   *slog.Logger
}

func NewSerializer(comments CommentLister, logger *slog.Logger) *Serializer {
	return &Serializer{comments: comments, logger: logger}
}

// Headers returns the fixed column set every export carries, independent of
// which fields the exported records actually use.
func Headers() []string {
	return []string{
		"Payment Status",
		"Document Received",
		"Document Received By",
		"Document Received At",
		"Email Notified",
		"Email Notified By",
		"Email Notified At",
		"Record ID",
		"Request Date",
		"Tracking Number",
		"Amount",
		"Amount Currency",
		"Consignee",
		"Declaration Number",
		"Reference",
		"Saved By",
		"Amount In Words",
		"Recipient",
		"Revenue Unit",
		"Code 1",
		"MUR Code",
		"Bank",
		"Other Bank",
		"Account Number",
		"Account Currency",
		"Other Account Currency",
		"Pay Check To",
		"Pay Transfer To",
		"Taxes Paid By Client",
		"Receipt (Taxes Paid)",
		"Transfer (Taxes Paid)",
		"Check (Taxes Paid)",
		"Taxes Pending By Client",
		"Support",
		"Documents Attached",
		"Non-Retention Certificates",
		"1% Certificate",
		"2% Certificate",
		"Service Payment",
		"Service Type",
		"Other Service Type",
		"Service Invoice",
		"Service Institution",
		"Notification Email",
		"Observation",
		"Manager",
		"Saved At",
		"Payment Updated By",
		"Payment Updated At",
		"Comments",
	}
}

// Rows serializes the records in their given order. The returned slice is
// index-aligned with the input.
func (s *Serializer) Rows(ctx context.Context, records []request.Record) ([][]string, error) {
	rows := make([][]string, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(commentConcurrency)
	for i := range records {
		g.Go(func() error {
			rows[i] = s.row(ctx, records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Serializer) row(ctx context.Context, r request.Record) []string {
	return []string{
		r.PaymentStatusLabel(),
		r.DocumentReceivedLabel(),
		orNA(r.DocumentReceivedUpdatedBy),
		timestampCell(r.DocumentReceivedUpdatedAt),
		r.EmailNotifiedLabel(),
		orNA(r.EmailNotifiedUpdatedBy),
		timestampCell(r.EmailNotifiedUpdatedAt),
		orNA(r.ID),
		timestampCell(r.RequestDate),
		orNA(r.TrackingNumber),
		amountCell(r.Amount),
		orNA(r.AmountCurrency),
		orNA(r.Consignee),
		orNA(r.DeclarationNumber),
		orNA(r.Reference),
		orNA(r.SavedBy),
		orNA(r.AmountInWords),
		orNA(r.Recipient),
		orNA(r.RevenueUnit),
		orNA(r.Code1),
		orNA(r.Code2),
		bankCell(r),
		otherBankCell(r),
		accountNumberCell(r),
		accountCurrencyCell(r),
		otherAccountCurrencyCell(r),
		orNA(r.PayCheckTo),
		orNA(r.PayTransferTo),
		yesNo(r.TaxesPaidByClient),
		gated(r.TaxesPaidByClient, r.TaxesPaidReceipt),
		gated(r.TaxesPaidByClient, r.TaxesPaidTransfer),
		gated(r.TaxesPaidByClient, r.TaxesPaidCheck),
		yesNo(r.TaxesPendingClient),
		yesNo(r.Support),
		yesNo(r.DocumentsAttached),
		yesNo(r.NonRetentionCerts),
		gatedBool(r.NonRetentionCerts, r.NonRetentionCert1),
		gatedBool(r.NonRetentionCerts, r.NonRetentionCert2),
		yesNo(r.ServicePayment),
		serviceTypeCell(r),
		gated(r.ServicePayment && r.ServiceType == request.ServiceTypeOtherValue, r.ServiceTypeOther),
		gated(r.ServicePayment, r.ServiceInvoice),
		gated(r.ServicePayment, r.ServiceInstitution),
		orNA(r.NotifyEmail),
		orNA(r.Observation),
		orNA(r.Manager),
		timestampCell(r.SavedAt),
		orNA(r.PaymentStatusUpdatedBy),
		timestampCell(r.PaymentStatusUpdatedAt),
		s.commentsCell(ctx, r),
	}
}

// commentsCell joins a record's comments into one cell. When the hydrated
// count says there is nothing to fetch, the store is not consulted.
func (s *Serializer) commentsCell(ctx context.Context, r request.Record) string {
	if r.CommentsCount == 0 {
		return cellNoComments
	}
	comments, err := s.comments.ListComments(ctx, r.ID)
	if err != nil {
		s.logger.Warn("export comment fetch failed",
			slog.String("record_id", r.ID),
			slog.String("error", err.Error()))
		return cellCommentsError
	}
	if len(comments) == 0 {
		return cellNoComments
	}
	parts := make([]string, len(comments))
	for i, c := range comments {
		parts[i] = c.AuthorEmail + " - " + c.CreatedAt.Format("02/01/06 15:04") + ": " + c.Body
	}
	return strings.Join(parts, "\n")
}

// Filename builds the download name from the search context, with the term
// reduced to filename-safe characters.
func Filename(mode search.Mode, term string, now time.Time) string {
	var b strings.Builder
	for _, r := range term {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return "check_requests_" + string(mode) + "_" + b.String() + "_" + now.Format("2006-01-02") + ".xlsx"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return cellNA
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return cellYes
	}
	return cellNo
}

// gated renders a dependent field, which only carries meaning when its parent
// flag is set.
func gated(parent bool, value string) string {
	if !parent {
		return cellNA
	}
	return orNA(value)
}

func gatedBool(parent, value bool) string {
	if !parent {
		return cellNA
	}
	return yesNo(value)
}

func amountCell(a *float64) string {
	if a == nil {
		return cellNA
	}
	return strconv.FormatFloat(*a, 'f', -1, 64)
}

func timestampCell(t time.Time) string {
	if t.IsZero() {
		return cellNA
	}
	return t.Format("2006-01-02 15:04")
}

func bankCell(r request.Record) string {
	if r.Bank == request.BankCheckActionNoBank {
		return "Check Action / No Bank"
	}
	return orNA(r.Bank)
}

func otherBankCell(r request.Record) string {
	if r.Bank != request.BankOtherValue {
		return cellNA
	}
	return orNA(r.BankOther)
}

func accountNumberCell(r request.Record) string {
	if r.Bank == request.BankCheckActionNoBank {
		return cellNA
	}
	return orNA(r.AccountNumber)
}

func accountCurrencyCell(r request.Record) string {
	if r.Bank == request.BankCheckActionNoBank {
		return cellNA
	}
	if r.AccountCurrency == request.AccountCurrencyOtherValue {
		return orNA(r.AccountCurrencyOther)
	}
	return orNA(r.AccountCurrency)
}

func otherAccountCurrencyCell(r request.Record) string {
	if r.AccountCurrency != request.AccountCurrencyOtherValue {
		return cellNA
	}
	return orNA(r.AccountCurrencyOther)
}

func serviceTypeCell(r request.Record) string {
	if !r.ServicePayment {
		return cellNA
	}
	if r.ServiceType == request.ServiceTypeOtherValue {
		return orNA(r.ServiceTypeOther)
	}
	return orNA(r.ServiceType)
}
