package request

import (
	"encoding/json"
	"time"
)

// StoredRecord is a raw store document before normalization. Field values are
// whatever the backing store produced: JSON scalars, RFC 3339 timestamp
// strings, or native time.Time values.
type StoredRecord struct {
	ID     string
	Fields map[string]any
}

// Normalize converts a raw document into a canonical Record. Missing or
// wrongly-typed fields collapse to their zero defaults; normalization never
// fails, so one malformed document cannot poison a whole result set.
func Normalize(sr StoredRecord) Record {
	f := sr.Fields
	return Record{
		ID: sr.ID,

		TrackingNumber: optString(f, "trackingNumber"),
		Amount:         optNumber(f, "amount"),
		AmountCurrency: optString(f, "amountCurrency"),

		Reference:   optString(f, "reference"),
		Manager:     optString(f, "manager"),
		RequestDate: optTime(f, "requestDate"),
		Recipient:   optString(f, "recipient"),

		AmountInWords: optString(f, "amountInWords"),

		Consignee:            optString(f, "consignee"),
		DeclarationNumber:    optString(f, "declarationNumber"),
		RevenueUnit:          optString(f, "revenueUnit"),
		Code1:                optString(f, "code1"),
		Code2:                optString(f, "code2"),
		Bank:                 optString(f, "bank"),
		BankOther:            optString(f, "bankOther"),
		AccountNumber:        optString(f, "accountNumber"),
		AccountCurrency:      optString(f, "accountCurrency"),
		AccountCurrencyOther: optString(f, "accountCurrencyOther"),
		PayCheckTo:           optString(f, "payCheckTo"),
		PayTransferTo:        optString(f, "payTransferTo"),

		TaxesPaidByClient:  optBool(f, "taxesPaidByClient"),
		TaxesPaidReceipt:   optString(f, "taxesPaidReceipt"),
		TaxesPaidTransfer:  optString(f, "taxesPaidTransfer"),
		TaxesPaidCheck:     optString(f, "taxesPaidCheck"),
		TaxesPendingClient: optBool(f, "taxesPendingClient"),

		Support:           optBool(f, "support"),
		DocumentsAttached: optBool(f, "documentsAttached"),

		NonRetentionCerts: optBool(f, "nonRetentionCerts"),
		NonRetentionCert1: optBool(f, "nonRetentionCert1"),
		NonRetentionCert2: optBool(f, "nonRetentionCert2"),

		ServicePayment:     optBool(f, "servicePayment"),
		ServiceType:        optString(f, "serviceType"),
		ServiceTypeOther:   optString(f, "serviceTypeOther"),
		ServiceInvoice:     optString(f, "serviceInvoice"),
		ServiceInstitution: optString(f, "serviceInstitution"),

		NotifyEmail: optString(f, "notifyEmail"),
		Observation: optString(f, "observation"),

		SavedBy: optString(f, "savedBy"),
		SavedAt: optTime(f, "savedAt"),

		PaymentStatus:          optString(f, "paymentStatus"),
		PaymentStatusUpdatedAt: optTime(f, "paymentStatusUpdatedAt"),
		PaymentStatusUpdatedBy: optString(f, "paymentStatusUpdatedBy"),

		DocumentReceived:          optBool(f, "documentReceived"),
		DocumentReceivedUpdatedAt: optTime(f, "documentReceivedUpdatedAt"),
		DocumentReceivedUpdatedBy: optString(f, "documentReceivedUpdatedBy"),

		EmailNotified:          optBool(f, "emailNotified"),
		EmailNotifiedUpdatedAt: optTime(f, "emailNotifiedUpdatedAt"),
		EmailNotifiedUpdatedBy: optString(f, "emailNotifiedUpdatedBy"),
	}
}

func optString(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

func optBool(fields map[string]any, key string) bool {
	if b, ok := fields[key].(bool); ok {
		return b
	}
	return false
}

func optNumber(fields map[string]any, key string) *float64 {
	switch v := fields[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func optTime(fields map[string]any, key string) time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
