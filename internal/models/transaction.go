package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts serialize as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParsedTransaction is the structured record extracted from a single
// notification message. Every field is independently optional; a message
// may yield a record with only the amount populated. The record lives for
// one request/response exchange and is never persisted.
type ParsedTransaction struct {
	Amount          *decimal.Decimal
	AccountNumber   *string
	Merchant        *string
	Date            *string // DD-MM-YYYY or DD-Mon-YYYY
	ReferenceNumber *string
	TransactionType *string // credit, debit, refund, failed, unknown
	FraudFlags      []string
}

// Complete reports whether the record is good enough to skip the
// prediction fallback. Only merchant and transaction type are checked;
// amount, date and reference may still be absent.
func (t *ParsedTransaction) Complete() bool {
	return t != nil && t.Merchant != nil && t.TransactionType != nil
}

// TransactionPayload is the external-facing JSON shape. No field is ever
// omitted: absent data marshals as an explicit null, and FraudFlags as an
// empty array rather than null.
type TransactionPayload struct {
	Amount          *decimal.Decimal `json:"amount"`
	Account         *string          `json:"account"`
	Merchant        *string          `json:"merchant"`
	Date            *string          `json:"date"`
	Ref             *string          `json:"Ref"`
	TransactionType *string          `json:"transaction_type"`
	FraudFlags      []string         `json:"fraud_flags"`
}

// Payload maps the internal record to the external contract, renaming
// accountNumber to account and referenceNumber to Ref.
func (t *ParsedTransaction) Payload() TransactionPayload {
	flags := t.FraudFlags
	if flags == nil {
		flags = []string{}
	}
	return TransactionPayload{
		Amount:          t.Amount,
		Account:         t.AccountNumber,
		Merchant:        t.Merchant,
		Date:            t.Date,
		Ref:             t.ReferenceNumber,
		TransactionType: t.TransactionType,
		FraudFlags:      flags,
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// DecimalPtr returns a pointer to d.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
