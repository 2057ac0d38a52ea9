package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/sms-transaction-parser/internal/models"
	"github.com/insightdelivered/sms-transaction-parser/internal/normalize"
)

// Shared token fragments. The amount token is an optional currency
// marker followed by a decimal number with optional thousands separators
// and an optional two-decimal fraction.
const (
	currencyToken = `(?:rs\.?|inr\.?|₹)?`
	amountToken   = `(\d[\d,]*(?:\.\d{2})?)`
	dateToken     = `(\d{1,2}/\d{1,2}/\d{4}|\d{1,2}-[A-Za-z]+-\d{2,4})`
	refToken      = `(?:(?:ref(?:erence)?|txn\s*id)[:\s]+([A-Za-z0-9\-]+))?`
)

// Tail carving patterns for the generic rule. Go's regexp has no
// lookahead, so the rule captures the rest of the message and the
// builder finds the merchant boundary itself.
var (
	merchantBoundaryPattern = regexp.MustCompile(`(?i)\b(?:on|at|ref(?:erence)?|txn\s*id)\b`)
	tailDatePattern         = regexp.MustCompile(`(?i)\b(?:on|at)\s+` + dateToken)
	tailRefPattern          = regexp.MustCompile(`(?i)\b(?:ref(?:erence)?|txn\s*id)[:\s]+([A-Za-z0-9\-]+)`)
)

// genericRule covers the common credit/debit/UPI/NEFT template:
// amount, optional direction keyword, optional account reference, then a
// free-text merchant span terminated by the date/reference keywords.
// It must stay last in the set.
var genericRule = Rule{
	Name: "generic",
	pattern: regexp.MustCompile(`(?i)` + currencyToken + `\s*` + amountToken +
		`\s*(credited|debited|paid|sent|transferred|refund|failed|balance\s+update)?` +
		`\s*(?:to|from)?` +
		`\s*(?:your\s+account(?:\s+ending)?\s+([A-Za-z]*\d{4,})|a/c\s*x?([A-Za-z]*\d{4,}))?` +
		`\s*(?:via|by)?\s*(?:for\s+)?(.*)$`),
	build: func(m []string) *models.ParsedTransaction {
		record := &models.ParsedTransaction{}
		if amt, ok := normalize.Amount(m[1]); ok {
			record.Amount = models.DecimalPtr(amt)
		}
		if txnType, ok := normalize.TransactionType(m[2]); ok {
			record.TransactionType = models.StringPtr(txnType)
		}
		if account := firstNonEmpty(m[3], m[4]); account != "" {
			record.AccountNumber = models.StringPtr(account)
		}

		tail := m[5]
		merchantSpan := tail
		if loc := merchantBoundaryPattern.FindStringIndex(tail); loc != nil {
			merchantSpan = tail[:loc[0]]
		}
		if merchant, ok := normalize.Merchant(merchantSpan); ok {
			record.Merchant = models.StringPtr(merchant)
		}
		if dm := tailDatePattern.FindStringSubmatch(tail); dm != nil {
			if date, ok := normalize.Date(dm[1]); ok {
				record.Date = models.StringPtr(date)
			}
		}
		if rm := tailRefPattern.FindStringSubmatch(tail); rm != nil {
			record.ReferenceNumber = models.StringPtr(strings.TrimSpace(rm[1]))
		}
		return record
	},
}

// refundRule recognizes refund confirmations with an optional order
// number. The merchant is synthesized as "Order <digits>" by convention;
// refunds carry no account reference.
var refundRule = Rule{
	Name: "refund",
	pattern: regexp.MustCompile(`(?i)refund\s+of\s+` + currencyToken + `\s*` + amountToken +
		`\s*(?:processed\s+for\s+order\s+(\d+))?` +
		`\s*(?:on|at)\s+` + dateToken + `\s*\.?\s*` + refToken),
	build: func(m []string) *models.ParsedTransaction {
		record := &models.ParsedTransaction{
			TransactionType: models.StringPtr("refund"),
		}
		if amt, ok := normalize.Amount(m[1]); ok {
			record.Amount = models.DecimalPtr(amt)
		}
		if m[2] != "" {
			record.Merchant = models.StringPtr(fmt.Sprintf("Order %s", m[2]))
		}
		if date, ok := normalize.Date(m[3]); ok {
			record.Date = models.StringPtr(date)
		}
		if m[4] != "" {
			record.ReferenceNumber = models.StringPtr(m[4])
		}
		return record
	},
}

// failedRule recognizes failed-transaction notices: amount, optional
// account, the literal "failed", optional reference.
var failedRule = Rule{
	Name: "failed",
	pattern: regexp.MustCompile(`(?i)` + currencyToken + `\s*` + amountToken +
		`\s+(?:payment|transfer)?\s*(?:credited|debited)?\s*(?:to|from)?` +
		`\s*(?:a/c\s*x?([A-Za-z]*\d{4,}))?\s*failed\s*\.?\s*` + refToken),
	build: func(m []string) *models.ParsedTransaction {
		record := &models.ParsedTransaction{
			TransactionType: models.StringPtr("failed"),
		}
		if amt, ok := normalize.Amount(m[1]); ok {
			record.Amount = models.DecimalPtr(amt)
		}
		if m[2] != "" {
			record.AccountNumber = models.StringPtr(m[2])
		}
		if m[3] != "" {
			record.ReferenceNumber = models.StringPtr(m[3])
		}
		return record
	},
}

// walletRule covers wallet top-ups and spends. Wallet messages carry no
// merchant, so a wallet match always flows through the prediction merge.
var walletRule = Rule{
	Name: "wallet",
	pattern: regexp.MustCompile(`(?i)` + currencyToken + `\s*` + amountToken +
		`\s+(credited|debited|refund)?\s*(?:to|from)?\s*wallet\s*\.?\s*` + refToken),
	build: func(m []string) *models.ParsedTransaction {
		record := &models.ParsedTransaction{}
		if amt, ok := normalize.Amount(m[1]); ok {
			record.Amount = models.DecimalPtr(amt)
		}
		if txnType, ok := normalize.TransactionType(m[2]); ok {
			record.TransactionType = models.StringPtr(txnType)
		}
		if m[3] != "" {
			record.ReferenceNumber = models.StringPtr(m[3])
		}
		return record
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
