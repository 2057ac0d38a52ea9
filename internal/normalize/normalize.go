// Package normalize converts raw captured substrings into canonical
// typed values. All functions are pure; failures are reported as absent
// results, never errors.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Accepted date shapes.
var (
	// DD/MM/YYYY, day and month possibly single-digit
	dateSlashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	// DD-Mon-YY or DD-Mon-YYYY (e.g. 12-Jan-2024)
	dateDashPattern = regexp.MustCompile(`^\d{1,2}-[A-Za-z]+-\d{2,4}$`)
)

var trailingPurchasePattern = regexp.MustCompile(`(?i)\s+purchase\s*$`)

// Amount parses a monetary string like "1,234.56", stripping thousands
// separators. Returns false for non-numeric input.
func Amount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Date canonicalizes a raw date token. DD/MM/YYYY is re-emitted as
// DD-MM-YYYY with zero-padded day and month; DD-Mon-YYYY passes through
// unchanged. Any other shape is discarded rather than stored malformed.
func Date(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if m := dateSlashPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d-%02d-%s", day, month, m[3]), true
	}
	if dateDashPattern.MatchString(s) {
		return s, true
	}
	return "", false
}

// Merchant trims the captured merchant span and strips a single trailing
// "purchase" noise word. An empty result is absent, not an empty string.
func Merchant(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = trailingPurchasePattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// TransactionType maps a captured direction keyword to the canonical
// transaction type vocabulary. Returns false for an empty keyword.
func TransactionType(keyword string) (string, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(keyword), " ")) {
	case "":
		return "", false
	case "credited":
		return "credit", true
	case "debited", "paid", "sent", "transferred":
		return "debit", true
	case "refund":
		return "refund", true
	case "failed":
		return "failed", true
	default:
		// e.g. "balance update" carries no direction
		return "unknown", true
	}
}
