package parser

import (
	"testing"

	"github.com/shopspring/decimal"
)

// field expectation: empty string means the field must be absent.
type want struct {
	rule     string
	amount   string
	account  string
	merchant string
	date     string
	ref      string
	txnType  string
}

func TestSetMatch(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		match bool
		want  want
	}{
		{
			name:  "generic debit with account, merchant, date and reference",
			msg:   "Rs. 2,500.00 debited from a/c x1234 via Amazon on 05/03/2024 ref TXN998877",
			match: true,
			want: want{
				rule:     "generic",
				amount:   "2500.00",
				account:  "1234",
				merchant: "Amazon",
				date:     "05-03-2024",
				ref:      "TXN998877",
				txnType:  "debit",
			},
		},
		{
			name:  "generic credit with account-ending phrasing and textual date",
			msg:   "Rs. 500.00 credited to your account ending 9876 via NEFT on 12-Jan-2024 ref ABC123",
			match: true,
			want: want{
				rule:     "generic",
				amount:   "500.00",
				account:  "9876",
				merchant: "NEFT",
				date:     "12-Jan-2024",
				ref:      "ABC123",
				txnType:  "credit",
			},
		},
		{
			name:  "generic without date still parses",
			msg:   "Rs. 99.00 debited for Uber ref UBR777",
			match: true,
			want: want{
				rule:     "generic",
				amount:   "99.00",
				merchant: "Uber",
				ref:      "UBR777",
				txnType:  "debit",
			},
		},
		{
			name:  "generic strips trailing purchase noise word",
			msg:   "INR 1,200.00 paid for Flipkart purchase on 01/02/2024",
			match: true,
			want: want{
				rule:     "generic",
				amount:   "1200.00",
				merchant: "Flipkart",
				date:     "01-02-2024",
				txnType:  "debit",
			},
		},
		{
			name:  "generic without direction keyword leaves type unset",
			msg:   "Rs. 1,000.00 received from employer on 01/02/2024",
			match: true,
			want: want{
				rule:     "generic",
				amount:   "1000.00",
				merchant: "received from employer",
				date:     "01-02-2024",
			},
		},
		{
			name:  "refund with order number synthesizes merchant",
			msg:   "Refund of Rs. 500 processed for order 8831 on 12-Jan-2024",
			match: true,
			want: want{
				rule:     "refund",
				amount:   "500",
				merchant: "Order 8831",
				date:     "12-Jan-2024",
				txnType:  "refund",
			},
		},
		{
			name:  "refund without order number or account still parses",
			msg:   "Refund of Rs. 250.00 on 05/03/2024 ref RFN001",
			match: true,
			want: want{
				rule:    "refund",
				amount:  "250.00",
				date:    "05-03-2024",
				ref:     "RFN001",
				txnType: "refund",
			},
		},
		{
			name:  "failed transaction with account and reference",
			msg:   "Rs. 750.00 payment to a/c x9921 failed ref FLD445",
			match: true,
			want: want{
				rule:    "failed",
				amount:  "750.00",
				account: "9921",
				ref:     "FLD445",
				txnType: "failed",
			},
		},
		{
			name:  "wallet credit carries no merchant",
			msg:   "Rs. 250.00 credited to wallet ref WLT123",
			match: true,
			want: want{
				rule:    "wallet",
				amount:  "250.00",
				ref:     "WLT123",
				txnType: "credit",
			},
		},
		{
			name:  "malformed date shape is discarded, not stored",
			msg:   "Rs. 80.00 debited via Swiggy on 2024/03/05",
			match: true,
			want: want{
				rule:     "generic",
				amount:   "80.00",
				merchant: "Swiggy",
				txnType:  "debit",
			},
		},
		{
			name:  "gibberish matches nothing",
			msg:   "the quick brown fox jumps over nothing",
			match: false,
		},
		{
			name:  "empty message matches nothing",
			msg:   "",
			match: false,
		},
	}

	set := NewSet()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, rule, ok := set.Match(tt.msg)
			if ok != tt.match {
				t.Fatalf("Match(%q): ok = %v, want %v", tt.msg, ok, tt.match)
			}
			if !ok {
				return
			}
			if rule != tt.want.rule {
				t.Errorf("rule = %q, want %q", rule, tt.want.rule)
			}

			if tt.want.amount == "" {
				if record.Amount != nil {
					t.Errorf("amount = %s, want absent", record.Amount)
				}
			} else {
				wantAmt, _ := decimal.NewFromString(tt.want.amount)
				if record.Amount == nil || !record.Amount.Equal(wantAmt) {
					t.Errorf("amount = %v, want %s", record.Amount, wantAmt)
				}
			}

			checkField(t, "account", record.AccountNumber, tt.want.account)
			checkField(t, "merchant", record.Merchant, tt.want.merchant)
			checkField(t, "date", record.Date, tt.want.date)
			checkField(t, "reference", record.ReferenceNumber, tt.want.ref)
			checkField(t, "transaction type", record.TransactionType, tt.want.txnType)
		})
	}
}

func checkField(t *testing.T, name string, got *string, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Errorf("%s = %q, want absent", name, *got)
		}
		return
	}
	if got == nil {
		t.Errorf("%s absent, want %q", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %q, want %q", name, *got, want)
	}
}

// The refund rule must win over the generic rule for refund messages,
// whatever phrasing surrounds the order number.
func TestRefundBeatsGeneric(t *testing.T) {
	record, rule, ok := NewSet().Match("refund of Rs. 500 processed for order 8831 on 12-Jan-2024")
	if !ok {
		t.Fatal("expected a match")
	}
	if rule != "refund" {
		t.Fatalf("rule = %q, want refund", rule)
	}
	if record.Merchant == nil || *record.Merchant != "Order 8831" {
		t.Errorf("merchant = %v, want Order 8831", record.Merchant)
	}
}

// Parsing is a pure function of the message: the same input yields the
// same record every time.
func TestMatchIsDeterministic(t *testing.T) {
	set := NewSet()
	msg := "Rs. 2,500.00 debited from a/c x1234 via Amazon on 05/03/2024 ref TXN998877"

	first, _, ok := set.Match(msg)
	if !ok {
		t.Fatal("expected a match")
	}
	second, _, ok := set.Match(msg)
	if !ok {
		t.Fatal("expected a match")
	}

	if *first.Merchant != *second.Merchant || *first.Date != *second.Date ||
		!first.Amount.Equal(*second.Amount) {
		t.Error("repeated matches disagree")
	}
}
