package fraud

import "testing"

func TestScan(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		expected []string
	}{
		{
			name:     "clean transaction message",
			msg:      "Rs. 500.00 credited to a/c x1234 via NEFT",
			expected: nil,
		},
		{
			name:     "single keyword",
			msg:      "Suspicious login attempt detected on your account",
			expected: []string{"suspicious"},
		},
		{
			name:     "case-insensitive match",
			msg:      "your otp is 443211, do not share",
			expected: []string{"OTP"},
		},
		{
			name:     "phrase keyword includes its word",
			msg:      "Transaction blocked due to risk assessment",
			expected: []string{"blocked", "risk", "transaction blocked"},
		},
		{
			name:     "empty message",
			msg:      "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.msg)
			if len(got) != len(tt.expected) {
				t.Fatalf("Scan(%q) = %v, want %v", tt.msg, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Scan(%q)[%d] = %q, want %q", tt.msg, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestHit(t *testing.T) {
	if Hit("Rs. 500.00 credited via UPI") {
		t.Error("expected no hit for clean message")
	}
	if !Hit("unauthorized transaction on your card") {
		t.Error("expected hit for unauthorized")
	}
}
