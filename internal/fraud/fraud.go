// Package fraud implements the advisory keyword scan over raw messages.
// Its output is metadata only; it never blocks or alters a parse.
package fraud

import "strings"

var keywords = []string{
	"OTP",
	"suspicious",
	"unauthorized",
	"blocked",
	"fraud",
	"risk",
	"unauthenticated",
	"transaction blocked",
	"hacked",
}

// Scan returns the fraud keywords present in the message,
// case-insensitively. An empty slice means no hits.
func Scan(msg string) []string {
	lower := strings.ToLower(msg)
	var flags []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			flags = append(flags, kw)
		}
	}
	return flags
}

// Hit reports whether any fraud keyword is present.
func Hit(msg string) bool {
	return len(Scan(msg)) > 0
}
