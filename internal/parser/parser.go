// Package parser implements the pattern-based extraction rules for bank
// and payment notification messages. Rules are evaluated in a fixed
// order against the raw message; the first rule that matches wins.
package parser

import (
	"regexp"

	"github.com/insightdelivered/sms-transaction-parser/internal/models"
)

// Rule pairs a message pattern with a builder that maps captured spans
// to a partial transaction record.
type Rule struct {
	Name    string
	pattern *regexp.Regexp
	build   func(groups []string) *models.ParsedTransaction
}

// Match evaluates the rule against a raw message. The second return is
// false when the pattern does not match.
func (r *Rule) Match(msg string) (*models.ParsedTransaction, bool) {
	m := r.pattern.FindStringSubmatch(msg)
	if m == nil {
		return nil, false
	}
	return r.build(m), true
}

// Set is an ordered list of rules. Ordering encodes specificity: the
// refund, failed and wallet rules must run before the generic
// credit/debit rule, or the generic rule would consume their messages.
type Set struct {
	rules []Rule
}

// NewSet returns the default rule set in specificity order.
func NewSet() *Set {
	return &Set{rules: []Rule{
		refundRule,
		failedRule,
		walletRule,
		genericRule,
	}}
}

// Match runs the rules in order and returns the first rule's record
// along with the rule name. A miss across all rules returns false; this
// is the normal fallback trigger, not an error.
func (s *Set) Match(msg string) (*models.ParsedTransaction, string, bool) {
	for i := range s.rules {
		if record, ok := s.rules[i].Match(msg); ok {
			return record, s.rules[i].Name, true
		}
	}
	return nil, "", false
}
