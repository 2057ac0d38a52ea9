// Package pipeline composes the rule set, the fraud scanner and the
// external prediction/validation clients into the fallback/merge policy.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/insightdelivered/sms-transaction-parser/internal/fraud"
	"github.com/insightdelivered/sms-transaction-parser/internal/metrics"
	"github.com/insightdelivered/sms-transaction-parser/internal/mlclient"
	"github.com/insightdelivered/sms-transaction-parser/internal/models"
	"github.com/insightdelivered/sms-transaction-parser/internal/parser"
)

// ErrUnparseable is returned when both the rule and prediction paths are
// exhausted with nothing usable. It is the only pipeline error surfaced
// to callers; external-call failures are absorbed internally.
var ErrUnparseable = errors.New("message could not be parsed")

// Predictor is the external statistical predictor boundary.
type Predictor interface {
	Predict(ctx context.Context, sms string) (*models.ParsedTransaction, error)
}

// Validator is the external correction service boundary.
type Validator interface {
	Validate(ctx context.Context, sms, merchant, transactionType string) (*mlclient.Correction, error)
}

// Pipeline is the parsing orchestrator. It is stateless per request and
// safe for concurrent use.
type Pipeline struct {
	rules     *parser.Set
	predictor Predictor
	validator Validator
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New creates a pipeline. The validator may be nil, which disables the
// correction step; a nil metrics disables recording.
func New(rules *parser.Set, predictor Predictor, validator Validator, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	if rules == nil {
		rules = parser.NewSet()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Pipeline{
		rules:     rules,
		predictor: predictor,
		validator: validator,
		logger:    logger,
		metrics:   m,
	}
}

// Parse runs the full fallback/merge state machine over one message:
//
//  1. Try the rule set; the first matching rule yields the working record.
//  2. A record lacking merchant or transaction type is incomplete and
//     triggers the prediction fallback; prediction values win field by
//     field, with defaults filling whatever remains unset.
//  3. A complete rule match instead goes through the optional validation
//     correction, which may overwrite merchant and transaction type.
//  4. If no record exists after all steps, the message is unparseable.
//
// Rule matching always completes before any network call, and the
// prediction and validation branches are mutually exclusive.
func (p *Pipeline) Parse(ctx context.Context, sms string) (*models.ParsedTransaction, error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordParseDuration(time.Since(start).Seconds())
	}()

	record, ruleName, matched := p.rules.Match(sms)
	if matched {
		p.metrics.RecordRuleMatch(ruleName)
		p.logger.Debug("rule matched", "rule", ruleName)
	} else {
		p.logger.Debug("no rule matched, falling back to prediction")
	}

	predicted := false
	if !record.Complete() {
		if pred := p.predict(ctx, sms); pred != nil {
			record = mergePrediction(record, pred)
			predicted = true
		}
	} else if p.validator != nil {
		if corr := p.validate(ctx, sms, *record.Merchant); corr != nil {
			if corr.Merchant != nil {
				record.Merchant = corr.Merchant
			}
			if corr.TransactionType != nil {
				record.TransactionType = corr.TransactionType
			}
		}
	}

	if record == nil {
		p.metrics.RecordParseOutcome("unparseable")
		p.logger.Info("message unparseable")
		return nil, ErrUnparseable
	}

	record.FraudFlags = mergeFlags(fraud.Scan(sms), record.FraudFlags)

	outcome := "rule_match"
	if predicted {
		outcome = "prediction"
	}
	p.metrics.RecordParseOutcome(outcome)
	p.logger.Info("message parsed", "outcome", outcome, "fraud_hits", len(record.FraudFlags))
	return record, nil
}

// predict invokes the predictor, absorbing any failure.
func (p *Pipeline) predict(ctx context.Context, sms string) *models.ParsedTransaction {
	if p.predictor == nil {
		return nil
	}
	start := time.Now()
	pred, err := p.predictor.Predict(ctx, sms)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		p.metrics.RecordExternalCall("prediction", "error", elapsed)
		p.logger.Warn("prediction failed", "error", err)
		return nil
	}
	p.metrics.RecordExternalCall("prediction", "ok", elapsed)
	return pred
}

// validate invokes the correction service, absorbing any failure. The
// transaction-type guess is inferred from the message text, not from the
// working record.
func (p *Pipeline) validate(ctx context.Context, sms, merchant string) *mlclient.Correction {
	start := time.Now()
	corr, err := p.validator.Validate(ctx, sms, merchant, guessDirection(sms))
	elapsed := time.Since(start).Seconds()
	if err != nil {
		p.metrics.RecordExternalCall("validation", "error", elapsed)
		p.logger.Warn("validation failed, keeping rule-derived fields", "error", err)
		return nil
	}
	p.metrics.RecordExternalCall("validation", "ok", elapsed)
	return corr
}

// guessDirection returns the transaction-type guess supplied to the
// validation service: "Debit" when the message mentions "debited",
// otherwise "Credit".
func guessDirection(sms string) string {
	if strings.Contains(strings.ToLower(sms), "debited") {
		return "Debit"
	}
	return "Credit"
}

// mergePrediction reconciles a rule-derived record (possibly nil) with a
// prediction. For each field, the prediction's value wins when present,
// the rule value stands otherwise, and a type-appropriate default fills
// whatever is left unset.
func mergePrediction(rule, pred *models.ParsedTransaction) *models.ParsedTransaction {
	if rule == nil {
		rule = &models.ParsedTransaction{}
	}
	out := &models.ParsedTransaction{
		Amount:          pred.Amount,
		AccountNumber:   pred.AccountNumber,
		Merchant:        pred.Merchant,
		Date:            pred.Date,
		ReferenceNumber: pred.ReferenceNumber,
		TransactionType: pred.TransactionType,
		FraudFlags:      pred.FraudFlags,
	}
	if out.Amount == nil {
		out.Amount = rule.Amount
	}
	if out.AccountNumber == nil {
		out.AccountNumber = rule.AccountNumber
	}
	if out.Merchant == nil {
		out.Merchant = rule.Merchant
	}
	if out.Date == nil {
		out.Date = rule.Date
	}
	if out.ReferenceNumber == nil {
		out.ReferenceNumber = rule.ReferenceNumber
	}
	if out.TransactionType == nil {
		out.TransactionType = rule.TransactionType
	}
	if out.FraudFlags == nil {
		out.FraudFlags = rule.FraudFlags
	}

	// Defaults for the two fields the completeness gate cares about.
	if out.TransactionType == nil {
		out.TransactionType = models.StringPtr("unknown")
	}
	if out.Merchant == nil {
		out.Merchant = models.StringPtr("Unknown")
	}
	if out.FraudFlags == nil {
		out.FraudFlags = []string{}
	}
	return out
}

// mergeFlags combines scanner hits with any prediction-supplied flags,
// dropping duplicates and preserving scanner order first.
func mergeFlags(scanned, existing []string) []string {
	seen := make(map[string]bool, len(scanned)+len(existing))
	out := make([]string, 0, len(scanned)+len(existing))
	for _, f := range append(scanned, existing...) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
