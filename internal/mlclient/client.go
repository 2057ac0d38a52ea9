// Package mlclient holds the outbound HTTP clients for the external
// statistical predictor and the validation correction service. Both
// services are unreliable collaborators: every transport error, timeout
// or malformed body is returned as an error for the caller to absorb,
// and no call blocks past the configured timeout.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/sms-transaction-parser/internal/models"
)

// DefaultTimeout bounds a single outbound call. No retries are
// performed; on expiry the pipeline proceeds with what it has.
const DefaultTimeout = 5 * time.Second

type smsRequest struct {
	SMS string `json:"sms"`
}

// PredictionClient calls the external statistical predictor.
type PredictionClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPredictionClient creates a prediction client for the given
// endpoint. A nil httpClient gets the default bounded timeout.
func NewPredictionClient(url string, httpClient *http.Client, logger *slog.Logger) *PredictionClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &PredictionClient{url: url, httpClient: httpClient, logger: logger}
}

// predictResponse mirrors the predictor's body: a data object keyed by
// amount, account (or accountNumber), merchant, date, referenceNumber
// and transactionType. Any other shape is a failed call.
type predictResponse struct {
	Success bool         `json:"success"`
	Data    *predictData `json:"data"`
}

type predictData struct {
	Amount          *decimal.Decimal `json:"amount"`
	Account         *string          `json:"account"`
	AccountNumber   *string          `json:"accountNumber"`
	Merchant        *string          `json:"merchant"`
	Date            *string          `json:"date"`
	ReferenceNumber *string          `json:"referenceNumber"`
	TransactionType *flexString      `json:"transactionType"`
	FraudFlags      []string         `json:"fraudFlags"`
}

// Predict sends the raw message to the predictor and returns a partial
// record. Absent fields stay nil; empty strings are treated as absent.
func (c *PredictionClient) Predict(ctx context.Context, sms string) (*models.ParsedTransaction, error) {
	body, err := json.Marshal(smsRequest{SMS: sms})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction service returned status %d", resp.StatusCode)
	}

	var payload predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed prediction response: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("prediction response missing data object")
	}

	d := payload.Data
	record := &models.ParsedTransaction{
		Amount:          d.Amount,
		AccountNumber:   nonEmpty(firstPtr(d.Account, d.AccountNumber)),
		Merchant:        nonEmpty(d.Merchant),
		Date:            nonEmpty(d.Date),
		ReferenceNumber: nonEmpty(d.ReferenceNumber),
		FraudFlags:      d.FraudFlags,
	}
	if d.TransactionType != nil && *d.TransactionType != "" {
		record.TransactionType = models.StringPtr(string(*d.TransactionType))
	}

	c.logger.Debug("prediction received",
		"merchant", deref(record.Merchant),
		"transaction_type", deref(record.TransactionType),
	)
	return record, nil
}

// ValidationClient cross-checks a rule-derived merchant and transaction
// type against the correction service.
type ValidationClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewValidationClient creates a validation client for the given
// endpoint. A nil httpClient gets the default bounded timeout.
func NewValidationClient(url string, httpClient *http.Client, logger *slog.Logger) *ValidationClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &ValidationClient{url: url, httpClient: httpClient, logger: logger}
}

// Correction holds the validation service's opinion. Either field may
// be absent, in which case the rule-derived value stands.
type Correction struct {
	Merchant        *string `json:"final_merchant"`
	TransactionType *string `json:"final_transaction_type"`
}

type validateRequest struct {
	SMS                  string `json:"sms"`
	RegexMerchant        string `json:"regex_merchant"`
	RegexTransactionType string `json:"regex_transaction_type"`
}

// Validate submits the rule-derived merchant and transaction-type guess
// ("Debit" or "Credit") and returns any corrected values.
func (c *ValidationClient) Validate(ctx context.Context, sms, merchant, transactionType string) (*Correction, error) {
	body, err := json.Marshal(validateRequest{
		SMS:                  sms,
		RegexMerchant:        merchant,
		RegexTransactionType: transactionType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("validation service returned status %d", resp.StatusCode)
	}

	var correction Correction
	if err := json.NewDecoder(resp.Body).Decode(&correction); err != nil {
		return nil, fmt.Errorf("malformed validation response: %w", err)
	}
	correction.Merchant = nonEmpty(correction.Merchant)
	correction.TransactionType = nonEmpty(correction.TransactionType)
	return &correction, nil
}

// flexString accepts either a JSON string or a JSON number. The
// reference predictor returns the raw classifier label as a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func firstPtr(ptrs ...*string) *string {
	for _, p := range ptrs {
		if p != nil {
			return p
		}
	}
	return nil
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
