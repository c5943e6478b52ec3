package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a record fetched from the analytics service. It is never mutated after fetch.
type Transaction struct {
	ID           int64
	Amount       decimal.Decimal
	MerchantID   string
	CustomerID   string
	Timestamp    time.Time
	IsFraudulent *bool    // nil until the service has labelled it
	FraudScore   *float64 // nil means "not yet scored"
}

// Fraudulent treats an unknown label as not fraudulent.
func (t Transaction) Fraudulent() bool {
	return t.IsFraudulent != nil && *t.IsFraudulent
}

type DraftField string

const (
	DraftFieldAmount     DraftField = "amount"
	DraftFieldMerchantID DraftField = "merchant_id"
	DraftFieldCustomerID DraftField = "customer_id"
)

// TransactionDraft holds the operator's unsaved input for one creation attempt.
type TransactionDraft struct {
	Amount     string
	MerchantID string
	CustomerID string
}

func (d *TransactionDraft) Set(field DraftField, value string) error {
	switch field {
	case DraftFieldAmount:
		d.Amount = value
	case DraftFieldMerchantID:
		d.MerchantID = value
	case DraftFieldCustomerID:
		d.CustomerID = value
	default:
		return &ValidationError{Field: string(field), Message: fmt.Sprintf("unknown draft field %q", field)}
	}
	return nil
}

func (d TransactionDraft) Get(field DraftField) (string, error) {
	switch field {
	case DraftFieldAmount:
		return d.Amount, nil
	case DraftFieldMerchantID:
		return d.MerchantID, nil
	case DraftFieldCustomerID:
		return d.CustomerID, nil
	default:
		return "", &ValidationError{Field: string(field), Message: fmt.Sprintf("unknown draft field %q", field)}
	}
}

func (d TransactionDraft) IsEmpty() bool {
	return d == TransactionDraft{}
}

// Validate only checks that the amount is a number. Everything else is up to the service.
func (d TransactionDraft) Validate() error {
	amount := strings.TrimSpace(d.Amount)
	if amount == "" {
		return &ValidationError{Field: string(DraftFieldAmount), Message: "Amount is required"}
	}
	if _, err := decimal.NewFromString(amount); err != nil {
		return &ValidationError{Field: string(DraftFieldAmount), Message: "Amount must be a number"}
	}
	return nil
}

// ParsedAmount returns the draft amount as a decimal. Call Validate first.
func (d TransactionDraft) ParsedAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(d.Amount))
}

// Snapshot is the most recent successful fetch of the transaction list.
type Snapshot struct {
	Transactions []Transaction
	FetchedAt    time.Time
}

func (s Snapshot) Len() int {
	return len(s.Transactions)
}
