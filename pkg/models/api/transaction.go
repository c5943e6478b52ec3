package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is the service's transaction representation.
type Transaction struct {
	ID           int64           `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	MerchantID   string          `json:"merchant_id"`
	CustomerID   string          `json:"customer_id"`
	Timestamp    string          `json:"timestamp"` // see ParseTimestamp
	IsFraudulent *bool           `json:"is_fraudulent"`
	FraudScore   *float64        `json:"fraud_score"`
}

type CreateTransactionRequest struct {
	Amount     json.Number `json:"amount"`
	MerchantID string      `json:"merchant_id"`
	CustomerID string      `json:"customer_id"`
}

type AnalyzeFraudRequest struct {
	TransactionID int64 `json:"transaction_id"`
}

type AnalyzeFraudResponse struct {
	FraudScore    float64 `json:"fraud_score"`
	TransactionID *int64  `json:"transaction_id,omitempty"`
}

type TrainingResults struct {
	FinalLoss float64 `json:"final_loss"`
}

type TrainResponse struct {
	Status  string          `json:"status"`
	Results TrainingResults `json:"results"`
}

// ErrorResponse is the service error body. Detail is either a string or a list of
// validation issues.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type ValidationIssue struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}
