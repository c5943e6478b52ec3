package api

import "time"

type Summary struct {
	TotalCount           int     `json:"total_count"`
	FraudCount           int     `json:"fraud_count"`
	FraudRate            float64 `json:"fraud_rate"`
	FraudRateDisplay     string  `json:"fraud_rate_display"`
	AverageAmount        float64 `json:"average_amount"`
	AverageAmountDisplay string  `json:"average_amount_display"`
}

type DailyPoint struct {
	Date         string `json:"date"`
	Transactions int    `json:"transactions"`
}

type Dashboard struct {
	Summary   Summary      `json:"summary"`
	Daily     []DailyPoint `json:"daily"`
	FetchedAt *time.Time   `json:"fetched_at,omitempty"`
	Loading   bool         `json:"loading"`
	Error     string       `json:"error,omitempty"`
}

type PageRequest struct {
	Page     *int `json:"page,omitempty"`
	PageSize *int `json:"page_size,omitempty"`
}

// TransactionRow is a table row with display strings already formatted.
type TransactionRow struct {
	ID         int64  `json:"id"`
	Amount     string `json:"amount"`
	MerchantID string `json:"merchant_id"`
	CustomerID string `json:"customer_id"`
	Timestamp  string `json:"timestamp"`
	Fraudulent string `json:"fraudulent"`
	FraudScore string `json:"fraud_score"`
}

type TransactionPage struct {
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int              `json:"total_count"`
	PageCount  int              `json:"page_count"`
	Rows       []TransactionRow `json:"rows"`
}

type Draft struct {
	Amount     string `json:"amount"`
	MerchantID string `json:"merchant_id"`
	CustomerID string `json:"customer_id"`
}

type DraftEdit struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type CreationStatus struct {
	State string `json:"state"`
	Draft Draft  `json:"draft"`
	Error string `json:"error,omitempty"`
}

type AnalysisRequest struct {
	TransactionID string `json:"transaction_id"`
}

type AnalysisResult struct {
	TransactionID int64   `json:"transaction_id"`
	FraudScore    float64 `json:"fraud_score"`
	ScoreDisplay  string  `json:"fraud_score_display"`
	RiskTier      string  `json:"risk_tier"`
	RiskLabel     string  `json:"risk_label"`
	HighRisk      bool    `json:"high_risk"`
}

type AnalysisStatus struct {
	State         string          `json:"state"`
	TransactionID string          `json:"transaction_id"`
	Result        *AnalysisResult `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
}

type TrainingResult struct {
	Status           string  `json:"status"`
	FinalLoss        float64 `json:"final_loss"`
	FinalLossDisplay string  `json:"final_loss_display"`
}

type TrainingStatus struct {
	State    string          `json:"state"`
	Progress int             `json:"progress"`
	Result   *TrainingResult `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
