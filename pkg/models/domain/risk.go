package domain

import "fmt"

type RiskTier int

const (
	RiskLow RiskTier = iota
	RiskMedium
	RiskHigh
)

// Tier thresholds are exclusive: a score of exactly 0.7 is still Medium.
const (
	HighRiskThreshold   = 0.7
	MediumRiskThreshold = 0.3
)

func ClassifyRisk(score float64) RiskTier {
	switch {
	case score > HighRiskThreshold:
		return RiskHigh
	case score > MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

func (r RiskTier) String() string {
	switch r {
	case RiskHigh:
		return "High"
	case RiskMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// Label is the text shown on the risk card.
func (r RiskTier) Label() string {
	return r.String() + " Risk"
}

type AnalysisResult struct {
	TransactionID int64
	FraudScore    float64
	RiskTier      RiskTier
}

func NewAnalysisResult(transactionID int64, score float64) AnalysisResult {
	return AnalysisResult{
		TransactionID: transactionID,
		FraudScore:    score,
		RiskTier:      ClassifyRisk(score),
	}
}

// ScoreDisplay renders the score as a percentage, e.g. 0.82 -> "82.00%".
func (a AnalysisResult) ScoreDisplay() string {
	return fmt.Sprintf("%.2f%%", a.FraudScore*100)
}

type TrainingResult struct {
	Status    string
	FinalLoss float64
}

func (t TrainingResult) FinalLossDisplay() string {
	return fmt.Sprintf("%.4f", t.FinalLoss)
}
