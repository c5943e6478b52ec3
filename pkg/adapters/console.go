package adapters

import (
	"fmt"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/api"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
)

const (
	rowTimeLayout = "2006-01-02 15:04:05"
	notScored     = "N/A"
)

func MapAggregateToApi(a domain.Aggregate) api.Dashboard {
	avg, _ := a.Summary.AverageAmount.Float64()
	res := api.Dashboard{
		Summary: api.Summary{
			TotalCount:           a.Summary.TotalCount,
			FraudCount:           a.Summary.FraudCount,
			FraudRate:            a.Summary.FraudRate,
			FraudRateDisplay:     a.Summary.FraudRateDisplay(),
			AverageAmount:        avg,
			AverageAmountDisplay: a.Summary.AverageAmountDisplay(),
		},
		Daily: make([]api.DailyPoint, 0, len(a.Daily)),
	}
	for _, p := range a.Daily {
		res.Daily = append(res.Daily, api.DailyPoint{
			Date:         p.Date.String(),
			Transactions: p.TransactionCount,
		})
	}
	return res
}

// MapTransactionToRow formats a transaction the way the table shows it. Timestamps are
// rendered in loc.
func MapTransactionToRow(t domain.Transaction, loc *time.Location) api.TransactionRow {
	if loc == nil {
		loc = time.Local
	}
	fraudulent := "No"
	if t.Fraudulent() {
		fraudulent = "Yes"
	}
	score := notScored
	if t.FraudScore != nil {
		score = fmt.Sprintf("%.2f", *t.FraudScore)
	}

	return api.TransactionRow{
		ID:         t.ID,
		Amount:     "$" + t.Amount.String(),
		MerchantID: t.MerchantID,
		CustomerID: t.CustomerID,
		Timestamp:  t.Timestamp.In(loc).Format(rowTimeLayout),
		Fraudulent: fraudulent,
		FraudScore: score,
	}
}

func MapPageViewToApi(p domain.PageView, loc *time.Location) api.TransactionPage {
	res := api.TransactionPage{
		Page:       p.PageIndex,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		PageCount:  p.PageCount,
		Rows:       make([]api.TransactionRow, 0, len(p.Rows)),
	}
	for _, t := range p.Rows {
		res.Rows = append(res.Rows, MapTransactionToRow(t, loc))
	}
	return res
}

func MapDraftToApi(d domain.TransactionDraft) api.Draft {
	return api.Draft{
		Amount:     d.Amount,
		MerchantID: d.MerchantID,
		CustomerID: d.CustomerID,
	}
}

func MapCreationStatusToApi(s domain.CreationStatus) api.CreationStatus {
	return api.CreationStatus{
		State: string(s.State),
		Draft: MapDraftToApi(s.Draft),
		Error: s.Error,
	}
}

func MapAnalysisResultToApi(r domain.AnalysisResult) api.AnalysisResult {
	return api.AnalysisResult{
		TransactionID: r.TransactionID,
		FraudScore:    r.FraudScore,
		ScoreDisplay:  r.ScoreDisplay(),
		RiskTier:      r.RiskTier.String(),
		RiskLabel:     r.RiskTier.Label(),
		HighRisk:      r.RiskTier == domain.RiskHigh,
	}
}

func MapAnalysisStatusToApi(s domain.AnalysisStatus) api.AnalysisStatus {
	res := api.AnalysisStatus{
		State:         string(s.State),
		TransactionID: s.TransactionID,
		Error:         s.Error,
	}
	if s.Result != nil {
		r := MapAnalysisResultToApi(*s.Result)
		res.Result = &r
	}
	return res
}

func MapTrainingStatusToApi(s domain.TrainingStatus) api.TrainingStatus {
	res := api.TrainingStatus{
		State:    string(s.State),
		Progress: s.Progress,
		Error:    s.Error,
	}
	if s.Result != nil {
		res.Result = &api.TrainingResult{
			Status:           s.Result.Status,
			FinalLoss:        s.Result.FinalLoss,
			FinalLossDisplay: s.Result.FinalLossDisplay(),
		}
	}
	return res
}
