package adapters

import (
	"fmt"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
)

func MapAggregateToReport(source string, snap domain.Snapshot, agg domain.Aggregate) *domain.Report {
	report := &domain.Report{
		Title:     "Fraud Dashboard",
		Source:    source,
		FetchedAt: snap.FetchedAt,
		Period:    seriesPeriod(agg.Daily),
	}

	report.Sections = append(report.Sections, domain.ReportSection{
		Title: "Summary",
		Details: []domain.ReportDetail{
			{Name: "Total Transactions", Value: agg.Summary.TotalCount},
			{Name: "Fraudulent Transactions", Value: agg.Summary.FraudCount},
			{Name: "Average Amount", Value: agg.Summary.AverageAmountDisplay(), Unit: "$"},
			{Name: "Fraud Rate", Value: agg.Summary.FraudRateDisplay()},
		},
	})

	daily := domain.ReportSection{Title: "Daily Transactions"}
	for _, p := range agg.Daily {
		daily.Details = append(daily.Details, domain.ReportDetail{
			Name:        p.Date.String(),
			Value:       p.TransactionCount,
			Unit:        "txn",
			Description: p.Date.In(time.UTC).Weekday().String(),
		})
	}
	report.Sections = append(report.Sections, daily)

	return report
}

func MapAnalysisToReport(r domain.AnalysisResult) *domain.Report {
	return &domain.Report{
		Title: fmt.Sprintf("Fraud Analysis #%d", r.TransactionID),
		Sections: []domain.ReportSection{{
			Title: "Analysis Results",
			Details: []domain.ReportDetail{
				{Name: "Fraud Score", Value: r.ScoreDisplay()},
				{Name: "Risk Level", Value: r.RiskTier.Label()},
			},
		}},
	}
}

func MapTrainingToReport(r domain.TrainingResult) *domain.Report {
	return &domain.Report{
		Title: "Model Training",
		Sections: []domain.ReportSection{{
			Title: "Training Results",
			Details: []domain.ReportDetail{
				{Name: "Status", Value: r.Status},
				{Name: "Final Loss", Value: r.FinalLossDisplay()},
			},
		}},
	}
}

// seriesPeriod ignores order so it works for unsorted series too.
func seriesPeriod(points []domain.DailySeriesPoint) domain.TimePeriod {
	if len(points) == 0 {
		return domain.TimePeriod{}
	}
	first, last := points[0].Date, points[0].Date
	for _, p := range points[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}
		if p.Date.After(last) {
			last = p.Date
		}
	}
	return domain.TimePeriod{
		Start: first.In(time.UTC),
		End:   last.In(time.UTC),
		Days:  last.DaysSince(first) + 1,
	}
}
