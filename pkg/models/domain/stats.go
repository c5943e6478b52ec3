package domain

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// SummaryStatistics is derived from a snapshot and never stored on its own.
// FraudRate and AverageAmount stay zero for an empty list.
type SummaryStatistics struct {
	TotalCount    int
	FraudCount    int
	FraudRate     float64 // fraction in [0,1]
	AverageAmount decimal.Decimal
}

func (s SummaryStatistics) FraudRateDisplay() string {
	return fmt.Sprintf("%.2f%%", s.FraudRate*100)
}

func (s SummaryStatistics) AverageAmountDisplay() string {
	return s.AverageAmount.StringFixed(2)
}

type DailySeriesPoint struct {
	Date             civil.Date
	TransactionCount int
}

type Aggregate struct {
	Summary SummaryStatistics
	Daily   []DailySeriesPoint
}

// SeriesTotal is the sum of all bucket counts; it equals Summary.TotalCount.
func (a Aggregate) SeriesTotal() int {
	total := 0
	for _, p := range a.Daily {
		total += p.TransactionCount
	}
	return total
}
