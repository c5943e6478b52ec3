package aggregate

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Engine derives the dashboard summary and the per-day series from a transaction list.
// The zero value buckets by the local calendar day and keeps first-occurrence order.
type Engine struct {
	// Location decides which calendar day a timestamp belongs to. Nil means time.Local.
	Location *time.Location
	// SortChronological orders the daily series by date instead of first occurrence.
	SortChronological bool
}

func NewEngine(loc *time.Location, sortChronological bool) Engine {
	return Engine{
		Location:          loc,
		SortChronological: sortChronological,
	}
}

// Aggregate never fails: an empty list yields zero statistics and an empty series.
func (e Engine) Aggregate(transactions []domain.Transaction) domain.Aggregate {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}

	var (
		fraudCount int
		sum        = decimal.Zero
		buckets    = make(map[civil.Date]int)
		order      = make([]civil.Date, 0)
	)
	for _, t := range transactions {
		if t.Fraudulent() {
			fraudCount++
		}
		sum = sum.Add(t.Amount)

		day := civil.DateOf(t.Timestamp.In(loc))
		if _, seen := buckets[day]; !seen {
			order = append(order, day)
		}
		buckets[day]++
	}

	if e.SortChronological {
		sort.SliceStable(order, func(i, j int) bool {
			return order[i].Before(order[j])
		})
	}

	daily := make([]domain.DailySeriesPoint, 0, len(order))
	for _, day := range order {
		daily = append(daily, domain.DailySeriesPoint{
			Date:             day,
			TransactionCount: buckets[day],
		})
	}

	return domain.Aggregate{
		Summary: summarize(len(transactions), fraudCount, sum),
		Daily:   daily,
	}
}

func summarize(total, fraudCount int, sum decimal.Decimal) domain.SummaryStatistics {
	stats := domain.SummaryStatistics{
		TotalCount:    total,
		FraudCount:    fraudCount,
		AverageAmount: decimal.Zero,
	}
	if total == 0 {
		return stats
	}
	stats.FraudRate = float64(fraudCount) / float64(total)
	stats.AverageAmount = sum.Div(decimal.NewFromInt(int64(total)))
	return stats
}
