package domain

import "time"

// Report is a rendered-agnostic view of the dashboard for text reporters.
type Report struct {
	Title     string
	Source    string
	FetchedAt time.Time
	Period    TimePeriod
	Sections  []ReportSection
}

// TimePeriod spans the first and last calendar day present in the data.
type TimePeriod struct {
	Start time.Time
	End   time.Time
	Days  int
}

func (p TimePeriod) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

type ReportSection struct {
	Title   string
	Details []ReportDetail
}

type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
