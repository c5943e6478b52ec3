package store

import "time"

type Snapshot struct {
	ID        int64
	Profile   string
	FetchedAt time.Time
	Count     int
}

// TransactionRecord is one row of a persisted snapshot. Amount is kept as text so no
// precision is lost in sqlite.
type TransactionRecord struct {
	SnapshotID   int64
	ID           int64
	Amount       string
	MerchantID   string
	CustomerID   string
	Timestamp    time.Time
	IsFraudulent *bool
	FraudScore   *float64
}
