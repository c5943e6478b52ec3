package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/de-tools/fraud-atlas/pkg/models/store"
	"github.com/de-tools/fraud-atlas/pkg/store/sqlite"
)

// Store keeps fetched snapshots so the dashboard can be rendered without the service.
type Store interface {
	Save(ctx context.Context, snap domain.Snapshot) (int64, error)
	// Latest returns nil when nothing has been saved yet.
	Latest(ctx context.Context) (*domain.Snapshot, error)
	Prune(ctx context.Context, keep int) error
}

type snapshotStore struct {
	db      *sql.DB
	profile string
}

func NewStore(db *sql.DB, profile string) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if profile == "" {
		return nil, fmt.Errorf("profile is required")
	}
	return &snapshotStore{
		db:      db,
		profile: profile,
	}, nil
}

func (s *snapshotStore) Save(ctx context.Context, snap domain.Snapshot) (int64, error) {
	var snapshotID int64
	err := sqlite.InTransaction(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (profile, fetched_at, transaction_count) VALUES (?, ?, ?)`,
			s.profile, snap.FetchedAt.UTC(), len(snap.Transactions),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		snapshotID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("snapshot id: %w", err)
		}
		if len(snap.Transactions) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snapshot_transactions (
				snapshot_id, position, id, amount, merchant_id, customer_id,
				timestamp, is_fraudulent, fraud_score
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, t := range snap.Transactions {
			record := adapters.MapDomainTransactionToStore(snapshotID, t)
			_, err = stmt.ExecContext(ctx,
				record.SnapshotID,
				i,
				record.ID,
				record.Amount,
				record.MerchantID,
				record.CustomerID,
				record.Timestamp,
				nullBool(record.IsFraudulent),
				nullFloat(record.FraudScore),
			)
			if err != nil {
				return fmt.Errorf("insert transaction %d: %w", record.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return snapshotID, nil
}

func (s *snapshotStore) Latest(ctx context.Context) (*domain.Snapshot, error) {
	var meta store.Snapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fetched_at, transaction_count FROM snapshots WHERE profile = ? ORDER BY id DESC LIMIT 1`,
		s.profile,
	).Scan(&meta.ID, &meta.FetchedAt, &meta.Count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, merchant_id, customer_id, timestamp, is_fraudulent, fraud_score
		FROM snapshot_transactions
		WHERE snapshot_id = ?
		ORDER BY position`, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, meta.Count)
	for rows.Next() {
		var (
			record     store.TransactionRecord
			fraudulent sql.NullBool
			score      sql.NullFloat64
		)
		if err := rows.Scan(
			&record.ID,
			&record.Amount,
			&record.MerchantID,
			&record.CustomerID,
			&record.Timestamp,
			&fraudulent,
			&score,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if fraudulent.Valid {
			record.IsFraudulent = &fraudulent.Bool
		}
		if score.Valid {
			record.FraudScore = &score.Float64
		}

		t, err := adapters.MapStoreTransactionToDomain(record)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return &domain.Snapshot{
		Transactions: transactions,
		FetchedAt:    meta.FetchedAt.In(time.Local),
	}, nil
}

func (s *snapshotStore) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		return fmt.Errorf("keep must be positive, got %d", keep)
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE profile = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE profile = ? ORDER BY id DESC LIMIT ?
		)`, s.profile, s.profile, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
