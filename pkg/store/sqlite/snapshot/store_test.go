package snapshot

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/de-tools/fraud-atlas/pkg/store/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store, err := NewStore(db, "default")
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		mock:  mock,
		store: store,
	}
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }

func amount(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		FetchedAt: time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC),
		Transactions: []domain.Transaction{
			{
				ID:           1,
				Amount:       amount("100.25"),
				MerchantID:   "m1",
				CustomerID:   "c1",
				Timestamp:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
				IsFraudulent: boolPtr(false),
			},
			{
				ID:           2,
				Amount:       amount("300"),
				MerchantID:   "m2",
				CustomerID:   "c2",
				Timestamp:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
				IsFraudulent: boolPtr(true),
				FraudScore:   floatPtr(0.93),
			},
		},
	}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		store, err := NewStore(nil, "default")
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("empty profile", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store, err := NewStore(db, "")
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestStore_Save(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		snap := sampleSnapshot()

		f.mock.ExpectBegin()
		f.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshots")).
			WithArgs("default", snap.FetchedAt, 2).
			WillReturnResult(sqlmock.NewResult(5, 1))
		prep := f.mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO snapshot_transactions"))
		prep.ExpectExec().
			WithArgs(int64(5), 0, int64(1), "100.25", "m1", "c1", snap.Transactions[0].Timestamp, false, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().
			WithArgs(int64(5), 1, int64(2), "300", "m2", "c2", snap.Transactions[1].Timestamp, true, 0.93).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectCommit()

		id, err := f.store.Save(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("empty snapshot", func(t *testing.T) {
		f := setupFixture(t)

		f.mock.ExpectBegin()
		f.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshots")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		f.mock.ExpectCommit()

		_, err := f.store.Save(context.Background(), domain.Snapshot{FetchedAt: time.Now()})
		require.NoError(t, err)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		f := setupFixture(t)

		f.mock.ExpectBegin()
		f.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshots")).
			WillReturnError(assert.AnError)
		f.mock.ExpectRollback()

		_, err := f.store.Save(context.Background(), sampleSnapshot())
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestStore_Latest(t *testing.T) {
	t.Run("no snapshot", func(t *testing.T) {
		f := setupFixture(t)

		f.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, fetched_at, transaction_count FROM snapshots")).
			WithArgs("default").
			WillReturnRows(sqlmock.NewRows([]string{"id", "fetched_at", "transaction_count"}))

		snap, err := f.store.Latest(context.Background())
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("returns rows in order", func(t *testing.T) {
		f := setupFixture(t)
		fetchedAt := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)
		ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

		f.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, fetched_at, transaction_count FROM snapshots")).
			WithArgs("default").
			WillReturnRows(sqlmock.NewRows([]string{"id", "fetched_at", "transaction_count"}).
				AddRow(int64(5), fetchedAt, 2))
		f.mock.ExpectQuery(regexp.QuoteMeta("FROM snapshot_transactions")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "amount", "merchant_id", "customer_id", "timestamp", "is_fraudulent", "fraud_score",
			}).
				AddRow(int64(1), "100.25", "m1", "c1", ts, false, nil).
				AddRow(int64(2), "300", "m2", "c2", ts, nil, 0.93))

		snap, err := f.store.Latest(context.Background())
		require.NoError(t, err)
		require.NotNil(t, snap)
		require.Len(t, snap.Transactions, 2)
		assert.True(t, fetchedAt.Equal(snap.FetchedAt))
		assert.True(t, amount("100.25").Equal(snap.Transactions[0].Amount))
		require.NotNil(t, snap.Transactions[0].IsFraudulent)
		assert.False(t, *snap.Transactions[0].IsFraudulent)
		assert.Nil(t, snap.Transactions[0].FraudScore)
		assert.Nil(t, snap.Transactions[1].IsFraudulent)
		require.NotNil(t, snap.Transactions[1].FraudScore)
		assert.Equal(t, 0.93, *snap.Transactions[1].FraudScore)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestStore_Prune(t *testing.T) {
	f := setupFixture(t)

	t.Run("invalid keep", func(t *testing.T) {
		assert.Error(t, f.store.Prune(context.Background(), 0))
	})

	t.Run("deletes older snapshots", func(t *testing.T) {
		f.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM snapshots")).
			WithArgs("default", "default", 3).
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, f.store.Prune(context.Background(), 3))
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestStore_RoundTrip(t *testing.T) {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: filepath.Join(t.TempDir(), "cache.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	store, err := NewStore(db, "default")
	require.NoError(t, err)
	ctx := context.Background()

	want := sampleSnapshot()
	_, err = store.Save(ctx, want)
	require.NoError(t, err)

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Transactions, len(want.Transactions))
	for i := range want.Transactions {
		assert.Equal(t, want.Transactions[i].ID, got.Transactions[i].ID)
		assert.True(t, want.Transactions[i].Amount.Equal(got.Transactions[i].Amount))
		assert.True(t, want.Transactions[i].Timestamp.Equal(got.Transactions[i].Timestamp))
		assert.Equal(t, want.Transactions[i].IsFraudulent, got.Transactions[i].IsFraudulent)
		assert.Equal(t, want.Transactions[i].FraudScore, got.Transactions[i].FraudScore)
	}

	other, err := NewStore(db, "staging")
	require.NoError(t, err)
	none, err := other.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)
}
