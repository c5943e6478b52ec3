package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM snapshots").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = InTransaction(context.Background(), db, func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM snapshots")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err = InTransaction(context.Background(), db, func(tx *sql.Tx) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joins the transaction in the context", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		outer, err := db.Begin()
		require.NoError(t, err)
		ctx := WithTransaction(context.Background(), outer)

		var got *sql.Tx
		err = InTransaction(ctx, db, func(tx *sql.Tx) error {
			got = tx
			return nil
		})
		require.NoError(t, err)
		assert.Same(t, outer, got)
		// neither committed nor rolled back by the inner call
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
