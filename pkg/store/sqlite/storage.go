package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const SnapshotsSchema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL,
		transaction_count INTEGER NOT NULL
	);
`

const TransactionsSchema = `
	CREATE TABLE IF NOT EXISTS snapshot_transactions (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		merchant_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		is_fraudulent BOOLEAN NULL,
		fraud_score REAL NULL,
		PRIMARY KEY (snapshot_id, position)
	);
`

var bootQueries = []string{
	SnapshotsSchema,
	TransactionsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if settings.DbPath == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", settings.DbPath))
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	for _, query := range bootQueries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	return db, nil
}
