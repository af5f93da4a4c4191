package postgresstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"voto/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT   NOT NULL,
	id         TEXT   NOT NULL,
	fields     TEXT[] NOT NULL,
	PRIMARY KEY (collection, id)
)`

// Store persists collections as rows of the records table. A collection is
// the set of rows sharing a collection name.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed record store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the records table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, collection string) (storage.Records, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM records WHERE collection = $1`, collection)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}
	defer rows.Close()

	records := storage.Records{}
	for rows.Next() {
		var (
			id     string
			fields pq.StringArray
		)
		if err := rows.Scan(&id, &fields); err != nil {
			return nil, fmt.Errorf("scan record in %s: %w", collection, err)
		}
		records[id] = []string(fields)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", collection, err)
	}
	return records, nil
}

// Save replaces the collection in a single transaction.
func (s *Store) Save(ctx context.Context, collection string, records storage.Records) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", collection, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("clear collection %s: %w", collection, err)
	}

	if len(records) > 0 {
		stmt, prepErr := tx.PrepareContext(ctx,
			`INSERT INTO records (collection, id, fields) VALUES ($1, $2, $3)`)
		if prepErr != nil {
			return fmt.Errorf("prepare insert %s: %w", collection, prepErr)
		}
		defer stmt.Close()

		for _, id := range records.IDs() {
			fields := records[id]
			if fields == nil {
				fields = []string{}
			}
			if _, err = stmt.ExecContext(ctx, collection, id, pq.Array(fields)); err != nil {
				return fmt.Errorf("insert record %s/%s: %w", collection, id, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save %s: %w", collection, err)
	}
	return nil
}
