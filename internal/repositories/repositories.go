package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Querier is satisfied by both [sql.DB] and [sql.Tx].
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence increments and returns the counter kept in the table's "<table>_sequence" row.
//
// Run it inside the transaction that inserts the row so a failed insert does not use up a number.
func NextSequence(q Querier, table string) (int, error) {
	var sequence int
	err := q.QueryRow(fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)).
		Scan(&sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sequence for %s is not initialized", table)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}

// InTx runs fn in a transaction, committing when it returns nil and rolling back otherwise.
func InTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
