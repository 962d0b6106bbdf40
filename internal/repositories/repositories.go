// package repositories provides persistence for the batch journal and track snapshots.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// NextSequence increments and returns the sequence of table inside tx.
//
// The increment commits or rolls back with the row that uses it, so a failed insert leaves no gap.
func NextSequence(ctx context.Context, tx *sql.Tx, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := tx.QueryRowContext(ctx, query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
