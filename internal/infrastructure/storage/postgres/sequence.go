package postgres

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/domain/documents"
)

// SequenceRepo issues sequential document numbers from a per-prefix,
// per-year counter table. The upsert-returning statement makes the
// increment atomic without an explicit lock.
type SequenceRepo struct {
	txManager *TxManager
}

// NewSequenceRepo creates the number source.
func NewSequenceRepo(txManager *TxManager) *SequenceRepo {
	return &SequenceRepo{txManager: txManager}
}

var _ documents.NumberSource = (*SequenceRepo)(nil)

// Next returns the next number for the prefix, formatted as
// "SI-2024-000042". The counter restarts each year.
func (r *SequenceRepo) Next(ctx context.Context, prefix string, date time.Time) (string, error) {
	sql := `
		INSERT INTO doc_numbers (prefix, period, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, period) DO UPDATE SET counter = doc_numbers.counter + 1
		RETURNING counter
	`

	period := date.Year()

	var counter int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, prefix, period).Scan(&counter); err != nil {
		return "", fmt.Errorf("next number for %s: %w", prefix, err)
	}

	return fmt.Sprintf("%s-%d-%06d", prefix, period, counter), nil
}
