package paymentsrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"tourney/internal/infra/dbx"
)

type LogsRepository struct{ q dbx.Querier }

func NewLogsRepository(q dbx.Querier) *LogsRepository {
	return &LogsRepository{q: q}
}

// InsertPaymentLog appends one audit row. Payloads that fail to marshal are
// stored as NULL rather than dropping the row.
func (r *LogsRepository) InsertPaymentLog(ctx context.Context, txnID string, logType string, payload any) error {
	var jb []byte
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			jb = b
		}
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_logs (txn_id, log_type, payload)
		VALUES ($1, $2, $3)
	`, txnID, logType, jb)
	if err != nil {
		return fmt.Errorf("insert payment_log: %w", err)
	}
	return nil
}
