package paymentsrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourney/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) Create(ctx context.Context, t *Transaction) error {
	if err := r.q.QueryRow(ctx, `
		INSERT INTO payment_transactions
			(txn_id, booking_id, amount, currency, product_info, first_name, email, phone)
		VALUES ($1, $2, $3::numeric, COALESCE(NULLIF($4, ''), 'INR'), $5, $6, $7, $8)
		RETURNING id, currency, created_at
	`, t.TxnID, t.BookingID, t.Amount, t.Currency, t.ProductInfo, t.FirstName, t.Email, t.Phone).
		Scan(&t.ID, &t.Currency, &t.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return dbx.ErrConflict
		}
		return fmt.Errorf("create payment transaction: %w", err)
	}
	return nil
}

// GetByTxnID returns nil, nil when the txnid is unknown.
func (r *Repository) GetByTxnID(ctx context.Context, txnID string) (*Transaction, error) {
	var t Transaction
	err := r.q.QueryRow(ctx, `
		SELECT id, txn_id, booking_id, amount::text, currency, product_info,
		       first_name, email, phone, created_at
		FROM payment_transactions WHERE txn_id=$1
	`, txnID).Scan(
		&t.ID, &t.TxnID, &t.BookingID, &t.Amount, &t.Currency, &t.ProductInfo,
		&t.FirstName, &t.Email, &t.Phone, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment transaction: %w", err)
	}
	return &t, nil
}

func (r *Repository) ListPendingAttempts(ctx context.Context, createdBefore time.Time, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, `
		SELECT t.id, t.txn_id, t.booking_id, t.amount::text, t.currency, t.product_info,
		       t.first_name, t.email, t.phone, t.created_at
		  FROM payment_transactions t
		  JOIN registrations reg ON reg.booking_id = t.booking_id
		 WHERE reg.status='pending'
		   AND t.created_at < $1::timestamptz
		   AND t.created_at > $1::timestamptz - interval '1 day'
		 ORDER BY t.created_at ASC
		 LIMIT $2
	`, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending attempts: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.TxnID, &t.BookingID, &t.Amount, &t.Currency, &t.ProductInfo,
			&t.FirstName, &t.Email, &t.Phone, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
