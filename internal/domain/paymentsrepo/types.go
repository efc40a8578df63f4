package paymentsrepo

import (
	"context"
	"time"
)

// Transaction is the local copy of a payment attempt as it was sent to the
// gateway. The gateway owns its status; this row is written once.
type Transaction struct {
	ID          int64     `json:"id"`
	TxnID       string    `json:"txnid"`
	BookingID   *string   `json:"booking_id,omitempty"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	ProductInfo string    `json:"productinfo"`
	FirstName   string    `json:"firstname"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	// Create fails with dbx.ErrConflict when the txnid is already taken.
	Create(ctx context.Context, t *Transaction) error
	GetByTxnID(ctx context.Context, txnID string) (*Transaction, error)
	// ListPendingAttempts returns every attempt of a still-pending booking
	// created before createdBefore, oldest first. Attempts older than a day
	// before that are treated as abandoned.
	ListPendingAttempts(ctx context.Context, createdBefore time.Time, limit int) ([]Transaction, error)
}
