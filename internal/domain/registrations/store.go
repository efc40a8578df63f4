package registrations

import (
	"context"
	"errors"
	"fmt"

	"tourney/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

const registrationColumns = `id, booking_id, event_id, team_name, category, player1, player2,
	preferred_venue, amount, status, txn_id, confirmed_at, created_at, updated_at`

func scanRegistration(row pgx.Row) (*Registration, error) {
	var r Registration
	err := row.Scan(
		&r.ID, &r.BookingID, &r.EventID, &r.TeamName, &r.Category, &r.Player1, &r.Player2,
		&r.PreferredVenue, &r.Amount, &r.Status, &r.TxnID, &r.ConfirmedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Repository) Create(ctx context.Context, reg *Registration) error {
	if reg.Status == "" {
		reg.Status = StatusPending
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO registrations
			(booking_id, event_id, team_name, category, player1, player2, preferred_venue, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, reg.BookingID, reg.EventID, reg.TeamName, reg.Category, reg.Player1, reg.Player2,
		reg.PreferredVenue, reg.Amount, reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return dbx.ErrConflict
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// GetByBookingID returns nil, nil when no registration has that booking id.
func (r *Repository) GetByBookingID(ctx context.Context, bookingID string) (*Registration, error) {
	reg, err := scanRegistration(r.q.QueryRow(ctx, `
		SELECT `+registrationColumns+` FROM registrations WHERE booking_id=$1
	`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// AttachTxn records txnID as the latest payment attempt of a pending
// registration.
func (r *Repository) AttachTxn(ctx context.Context, bookingID, txnID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE registrations
		   SET txn_id=$2, updated_at=now()
		 WHERE booking_id=$1 AND status='pending'
	`, bookingID, txnID)
	if err != nil {
		return fmt.Errorf("attach txn to registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dbx.ErrNotFound
	}
	return nil
}

// ConfirmByTxnID confirms the pending registration the transaction was
// initiated for and records txnID as the paying attempt. Any attempt of the
// booking may confirm it, not only the latest one.
func (r *Repository) ConfirmByTxnID(ctx context.Context, txnID string) (*Registration, error) {
	reg, err := scanRegistration(r.q.QueryRow(ctx, `
		UPDATE registrations
		   SET status='confirmed', txn_id=$1, confirmed_at=now(), updated_at=now()
		 WHERE status='pending'
		   AND (booking_id = (SELECT booking_id FROM payment_transactions WHERE txn_id=$1)
		        OR txn_id=$1)
		RETURNING `+registrationColumns, txnID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("confirm registration: %w", err)
	}
	return reg, nil
}
