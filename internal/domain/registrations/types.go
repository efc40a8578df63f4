package registrations

import (
	"context"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

type Player struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"` // 2006-01-02
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email,omitempty"`
	IDProof     string `json:"id_proof,omitempty"`
}

// Registration is a two-player team entered into one event.
type Registration struct {
	ID             int64      `json:"id"`
	BookingID      string     `json:"booking_id"`
	EventID        int64      `json:"event_id"`
	TeamName       string     `json:"team_name"`
	Category       string     `json:"category"`
	Player1        Player     `json:"player1"`
	Player2        Player     `json:"player2"`
	PreferredVenue string     `json:"preferred_venue,omitempty"`
	Amount         float64    `json:"amount"`
	Status         string     `json:"status"`
	TxnID          *string    `json:"txnid,omitempty"` // latest payment attempt
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ContactEmail is where booking mail goes: the first player email given.
func (r *Registration) ContactEmail() string {
	if r.Player1.Email != "" {
		return r.Player1.Email
	}
	return r.Player2.Email
}

type Store interface {
	Create(ctx context.Context, r *Registration) error
	GetByBookingID(ctx context.Context, bookingID string) (*Registration, error)
	AttachTxn(ctx context.Context, bookingID, txnID string) error
	// ConfirmByTxnID confirms the pending registration txnID was initiated
	// for. It returns nil, nil when no pending registration owns that txnid.
	ConfirmByTxnID(ctx context.Context, txnID string) (*Registration, error)
}
