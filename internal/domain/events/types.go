package events

import (
	"context"
	"time"
)

type Event struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Description      string    `json:"description"`
	Venue            string    `json:"venue"`
	Date             time.Time `json:"date"`
	Time             string    `json:"time"`
	Price            float64   `json:"price"`
	AvailableTickets int       `json:"available_tickets"`
	Status           string    `json:"status"` // upcoming, ongoing, completed
	Featured         bool      `json:"featured"`
	ImageURL         *string   `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

const StatusCompleted = "completed"

// Open reports whether the event still takes registrations.
func (e *Event) Open() bool {
	return e.Status != StatusCompleted && e.AvailableTickets > 0
}

type Store interface {
	List(ctx context.Context, limit, offset int) ([]Event, int, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
}
