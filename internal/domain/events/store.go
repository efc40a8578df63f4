package events

import (
	"context"
	"errors"
	"fmt"

	"tourney/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

const eventColumns = `id, name, category, description, venue, event_date, event_time,
	price, available_tickets, status, featured, image_url, created_at`

func scanEvent(row pgx.Row, e *Event, extra ...any) error {
	dest := []any{
		&e.ID, &e.Name, &e.Category, &e.Description, &e.Venue, &e.Date, &e.Time,
		&e.Price, &e.AvailableTickets, &e.Status, &e.Featured, &e.ImageURL, &e.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// List returns one page of events, featured and soonest first, together
// with the total count for pagination.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Event, int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+eventColumns+`, COUNT(*) OVER() AS total_count
		FROM events
		ORDER BY featured DESC, event_date ASC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	total := 0
	for rows.Next() {
		var e Event
		if err := scanEvent(rows, &e, &total); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return out, total, nil
}

// GetByID returns nil, nil when the event does not exist.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	var e Event
	err := scanEvent(r.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}
