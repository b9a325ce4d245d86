package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// HallRepo provides read access to theaters and their halls. Halls
// describe physical rooms; their AvailableSeats column is the
// capacity ceiling a schedule entry's seat allocation is validated
// against, not live inventory.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo { return &HallRepo{db: db} }

// ListByTheater returns the halls of one theater ordered by hall
// number. The theater must exist; booking.ErrNotFound is returned
// otherwise.
func (r *HallRepo) ListByTheater(ctx context.Context, theaterID uint64) ([]model.Hall, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM theaters WHERE id = ? LIMIT 1`, theaterID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, theater_id, number_hall, available_seats
	           FROM halls
	           WHERE theater_id = ?
	           ORDER BY number_hall ASC`
	rows, err := r.db.QueryContext(ctx, q, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Hall, 0)
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.ID, &h.TheaterID, &h.NumberHall, &h.AvailableSeats); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
