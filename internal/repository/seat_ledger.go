package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/afisha/theater-booking/internal/booking"
)

// SeatLedger is the MySQL implementation of the seat-count mutation
// contract. Atomicity comes from pushing the availability check into
// the UPDATE predicate itself: a single conditional statement either
// decrements and reports one affected row, or touches nothing. Two
// concurrent reservations against the same entry therefore serialize
// on the row lock and only one of them can win the last seats.
type SeatLedger struct {
	db *sql.DB
}

// NewSeatLedger constructs a SeatLedger with the given DB handle.
func NewSeatLedger(db *sql.DB) *SeatLedger { return &SeatLedger{db: db} }

// Reserve decrements available_seats by qty when the entry can cover
// the request. It returns false when availability is insufficient and
// booking.ErrNotFound when no such entry exists.
func (l *SeatLedger) Reserve(ctx context.Context, entryID uint64, qty uint32) (bool, error) {
	const q = `UPDATE performance_schedules
	           SET available_seats = available_seats - ?
	           WHERE id = ? AND available_seats >= ?`
	res, err := l.db.ExecContext(ctx, q, qty, entryID, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// Zero rows means either too few seats or no such entry; tell the
	// two apart so callers can report a missing entry properly.
	var one int
	err = l.db.QueryRowContext(ctx,
		`SELECT 1 FROM performance_schedules WHERE id = ? LIMIT 1`, entryID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, booking.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Release returns qty seats to the entry unconditionally.
func (l *SeatLedger) Release(ctx context.Context, entryID uint64, qty uint32) error {
	const q = `UPDATE performance_schedules
	           SET available_seats = available_seats + ?
	           WHERE id = ?`
	res, err := l.db.ExecContext(ctx, q, qty, entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}
