package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// CartRepo is the MySQL implementation of booking.CartStore. The
// cart_items table carries a UNIQUE(user_id, schedule_id) constraint,
// so SaveLine can lean on ON DUPLICATE KEY UPDATE for the
// replace-on-add behaviour instead of a read-modify-write cycle.
type CartRepo struct {
	db *sql.DB
}

// NewCartRepo constructs a CartRepo with the given DB handle.
func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

const cartLineColumns = `ci.id, ci.user_id, ci.schedule_id, ci.quantity, ci.added_at`

// GetLine loads a single cart line and enforces ownership: a line that
// belongs to another user is indistinguishable from a missing one.
func (r *CartRepo) GetLine(ctx context.Context, userID, lineID uint64) (*model.CartItem, error) {
	const q = `SELECT ` + cartLineColumns + `
	           FROM cart_items ci
	           WHERE ci.id = ? AND ci.user_id = ?`
	var line model.CartItem
	err := r.db.QueryRowContext(ctx, q, lineID, userID).Scan(
		&line.ID, &line.UserID, &line.EntryID, &line.Quantity, &line.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindLine looks a line up by its (user, entry) pair.
func (r *CartRepo) FindLine(ctx context.Context, userID, entryID uint64) (*model.CartItem, error) {
	const q = `SELECT ` + cartLineColumns + `
	           FROM cart_items ci
	           WHERE ci.user_id = ? AND ci.schedule_id = ?`
	var line model.CartItem
	err := r.db.QueryRowContext(ctx, q, userID, entryID).Scan(
		&line.ID, &line.UserID, &line.EntryID, &line.Quantity, &line.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// SaveLine inserts the line or replaces the quantity of the existing
// (user, entry) line. The LAST_INSERT_ID(id) trick makes the duplicate
// branch report the existing row's ID so the caller always gets the
// stored line's ID back.
func (r *CartRepo) SaveLine(ctx context.Context, line *model.CartItem) error {
	const q = `INSERT INTO cart_items (user_id, schedule_id, quantity)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               quantity = VALUES(quantity),
	               id = LAST_INSERT_ID(id)`
	res, err := r.db.ExecContext(ctx, q, line.UserID, line.EntryID, line.Quantity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	line.ID = uint64(id)
	return nil
}

// DeleteLine removes one line unconditionally. Ownership is checked by
// the service through GetLine before this is called.
func (r *CartRepo) DeleteLine(ctx context.Context, lineID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, lineID)
	return err
}

// ListLines returns the user's lines with schedule entries populated,
// ordered by ascending schedule ID so concurrent checkouts reserve in
// a stable order.
func (r *CartRepo) ListLines(ctx context.Context, userID uint64) ([]model.CartItem, error) {
	const q = `SELECT ` + cartLineColumns + `,
	                  ps.id, ps.performance_id, ps.theater_id, ps.hall_id,
	                  ps.date_time, ps.available_seats, ps.price, p.name
	           FROM cart_items ci
	           JOIN performance_schedules ps ON ps.id = ci.schedule_id
	           JOIN performances p ON p.id = ps.performance_id
	           WHERE ci.user_id = ?
	           ORDER BY ci.schedule_id ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CartItem, 0)
	for rows.Next() {
		var line model.CartItem
		var entry model.ScheduleEntry
		if err := rows.Scan(
			&line.ID, &line.UserID, &line.EntryID, &line.Quantity, &line.AddedAt,
			&entry.ID, &entry.PerformanceID, &entry.TheaterID, &entry.HallID,
			&entry.DateTime, &entry.AvailableSeats, &entry.Price, &entry.PerformanceName,
		); err != nil {
			return nil, err
		}
		line.Entry = &entry
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearUser removes every line the user owns.
func (r *CartRepo) ClearUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
