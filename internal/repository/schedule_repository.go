package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// ScheduleRepo manages persistence for performance schedule entries.
// It satisfies booking.ScheduleStore for the reservation core; seat
// counts are never written here, only through the SeatLedger.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

const scheduleColumns = `ps.id, ps.performance_id, ps.theater_id, ps.hall_id,
	       ps.date_time, ps.available_seats, ps.price, p.name`

func scanEntry(row interface{ Scan(...any) error }) (*model.ScheduleEntry, error) {
	var e model.ScheduleEntry
	err := row.Scan(
		&e.ID, &e.PerformanceID, &e.TheaterID, &e.HallID,
		&e.DateTime, &e.AvailableSeats, &e.Price, &e.PerformanceName,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEntry loads one schedule entry with its performance name joined
// in. It returns booking.ErrNotFound when no row matches.
func (r *ScheduleRepo) GetEntry(ctx context.Context, id uint64) (*model.ScheduleEntry, error) {
	const q = `SELECT ` + scheduleColumns + `
	           FROM performance_schedules ps
	           JOIN performances p ON p.id = ps.performance_id
	           WHERE ps.id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByPerformance returns all upcoming entries for one performance
// ordered by start time ascending. Entries already in the past are
// not offered for sale.
func (r *ScheduleRepo) ListByPerformance(ctx context.Context, performanceID uint64) ([]model.ScheduleEntry, error) {
	const q = `SELECT ` + scheduleColumns + `
	           FROM performance_schedules ps
	           JOIN performances p ON p.id = ps.performance_id
	           WHERE ps.performance_id = ? AND ps.date_time >= NOW()
	           ORDER BY ps.date_time ASC`
	rows, err := r.db.QueryContext(ctx, q, performanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ScheduleEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID removes a schedule entry along with any cart lines that
// still point at it. The deletion runs in a transaction and is
// refused with ErrConflict when order items reference the entry:
// order history is immutable and must keep its schedule rows. Returns
// booking.ErrNotFound when no such entry exists.
func (r *ScheduleRepo) DeleteByID(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM performance_schedules WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		err = booking.ErrNotFound
		return err
	}
	if err != nil {
		return err
	}
	var refCount int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE schedule_id = ?`, id).Scan(&refCount); err != nil {
		return err
	}
	if refCount > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE schedule_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM performance_schedules WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
