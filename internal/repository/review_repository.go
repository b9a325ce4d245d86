package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// ReviewRepo manages persistence for performance reviews.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and populates the generated ID and
// timestamp. The performance must exist; booking.ErrNotFound is
// returned otherwise.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM performances WHERE id = ? LIMIT 1`, rev.PerformanceID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (user_id, performance_id, text) VALUES (?, ?, ?)`,
		rev.UserID, rev.PerformanceID, rev.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM reviews WHERE id = ?`, rev.ID).Scan(&rev.CreatedAt)
}

// ListByPerformance returns a performance's reviews, newest first.
func (r *ReviewRepo) ListByPerformance(ctx context.Context, performanceID uint64) ([]model.Review, error) {
	const q = `SELECT id, user_id, performance_id, text, created_at
	           FROM reviews
	           WHERE performance_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, performanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Review, 0)
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.PerformanceID, &rev.Text, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndUser removes a review only when it belongs to the given
// user. booking.ErrNotFound covers both a missing review and one owned
// by someone else.
func (r *ReviewRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = ? AND user_id = ?`, id, userID)
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

// DeleteByID removes any review regardless of owner. Used by the
// moderation endpoint.
func (r *ReviewRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
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
