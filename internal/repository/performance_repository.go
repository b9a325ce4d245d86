package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// PerformanceRepo provides read access to the performance catalog:
// performances, their categories and the search endpoint. The catalog
// is administered out of band, so this repository only needs lookup
// and listing queries.
type PerformanceRepo struct {
	db *sql.DB
}

// NewPerformanceRepo constructs a PerformanceRepo with the given DB handle.
func NewPerformanceRepo(db *sql.DB) *PerformanceRepo { return &PerformanceRepo{db: db} }

const performanceColumns = `p.id, p.category_id, p.name, p.description,
	       p.duration_min, p.image_url, p.created_at`

func scanPerformance(row interface{ Scan(...any) error }) (*model.Performance, error) {
	var p model.Performance
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description,
		&p.DurationMin, &p.ImageURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the whole catalog ordered by name.
func (r *PerformanceRepo) List(ctx context.Context) ([]model.Performance, error) {
	const q = `SELECT ` + performanceColumns + ` FROM performances p ORDER BY p.name ASC`
	return r.queryPerformances(ctx, q)
}

// GetByID loads one performance. Returns booking.ErrNotFound when no
// row matches.
func (r *PerformanceRepo) GetByID(ctx context.Context, id uint64) (*model.Performance, error) {
	const q = `SELECT ` + performanceColumns + ` FROM performances p WHERE p.id = ?`
	p, err := scanPerformance(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByCategory returns all performances filed under one category,
// ordered by name. The category must exist; booking.ErrNotFound is
// returned otherwise so handlers can tell an empty category from an
// unknown one.
func (r *PerformanceRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]model.Performance, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ? LIMIT 1`, categoryID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + performanceColumns + `
	           FROM performances p
	           WHERE p.category_id = ?
	           ORDER BY p.name ASC`
	return r.queryPerformances(ctx, q, categoryID)
}

// Search finds performances whose name or description contains the
// case-insensitive query string, ordered by name.
func (r *PerformanceRepo) Search(ctx context.Context, query string) ([]model.Performance, error) {
	const q = `SELECT ` + performanceColumns + `
	           FROM performances p
	           WHERE LOWER(p.name) LIKE LOWER(?) OR LOWER(p.description) LIKE LOWER(?)
	           ORDER BY p.name ASC`
	pattern := "%" + query + "%"
	return r.queryPerformances(ctx, q, pattern, pattern)
}

func (r *PerformanceRepo) queryPerformances(ctx context.Context, q string, args ...any) ([]model.Performance, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Performance, 0)
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryWithCount pairs a category with the number of performances
// filed under it, for the category listing endpoint.
type CategoryWithCount struct {
	model.Category
	PerformanceCount uint32
}

// ListCategories returns every category with its performance count,
// ordered by name.
func (r *PerformanceRepo) ListCategories(ctx context.Context) ([]CategoryWithCount, error) {
	const q = `SELECT c.id, c.name, c.description, COUNT(p.id)
	           FROM categories c
	           LEFT JOIN performances p ON p.category_id = c.id
	           GROUP BY c.id, c.name, c.description
	           ORDER BY c.name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CategoryWithCount, 0)
	for rows.Next() {
		var c CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.PerformanceCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
