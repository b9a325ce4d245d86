package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// OrderRepo is the MySQL implementation of booking.OrderStore. Orders
// and their items are written together in one transaction; items are
// immutable after creation and carry the price captured at purchase
// time, so later price changes on a schedule entry never rewrite
// history.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo with the given DB handle.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateOrder inserts the order and all of its items in a single
// transaction, then reads the row back to populate generated IDs and
// timestamps on the passed struct.
func (r *OrderRepo) CreateOrder(ctx context.Context, o *model.Order) error {
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

	const q = `INSERT INTO orders
	           (user_id, status, total_amount, customer_name, customer_email,
	            customer_phone, payment_method, payment_id, delivery_address)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.UserID, o.Status, o.TotalAmount, o.CustomerName, o.CustomerEmail,
		o.CustomerPhone, o.PaymentMethod, o.PaymentID, o.DeliveryAddress)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	if len(o.Items) > 0 {
		// Bulk insert all items in one statement.
		query := `INSERT INTO order_items (order_id, schedule_id, quantity, price_per_unit) VALUES `
		args := make([]interface{}, 0, len(o.Items)*4)
		for i, it := range o.Items {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, o.ID, it.EntryID, it.Quantity, it.PricePerUnit)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		firstItemID := uint64(0)
		if err = tx.QueryRowContext(ctx,
			`SELECT MIN(id) FROM order_items WHERE order_id = ?`, o.ID).Scan(&firstItemID); err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].ID = firstItemID + uint64(i)
			o.Items[i].OrderID = o.ID
		}
	}

	err = tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM orders WHERE id = ?`, o.ID).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	return err
}

// DeleteOrder removes an order and its items. Only the creation
// rollback path uses this; committed orders stay forever.
func (r *OrderRepo) DeleteOrder(ctx context.Context, orderID uint64) error {
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
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	return err
}

const orderColumns = `o.id, o.user_id, o.status, o.total_amount,
	       o.customer_name, o.customer_email, o.customer_phone,
	       o.payment_method, o.payment_id, o.delivery_address,
	       o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.TotalAmount,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.PaymentMethod, &o.PaymentID, &o.DeliveryAddress,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrder loads an order with its items and their schedule entries
// populated. It returns booking.ErrNotFound when no row matches.
func (r *OrderRepo) GetOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	items, err := r.itemsForOrders(ctx, []uint64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// ListOrders returns a user's orders, newest first, with items and
// entries populated. When the user has no orders it returns an empty
// slice and nil error.
func (r *OrderRepo) ListOrders(ctx context.Context, userID uint64) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + `
	           FROM orders o
	           WHERE o.user_id = ?
	           ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Order, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	items, err := r.itemsForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

// itemsForOrders fetches the items of all listed orders in a single
// query, grouped by order ID, with schedule entries joined in.
func (r *OrderRepo) itemsForOrders(ctx context.Context, orderIDs []uint64) (map[uint64][]model.OrderItem, error) {
	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT oi.id, oi.order_id, oi.schedule_id, oi.quantity, oi.price_per_unit,
	             ps.id, ps.performance_id, ps.theater_id, ps.hall_id,
	             ps.date_time, ps.available_seats, ps.price, p.name
	      FROM order_items oi
	      JOIN performance_schedules ps ON ps.id = oi.schedule_id
	      JOIN performances p ON p.id = ps.performance_id
	      WHERE oi.order_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY oi.order_id, oi.schedule_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	grouped := make(map[uint64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var it model.OrderItem
		var entry model.ScheduleEntry
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.EntryID, &it.Quantity, &it.PricePerUnit,
			&entry.ID, &entry.PerformanceID, &entry.TheaterID, &entry.HallID,
			&entry.DateTime, &entry.AvailableSeats, &entry.Price, &entry.PerformanceName,
		); err != nil {
			return nil, err
		}
		it.Entry = &entry
		grouped[it.OrderID] = append(grouped[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grouped, nil
}

// SetStatus writes a new lifecycle status. It returns
// booking.ErrNotFound when the order does not exist.
func (r *OrderRepo) SetStatus(ctx context.Context, orderID uint64, status model.OrderStatus) error {
	const q = `UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		err = r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ? LIMIT 1`, orderID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return booking.ErrNotFound
		}
		return err
	}
	return nil
}
