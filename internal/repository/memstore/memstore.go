// Package memstore provides in-memory implementations of the booking
// store interfaces. They back the service tests and mirror the
// semantics of the MySQL repositories: the ledger's compare-and-
// decrement is atomic under the store mutex, cart lines are unique per
// (user, entry) pair, and reads return copies so callers cannot
// mutate stored state.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// Store holds all in-memory state behind one mutex. A single lock is
// enough here; these stores exist for tests, not throughput.
type Store struct {
	mu      sync.Mutex
	entries map[uint64]*model.ScheduleEntry
	lines   map[uint64]*model.CartItem
	orders  map[uint64]*model.Order
	nextID  uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[uint64]*model.ScheduleEntry),
		lines:   make(map[uint64]*model.CartItem),
		orders:  make(map[uint64]*model.Order),
		nextID:  1,
	}
}

func (s *Store) id() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

// PutEntry stores a schedule entry, assigning an ID when the entry has
// none. Test setup helper.
func (s *Store) PutEntry(e *model.ScheduleEntry) *model.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	cp := *e
	s.entries[e.ID] = &cp
	return e
}

// Reserve implements booking.Ledger.
func (s *Store) Reserve(ctx context.Context, entryID uint64, qty uint32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok {
		return false, booking.ErrNotFound
	}
	if e.AvailableSeats < qty {
		return false, nil
	}
	e.AvailableSeats -= qty
	return true, nil
}

// Release implements booking.Ledger.
func (s *Store) Release(ctx context.Context, entryID uint64, qty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok {
		return booking.ErrNotFound
	}
	e.AvailableSeats += qty
	return nil
}

// GetEntry implements booking.ScheduleStore.
func (s *Store) GetEntry(ctx context.Context, id uint64) (*model.ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func copyLine(line *model.CartItem) *model.CartItem {
	cp := *line
	cp.Entry = nil
	return &cp
}

// GetLine implements booking.CartStore.
func (s *Store) GetLine(ctx context.Context, userID, lineID uint64) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.lines[lineID]
	if !ok || line.UserID != userID {
		return nil, booking.ErrNotFound
	}
	return copyLine(line), nil
}

// FindLine implements booking.CartStore.
func (s *Store) FindLine(ctx context.Context, userID, entryID uint64) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.lines {
		if line.UserID == userID && line.EntryID == entryID {
			return copyLine(line), nil
		}
	}
	return nil, booking.ErrNotFound
}

// SaveLine implements booking.CartStore. The (user, entry) pair stays
// unique: saving over an existing pair replaces its quantity.
func (s *Store) SaveLine(ctx context.Context, line *model.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.lines {
		if existing.UserID == line.UserID && existing.EntryID == line.EntryID {
			existing.Quantity = line.Quantity
			line.ID = existing.ID
			line.AddedAt = existing.AddedAt
			return nil
		}
	}
	if line.ID == 0 {
		line.ID = s.id()
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now().UTC()
	}
	s.lines[line.ID] = copyLine(line)
	return nil
}

// DeleteLine implements booking.CartStore.
func (s *Store) DeleteLine(ctx context.Context, lineID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, lineID)
	return nil
}

// ListLines implements booking.CartStore. Lines come back ordered by
// ascending entry ID with entries populated.
func (s *Store) ListLines(ctx context.Context, userID uint64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CartItem, 0)
	for _, line := range s.lines {
		if line.UserID != userID {
			continue
		}
		cp := *line
		if e, ok := s.entries[line.EntryID]; ok {
			ecp := *e
			cp.Entry = &ecp
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out, nil
}

// ClearUser implements booking.CartStore.
func (s *Store) ClearUser(ctx context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, line := range s.lines {
		if line.UserID == userID {
			delete(s.lines, id)
		}
	}
	return nil
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = make([]model.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

// CreateOrder implements booking.OrderStore.
func (s *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Items {
		o.Items[i].ID = s.id()
		o.Items[i].OrderID = o.ID
	}
	s.orders[o.ID] = copyOrder(o)
	return nil
}

// DeleteOrder implements booking.OrderStore.
func (s *Store) DeleteOrder(ctx context.Context, orderID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, orderID)
	return nil
}

// GetOrder implements booking.OrderStore.
func (s *Store) GetOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, booking.ErrNotFound
	}
	cp := copyOrder(o)
	for i := range cp.Items {
		if e, ok := s.entries[cp.Items[i].EntryID]; ok {
			ecp := *e
			cp.Items[i].Entry = &ecp
		}
	}
	return cp, nil
}

// ListOrders implements booking.OrderStore. Newest first.
func (s *Store) ListOrders(ctx context.Context, userID uint64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SetStatus implements booking.OrderStore.
func (s *Store) SetStatus(ctx context.Context, orderID uint64, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return booking.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Seats reports the current available seat count for an entry. Test
// assertion helper.
func (s *Store) Seats(entryID uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[entryID]; ok {
		return e.AvailableSeats
	}
	return 0
}
