package booking

import (
    "context"
    "errors"

    "github.com/afisha/theater-booking/internal/model"
)

// CartService manages advisory cart lines.  Quantities are validated
// against current availability at mutation time only; nothing here
// touches the ledger, so a cart can legitimately go stale between the
// last mutation and checkout.  Order creation re-validates.
type CartService struct {
    carts     CartStore
    schedules ScheduleStore
}

// NewCartService wires a cart service.  Both stores must be non-nil.
func NewCartService(carts CartStore, schedules ScheduleStore) *CartService {
    if carts == nil || schedules == nil {
        panic("nil store passed to NewCartService")
    }
    return &CartService{carts: carts, schedules: schedules}
}

// Add puts quantity tickets for the given schedule entry into the
// user's cart.  When the user already has a line for the entry the
// quantity is replaced, not added; an increase must be covered by
// current availability, a decrease always succeeds.  For a new line
// the full quantity must be available.
func (s *CartService) Add(ctx context.Context, userID, entryID uint64, quantity uint32) (*model.CartItem, error) {
    if quantity == 0 {
        return nil, &ValidationError{Msg: "quantity must be a positive number"}
    }
    entry, err := s.schedules.GetEntry(ctx, entryID)
    if err != nil {
        return nil, err
    }

    line, err := s.carts.FindLine(ctx, userID, entryID)
    if err != nil && !errors.Is(err, ErrNotFound) {
        return nil, err
    }
    if line == nil {
        if entry.AvailableSeats < quantity {
            return nil, insufficient(entry, quantity)
        }
        line = &model.CartItem{UserID: userID, EntryID: entryID, Quantity: quantity}
    } else {
        if quantity > line.Quantity {
            additional := quantity - line.Quantity
            if entry.AvailableSeats < additional {
                return nil, insufficient(entry, additional)
            }
        }
        line.Quantity = quantity
    }
    if err := s.carts.SaveLine(ctx, line); err != nil {
        return nil, err
    }
    line.Entry = entry
    return line, nil
}

// SetQuantity replaces the quantity on an existing line.  Zero is
// rejected; removal is a separate operation.
func (s *CartService) SetQuantity(ctx context.Context, userID, lineID uint64, quantity uint32) (*model.CartItem, error) {
    if quantity == 0 {
        return nil, &ValidationError{Msg: "quantity must be a positive number; use remove to delete the line"}
    }
    line, err := s.carts.GetLine(ctx, userID, lineID)
    if err != nil {
        return nil, err
    }
    entry, err := s.schedules.GetEntry(ctx, line.EntryID)
    if err != nil {
        return nil, err
    }
    if quantity > line.Quantity {
        additional := quantity - line.Quantity
        if entry.AvailableSeats < additional {
            return nil, insufficient(entry, additional)
        }
    }
    line.Quantity = quantity
    if err := s.carts.SaveLine(ctx, line); err != nil {
        return nil, err
    }
    line.Entry = entry
    return line, nil
}

// Remove deletes one line from the user's cart.  The cart holds no
// reservation, so there is nothing to give back to the ledger.
func (s *CartService) Remove(ctx context.Context, userID, lineID uint64) error {
    line, err := s.carts.GetLine(ctx, userID, lineID)
    if err != nil {
        return err
    }
    return s.carts.DeleteLine(ctx, line.ID)
}

// Clear drops every line the user owns.
func (s *CartService) Clear(ctx context.Context, userID uint64) error {
    return s.carts.ClearUser(ctx, userID)
}

// List returns the user's lines with entries populated, ordered by
// ascending entry ID.  Per-line totals come from CartItem.TotalPrice.
func (s *CartService) List(ctx context.Context, userID uint64) ([]model.CartItem, error) {
    return s.carts.ListLines(ctx, userID)
}

// insufficient builds an InsufficientSeatsError from the entry's
// current availability, carrying the performance name when the store
// joined one in.
func insufficient(entry *model.ScheduleEntry, requested uint32) error {
    return &InsufficientSeatsError{
        EntryID:         entry.ID,
        PerformanceName: entry.PerformanceName,
        Available:       entry.AvailableSeats,
        Requested:       requested,
    }
}
