package booking

import (
    "context"
    "sort"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/afisha/theater-booking/internal/model"
)

// CustomerInfo carries the contact fields captured on an order at
// checkout.  Payment fields are opaque labels for an external
// processor; nothing in the core interprets them.
type CustomerInfo struct {
    Name            string
    Email           string
    Phone           *string
    PaymentMethod   string
    DeliveryAddress *string
}

// OrderService drives the order lifecycle: creating a reserved order
// from a cart snapshot, cancelling with seat release, and the
// administrative status machine that re-triggers ledger operations
// when an order crosses the Cancelled boundary.
type OrderService struct {
    orders    OrderStore
    carts     CartStore
    schedules ScheduleStore
    ledger    Ledger
    minAmount decimal.Decimal
    maxAmount decimal.Decimal
}

// NewOrderService wires an order service.  minAmount and maxAmount are
// the inclusive bounds every order total must fall into.
func NewOrderService(orders OrderStore, carts CartStore, schedules ScheduleStore, ledger Ledger, minAmount, maxAmount decimal.Decimal) *OrderService {
    if orders == nil || carts == nil || schedules == nil || ledger == nil {
        panic("nil dependency passed to NewOrderService")
    }
    return &OrderService{
        orders:    orders,
        carts:     carts,
        schedules: schedules,
        ledger:    ledger,
        minAmount: minAmount,
        maxAmount: maxAmount,
    }
}

// Create turns the user's cart into a Pending order.  The sequence is:
// snapshot the cart, price it against current entry prices, check the
// total bounds, pre-check availability per line, persist the order,
// then reserve line by line in ascending entry order.  A reserve that
// fails after the pre-check means a concurrent order consumed the
// seats; everything reserved so far is released, the order row is
// removed and ErrReservationRaceLost is returned.  On success the cart
// is cleared.
func (s *OrderService) Create(ctx context.Context, userID uint64, info CustomerInfo) (*model.Order, error) {
    if strings.TrimSpace(info.Name) == "" || strings.TrimSpace(info.Email) == "" {
        return nil, &ValidationError{Msg: "customer name and email are required"}
    }

    lines, err := s.carts.ListLines(ctx, userID)
    if err != nil {
        return nil, err
    }
    if len(lines) == 0 {
        return nil, ErrEmptyCart
    }
    // Stable reserve order keeps concurrent multi-line orders from
    // deadlocking against each other on the underlying store.
    sort.Slice(lines, func(i, j int) bool { return lines[i].EntryID < lines[j].EntryID })

    // Frozen read of the entries backing each line: price and
    // availability as of this instant.
    entries := make([]*model.ScheduleEntry, len(lines))
    total := decimal.Zero
    for i, line := range lines {
        entry, err := s.schedules.GetEntry(ctx, line.EntryID)
        if err != nil {
            return nil, err
        }
        entries[i] = entry
        total = total.Add(entry.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
    }

    if total.LessThan(s.minAmount) || total.GreaterThan(s.maxAmount) {
        return nil, &AmountOutOfRangeError{Total: total, Min: s.minAmount, Max: s.maxAmount}
    }

    // Availability pre-check for every line before any reservation
    // begins, so an obviously oversubscribed cart fails without
    // touching the ledger at all.
    for i, line := range lines {
        if entries[i].AvailableSeats < line.Quantity {
            return nil, insufficient(entries[i], line.Quantity)
        }
    }

    order := &model.Order{
        UserID:          userID,
        Status:          model.OrderPending,
        TotalAmount:     total,
        CustomerName:    strings.TrimSpace(info.Name),
        CustomerEmail:   strings.TrimSpace(info.Email),
        CustomerPhone:   info.Phone,
        PaymentMethod:   info.PaymentMethod,
        DeliveryAddress: info.DeliveryAddress,
    }
    if order.PaymentMethod == "" {
        order.PaymentMethod = "online"
    }
    for i, line := range lines {
        order.Items = append(order.Items, model.OrderItem{
            EntryID:      line.EntryID,
            Quantity:     line.Quantity,
            PricePerUnit: entries[i].Price,
            Entry:        entries[i],
        })
    }
    if err := s.orders.CreateOrder(ctx, order); err != nil {
        return nil, err
    }

    // Reserve per line.  On any failure release what this loop already
    // took and remove the order – a best-effort compensation, kept
    // honest by the ledger's per-entry atomicity.
    reserved := 0
    for i, line := range lines {
        ok, err := s.ledger.Reserve(ctx, line.EntryID, line.Quantity)
        if err == nil && !ok {
            err = ErrReservationRaceLost
        }
        if err != nil {
            for j := 0; j < reserved; j++ {
                _ = s.ledger.Release(ctx, lines[j].EntryID, lines[j].Quantity)
            }
            _ = s.orders.DeleteOrder(ctx, order.ID)
            return nil, err
        }
        reserved = i + 1
    }

    if err := s.carts.ClearUser(ctx, userID); err != nil {
        return nil, err
    }
    return order, nil
}

// Cancel releases every line's seats back to the ledger and marks the
// order Cancelled.  It returns false without touching anything when
// the order is already Cancelled, making a repeated cancel a no-op
// rather than a double release.
func (s *OrderService) Cancel(ctx context.Context, orderID uint64, actor Actor) (bool, error) {
    order, err := s.orders.GetOrder(ctx, orderID)
    if err != nil {
        return false, err
    }
    if !actor.Admin && order.UserID != actor.ID {
        return false, ErrPermissionDenied
    }
    if order.Status == model.OrderCancelled {
        return false, nil
    }
    for _, item := range order.Items {
        if err := s.ledger.Release(ctx, item.EntryID, item.Quantity); err != nil {
            return false, err
        }
    }
    if err := s.orders.SetStatus(ctx, orderID, model.OrderCancelled); err != nil {
        return false, err
    }
    return true, nil
}

// UpdateStatus performs an administrative transition.  Moving into
// Cancelled releases all line quantities; reopening a Cancelled order
// re-reserves them.  When a re-reservation fails partway through, the
// lines already re-reserved in this pass are released again and the
// order stays Cancelled, so a failed reopen leaves the ledger exactly
// as it found it.  Transitions that do not cross Cancelled are pure
// status writes.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint64, newStatus model.OrderStatus, actor Actor) (*model.Order, error) {
    if !actor.Admin {
        return nil, ErrPermissionDenied
    }
    order, err := s.orders.GetOrder(ctx, orderID)
    if err != nil {
        return nil, err
    }
    if !model.ValidTransition(order.Status, newStatus) {
        return nil, &ValidationError{Msg: "invalid status transition"}
    }

    switch {
    case order.Status != model.OrderCancelled && newStatus == model.OrderCancelled:
        for _, item := range order.Items {
            if err := s.ledger.Release(ctx, item.EntryID, item.Quantity); err != nil {
                return nil, err
            }
        }
    case order.Status == model.OrderCancelled && newStatus != model.OrderCancelled:
        if err := s.reopen(ctx, order); err != nil {
            return nil, err
        }
    }

    if err := s.orders.SetStatus(ctx, orderID, newStatus); err != nil {
        return nil, err
    }
    order.Status = newStatus
    return order, nil
}

// reopen re-reserves every item of a cancelled order in ascending
// entry order, unwinding on the first line that cannot be covered.
func (s *OrderService) reopen(ctx context.Context, order *model.Order) error {
    items := make([]model.OrderItem, len(order.Items))
    copy(items, order.Items)
    sort.Slice(items, func(i, j int) bool { return items[i].EntryID < items[j].EntryID })

    for i, item := range items {
        ok, err := s.ledger.Reserve(ctx, item.EntryID, item.Quantity)
        if err != nil {
            s.unwind(ctx, items[:i])
            return err
        }
        if !ok {
            s.unwind(ctx, items[:i])
            entry, gerr := s.schedules.GetEntry(ctx, item.EntryID)
            if gerr != nil {
                entry = &model.ScheduleEntry{ID: item.EntryID}
            }
            return insufficient(entry, item.Quantity)
        }
    }
    return nil
}

func (s *OrderService) unwind(ctx context.Context, items []model.OrderItem) {
    for _, item := range items {
        _ = s.ledger.Release(ctx, item.EntryID, item.Quantity)
    }
}

// Get loads one order.  Customers see only their own orders; an admin
// actor may load any order.
func (s *OrderService) Get(ctx context.Context, orderID uint64, actor Actor) (*model.Order, error) {
    order, err := s.orders.GetOrder(ctx, orderID)
    if err != nil {
        return nil, err
    }
    if !actor.Admin && order.UserID != actor.ID {
        return nil, ErrPermissionDenied
    }
    return order, nil
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID uint64) ([]model.Order, error) {
    return s.orders.ListOrders(ctx, userID)
}
