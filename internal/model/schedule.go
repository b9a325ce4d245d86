package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// ScheduleEntry is one bookable showing of a performance: a concrete
// performance in a concrete hall at a concrete time, with a ticket
// price and a mutable count of seats still on sale.
//
// AvailableSeats is the single source of truth for inventory.  It must
// only ever be changed through the seat ledger so that concurrent
// bookings cannot drive it negative; seats move between "available"
// and "reserved" and are never created or destroyed after the entry
// has been set up.  Performance, theater and hall references are fixed
// at creation time.
//
// Fields:
//  ID             – primary key identifier.
//  PerformanceID  – performance being shown.
//  TheaterID      – theater hosting the showing.
//  HallID         – hall inside the theater.
//  DateTime       – when the showing starts (UTC).
//  AvailableSeats – seats still on sale, never negative.
//  Price          – ticket price, DECIMAL(10,2), non-negative.
//  PerformanceName – performance name joined in on reads, informational.
type ScheduleEntry struct {
    ID              uint64          // performance_schedules.id
    PerformanceID   uint64          // performance_schedules.performance_id
    TheaterID       uint64          // performance_schedules.theater_id
    HallID          uint64          // performance_schedules.hall_id
    DateTime        time.Time       // performance_schedules.date_time
    AvailableSeats  uint32          // performance_schedules.available_seats
    Price           decimal.Decimal // performance_schedules.price
    PerformanceName string          // joined performances.name, informational
}
