package model

// Theater represents a venue hosting performances.  Each theater owns
// a set of numbered halls where scheduled showings take place.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the theater.
//  Address     – street address.
//  Description – optional free-form description.
type Theater struct {
    ID          uint64  // theaters.id
    Name        string  // theaters.name
    Address     string  // theaters.address
    Description *string // theaters.description (nullable)
}

// Hall is a numbered auditorium inside a theater.  The seat count kept
// here is the physical capacity of the room and serves as the ceiling
// for any schedule entry created in it; the per-showing availability
// lives on the schedule entry itself.
type Hall struct {
    ID             uint64 // halls.id
    TheaterID      uint64 // halls.theater_id
    NumberHall     uint32 // halls.number_hall
    AvailableSeats uint32 // halls.available_seats (physical capacity)
}
