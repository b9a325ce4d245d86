package model

import "time"

// Category groups performances for catalog browsing.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique category name.
//  Description – optional details.
type Category struct {
    ID          uint64  // categories.id
    Name        string  // categories.name
    Description *string // categories.description (nullable)
}

// Performance is a stage production that can be scheduled any number of
// times across theaters and halls.  A performance by itself is not
// bookable; booking happens against a ScheduleEntry.
//
// Fields:
//  ID          – primary key identifier.
//  CategoryID  – owning category (nil when the category was removed).
//  Name        – title of the production.
//  Description – synopsis shown in the catalog.
//  DurationMin – running time in minutes.
//  ImageURL    – optional poster image location.
//  CreatedAt   – creation timestamp.
type Performance struct {
    ID          uint64    // performances.id
    CategoryID  *uint64   // performances.category_id (nullable)
    Name        string    // performances.name
    Description string    // performances.description
    DurationMin uint32    // performances.duration_min
    ImageURL    *string   // performances.image_url (nullable)
    CreatedAt   time.Time // performances.created_at
}

// Review is a customer comment attached to a performance.
type Review struct {
    ID            uint64    // reviews.id
    UserID        uint64    // reviews.user_id
    PerformanceID uint64    // reviews.performance_id
    Text          string    // reviews.text
    CreatedAt     time.Time // reviews.created_at
}
