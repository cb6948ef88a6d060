package model

import "time"

// Ride status values.  A ride moves through its lifecycle strictly
// forward: active rides become in_progress at departure and finished
// once the trip is over.  There is no transition back.
const (
    RideStatusActive     = "active"
    RideStatusInProgress = "in_progress"
    RideStatusFinished   = "finished"
)

// Ride represents a scheduled trip offered by a driver.  The seat
// capacity is fixed when the ride is created and never changes; one
// seat row exists for every seat number in [1, SeatCount].
//
// AvailableSeats is a derived counter cached on the row: it always
// converges to the number of this ride's seats whose status is
// `available`.  It is recalculated after every seat or ride mutation
// and is used as a coarse filter when searching rides, so searches
// never have to join against the seats table.
//
// Fields:
//  ID             – primary key identifier.
//  DriverID       – user who offers the ride.  Zero means the row is
//                   missing its driver, which is a data-integrity
//                   condition; driver-gated operations refuse it.
//  SeatCount      – fixed capacity of the ride.
//  DepartureTime  – planned departure.
//  StartedAt      – when the ride actually entered in_progress
//                   (nil while still active).
//  Status         – one of active, in_progress, finished.
//  AvailableSeats – cached count of seats in `available` status.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Ride struct {
    ID             uint64     `json:"id"`              // rides.id
    DriverID       uint64     `json:"driver_id"`       // rides.driver_id
    SeatCount      uint32     `json:"seat_count"`      // rides.seat_count
    Origin         string     `json:"origin"`          // rides.origin
    Destination    string     `json:"destination"`     // rides.destination
    PriceCents     uint32     `json:"price_cents"`     // rides.price_cents
    DepartureTime  time.Time  `json:"departure_time"`  // rides.departure_time
    StartedAt      *time.Time `json:"started_at"`      // rides.started_at (nullable)
    Status         string     `json:"status"`          // rides.status
    AvailableSeats uint32     `json:"available_seats"` // rides.available_seats
    CreatedAt      time.Time  `json:"created_at"`      // rides.created_at
    UpdatedAt      time.Time  `json:"updated_at"`      // rides.updated_at
}
