package model

import "time"

// Seat status values.  A seat cycles between these states for the
// life of its ride; there is no terminal state.
//
//  available – free for any client to request.
//  pending   – a client has requested the seat and waits for the
//              driver's decision.
//  approved  – the driver accepted the request.
//  blocked   – the driver reserved the seat without a client, or the
//              ride departed and boarding closed.
const (
    SeatStatusAvailable = "available"
    SeatStatusPending   = "pending"
    SeatStatusApproved  = "approved"
    SeatStatusBlocked   = "blocked"
)

// Seat is one bookable unit of a ride's capacity.  Seats are keyed by
// (ride_id, seat_no); seat numbers run from 1 to the ride's seat
// count and are unique per ride.  All seat rows are inserted in
// `available` status when their ride is created and are only ever
// mutated through status-conditional updates.
//
// ClientID is set exactly when the seat is pending or approved; it
// identifies the single outstanding claimant.  HolderName is a
// denormalized display label for that claimant so seat maps can be
// rendered without joining users.
type Seat struct {
    RideID     uint64    `json:"ride_id"`     // seats.ride_id
    SeatNo     uint32    `json:"seat_no"`     // seats.seat_no
    Status     string    `json:"status"`      // seats.status
    ClientID   *uint64   `json:"client_id"`   // seats.client_id (nullable)
    HolderName *string   `json:"holder_name"` // seats.holder_name (nullable)
    UpdatedAt  time.Time `json:"updated_at"`  // seats.updated_at
}
