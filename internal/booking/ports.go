package booking

import (
    "context"
    "time"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
)

// RideStore is the ride-side persistence the engine needs.  Implemented
// by repository.RideRepo; tests substitute an in-memory fake.
type RideStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Ride, error)
    RecalculateAvailableSeats(ctx context.Context, rideID uint64) error
}

// SeatStore exposes the atomic conditional transitions on seat rows.
// Every mutating method returns false when the precondition status did
// not hold, without saying why — another actor may have won the race,
// or the seat was never in that state.  Implemented by
// repository.SeatRepo.
type SeatStore interface {
    ListByRide(ctx context.Context, rideID uint64) ([]model.Seat, error)
    Get(ctx context.Context, rideID uint64, seatNo uint32) (*model.Seat, error)
    Claim(ctx context.Context, rideID uint64, seatNo uint32, clientID uint64, holderName string) (bool, error)
    Release(ctx context.Context, rideID uint64, seatNo uint32, clientID uint64) (bool, error)
    Approve(ctx context.Context, rideID uint64, seatNo uint32) (bool, error)
    Reject(ctx context.Context, rideID uint64, seatNo uint32) (bool, error)
    Block(ctx context.Context, rideID uint64, seatNo uint32) (bool, error)
    Unblock(ctx context.Context, rideID uint64, seatNo uint32) (bool, error)
    ListPending(ctx context.Context, rideID uint64) ([]model.Seat, error)
    BlockAllAvailable(ctx context.Context, rideID uint64) error
}

// Event kinds emitted after committed transitions.
const (
    EventSeatRequested    = "seat.requested"
    EventRequestCancelled = "seat.request_cancelled"
    EventSeatApproved     = "seat.approved"
    EventSeatRejected     = "seat.rejected"
)

// Event describes a committed seat transition for the party it
// affects: requester actions address the driver, driver actions
// address the seat's claimant.
type Event struct {
    Kind        string    `json:"kind"`
    RideID      uint64    `json:"ride_id"`
    SeatNo      uint32    `json:"seat_no"`
    ActorID     uint64    `json:"actor_id"`
    RecipientID uint64    `json:"recipient_id"`
    HolderName  string    `json:"holder_name,omitempty"`
    OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier delivers events best-effort.  Implementations must not
// block the caller and must swallow their own failures; a transition
// that already committed can never be affected by its notification.
type Notifier interface {
    Notify(ev Event)
}

// Invalidator drops cached read models for a ride after a mutation.
type Invalidator interface {
    InvalidateRide(ctx context.Context, rideID uint64)
}
