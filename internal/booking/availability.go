package booking

import (
    "context"
    "log"
)

// Recalculate recomputes and persists the ride's available-seat count
// and drops any cached read model for it.  It must run after seat
// creation, after every seat transition, and after every
// scheduler-driven departure or finish effect.
//
// The call is deliberately a follow-up step rather than part of the
// same atomic operation as the seat transition: the counter also
// serves as a coarse, indexable filter for ride search, and a
// sub-second staleness window is accepted in exchange for cheap
// reads.  Because the store recomputes from the seat rows, running it
// twice with no intervening change is a no-op, and a failure here
// never unwinds the transition that already committed — it is logged
// and left for the next mutation to repair.
func (e *Engine) Recalculate(ctx context.Context, rideID uint64) {
    if err := e.rides.RecalculateAvailableSeats(ctx, rideID); err != nil {
        log.Printf("booking: recalculate available seats for ride %d: %v", rideID, err)
    }
    if e.cache != nil {
        e.cache.InvalidateRide(ctx, rideID)
    }
}
