package booking

import (
    "context"
    "log"
    "time"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
)

// Engine implements the seat state machine.  It holds no state of its
// own beyond its injected collaborators; every mutation is a single
// conditional store update, so the engine is safe to share across
// requests and across service instances without in-process locking.
type Engine struct {
    rides  RideStore
    seats  SeatStore
    notify Notifier    // may be nil
    cache  Invalidator // may be nil
    now    func() time.Time
}

// NewEngine constructs an Engine.  notify and cache may be nil, in
// which case the corresponding side effects are skipped.
func NewEngine(rides RideStore, seats SeatStore, notify Notifier, cache Invalidator) *Engine {
    if rides == nil || seats == nil {
        panic("nil store passed to NewEngine")
    }
    return &Engine{
        rides:  rides,
        seats:  seats,
        notify: notify,
        cache:  cache,
        now:    func() time.Time { return time.Now().UTC() },
    }
}

// TripDetails is the read model returned by every successful seat
// action: the ride row plus its full seat list.
type TripDetails struct {
    Ride  model.Ride   `json:"ride"`
    Seats []model.Seat `json:"seats"`
}

// GetTripDetails returns the current ride and all of its seats.  Pure
// read, no concurrency hazard.
func (e *Engine) GetTripDetails(ctx context.Context, rideID uint64) (*TripDetails, error) {
    ride, err := e.rides.GetByID(ctx, rideID)
    if err != nil {
        return nil, err
    }
    seats, err := e.seats.ListByRide(ctx, rideID)
    if err != nil {
        return nil, err
    }
    return &TripDetails{Ride: *ride, Seats: seats}, nil
}

// RequestSeat claims an available seat for a client, moving it to
// pending.  The driver is notified best-effort after the transition
// commits.
func (e *Engine) RequestSeat(ctx context.Context, rideID uint64, seatNo uint32, clientID uint64, holderName string) (*TripDetails, error) {
    ride, err := e.loadRideForSeat(ctx, rideID, seatNo)
    if err != nil {
        return nil, err
    }
    ok, err := e.seats.Claim(ctx, rideID, seatNo, clientID, holderName)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrSeatNotAvailable
    }
    e.Recalculate(ctx, rideID)
    e.emit(Event{
        Kind:        EventSeatRequested,
        RideID:      rideID,
        SeatNo:      seatNo,
        ActorID:     clientID,
        RecipientID: ride.DriverID,
        HolderName:  holderName,
    })
    return e.GetTripDetails(ctx, rideID)
}

// CancelRequest releases the caller's own pending request, moving the
// seat back to available.  The driver is notified of the withdrawal.
func (e *Engine) CancelRequest(ctx context.Context, rideID uint64, seatNo uint32, clientID uint64) (*TripDetails, error) {
    ride, err := e.loadRideForSeat(ctx, rideID, seatNo)
    if err != nil {
        return nil, err
    }
    ok, err := e.seats.Release(ctx, rideID, seatNo, clientID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrSeatNotAvailable
    }
    e.Recalculate(ctx, rideID)
    e.emit(Event{
        Kind:        EventRequestCancelled,
        RideID:      rideID,
        SeatNo:      seatNo,
        ActorID:     clientID,
        RecipientID: ride.DriverID,
    })
    return e.GetTripDetails(ctx, rideID)
}

// ApproveSeat confirms a pending request.  Driver only.  The claimant
// is notified after the transition commits.
func (e *Engine) ApproveSeat(ctx context.Context, rideID uint64, seatNo uint32, actorID uint64) (*TripDetails, error) {
    return e.driverTransition(ctx, rideID, seatNo, actorID, EventSeatApproved, e.seats.Approve)
}

// RejectSeat declines a pending request, freeing the seat.  Driver
// only.  The prior claimant is notified.
func (e *Engine) RejectSeat(ctx context.Context, rideID uint64, seatNo uint32, actorID uint64) (*TripDetails, error) {
    return e.driverTransition(ctx, rideID, seatNo, actorID, EventSeatRejected, e.seats.Reject)
}

// BlockSeat reserves an available seat without a client.  Driver only.
func (e *Engine) BlockSeat(ctx context.Context, rideID uint64, seatNo uint32, actorID uint64) (*TripDetails, error) {
    return e.driverTransition(ctx, rideID, seatNo, actorID, "", e.seats.Block)
}

// UnblockSeat returns a blocked seat to the available pool.  Driver only.
func (e *Engine) UnblockSeat(ctx context.Context, rideID uint64, seatNo uint32, actorID uint64) (*TripDetails, error) {
    return e.driverTransition(ctx, rideID, seatNo, actorID, "", e.seats.Unblock)
}

// driverTransition runs one driver-gated conditional transition.  The
// seat is read first so the prior claimant can still be addressed by
// the notification once the row is cleared; a race between the read
// and the update at worst misdirects a best-effort message, never the
// transition itself.  eventKind "" means no notification is sent
// (block/unblock have no counterpart to inform).
func (e *Engine) driverTransition(
    ctx context.Context,
    rideID uint64,
    seatNo uint32,
    actorID uint64,
    eventKind string,
    apply func(context.Context, uint64, uint32) (bool, error),
) (*TripDetails, error) {
    ride, err := e.loadRideForSeat(ctx, rideID, seatNo)
    if err != nil {
        return nil, err
    }
    if ride.DriverID == 0 || ride.DriverID != actorID {
        return nil, ErrForbidden
    }
    var claimant *uint64
    if eventKind != "" {
        seat, err := e.seats.Get(ctx, rideID, seatNo)
        if err != nil {
            return nil, err
        }
        claimant = seat.ClientID
    }
    ok, err := apply(ctx, rideID, seatNo)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrSeatNotAvailable
    }
    e.Recalculate(ctx, rideID)
    if eventKind != "" && claimant != nil {
        e.emit(Event{
            Kind:        eventKind,
            RideID:      rideID,
            SeatNo:      seatNo,
            ActorID:     actorID,
            RecipientID: *claimant,
        })
    }
    return e.GetTripDetails(ctx, rideID)
}

// HandleDeparture applies the seat-side effects of a ride leaving:
// every request the driver never answered is rejected (each claimant
// notified exactly as a manual rejection would), every seat still
// open is blocked so no further boarding is possible, and the
// availability counter is recomputed.  Per-seat failures are logged
// and skipped so one bad row cannot stall the rest of the ride.
func (e *Engine) HandleDeparture(ctx context.Context, ride *model.Ride) {
    pending, err := e.seats.ListPending(ctx, ride.ID)
    if err != nil {
        log.Printf("booking: list pending seats for ride %d: %v", ride.ID, err)
    }
    for _, seat := range pending {
        ok, err := e.seats.Reject(ctx, ride.ID, seat.SeatNo)
        if err != nil {
            log.Printf("booking: auto-reject seat %d/%d: %v", ride.ID, seat.SeatNo, err)
            continue
        }
        if !ok || seat.ClientID == nil {
            // Lost a race with a manual action on this seat; whatever
            // won already produced its own notification.
            continue
        }
        e.emit(Event{
            Kind:        EventSeatRejected,
            RideID:      ride.ID,
            SeatNo:      seat.SeatNo,
            ActorID:     ride.DriverID,
            RecipientID: *seat.ClientID,
        })
    }
    if err := e.seats.BlockAllAvailable(ctx, ride.ID); err != nil {
        log.Printf("booking: block open seats for ride %d: %v", ride.ID, err)
    }
    e.Recalculate(ctx, ride.ID)
}

// loadRideForSeat fetches the ride and validates the seat number
// against its fixed capacity before any seat row is touched.
func (e *Engine) loadRideForSeat(ctx context.Context, rideID uint64, seatNo uint32) (*model.Ride, error) {
    if seatNo < 1 {
        return nil, ErrInvalidSeat
    }
    ride, err := e.rides.GetByID(ctx, rideID)
    if err != nil {
        return nil, err
    }
    if seatNo > ride.SeatCount {
        return nil, ErrInvalidSeat
    }
    return ride, nil
}

func (e *Engine) emit(ev Event) {
    if e.notify == nil {
        return
    }
    ev.OccurredAt = e.now()
    e.notify.Notify(ev)
}
