package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/booking"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/cache"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/repository"
)

// RideHandler exposes ride browsing and the seat-booking state
// machine over HTTP.  Seat actions delegate entirely to the booking
// engine; this layer only parses the request, resolves the acting
// identity and maps engine outcomes to status codes:
//
//  VALIDATION → 400, FORBIDDEN → 403, ride not found → 404,
//  SEAT_NOT_AVAILABLE (lost race / wrong state) → 409, rest → 500.
type RideHandler struct {
    Engine   *booking.Engine
    RideRepo *repository.RideRepo
    SeatRepo *repository.SeatRepo
    Cache    *cache.TripCache // may be nil
}

// NewRideHandler constructs a RideHandler.  Cache may be nil.
func NewRideHandler(engine *booking.Engine, rideRepo *repository.RideRepo, seatRepo *repository.SeatRepo, tc *cache.TripCache) *RideHandler {
    if engine == nil || rideRepo == nil || seatRepo == nil {
        panic("nil dependency passed to NewRideHandler")
    }
    return &RideHandler{Engine: engine, RideRepo: rideRepo, SeatRepo: seatRepo, Cache: tc}
}

type createRideReq struct {
    SeatCount     uint32 `json:"seat_count"`
    Origin        string `json:"origin"`
    Destination   string `json:"destination"`
    PriceCents    uint32 `json:"price_cents"`
    DepartureTime string `json:"departure_time"` // RFC3339
}

// CreateRide handles POST /v1/rides (driver role).  The ride and its
// seat rows 1..seat_count are inserted in one transaction so a ride
// can never be observed without its seats.
func (h *RideHandler) CreateRide(c echo.Context) error {
    driverID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createRideReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.SeatCount < 1 || req.SeatCount > 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_count must be between 1 and 8"})
    }
    if req.Origin == "" || req.Destination == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination are required"})
    }
    departure, err := time.Parse(time.RFC3339, req.DepartureTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_time must be RFC3339"})
    }
    if departure.Before(time.Now().UTC()) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_time is in the past"})
    }

    ctx := c.Request().Context()
    tx, err := h.RideRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    ride := &model.Ride{
        DriverID:      driverID,
        SeatCount:     req.SeatCount,
        Origin:        req.Origin,
        Destination:   req.Destination,
        PriceCents:    req.PriceCents,
        DepartureTime: departure,
    }
    if err := h.RideRepo.CreateTx(ctx, tx, ride); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ride"})
    }
    if err := h.SeatRepo.CreateForRideTx(ctx, tx, ride.ID, ride.SeatCount); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create seats"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    // Seat birth counts as a mutation; settle the derived counter.
    h.Engine.Recalculate(ctx, ride.ID)

    details, err := h.Engine.GetTripDetails(ctx, ride.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, details)
}

// SearchRides handles GET /v1/rides?seats=N&from=RFC3339 — upcoming
// active rides with at least N available seats, soonest first.  This
// is the read path the cached available_seats counter exists for.
func (h *RideHandler) SearchRides(c echo.Context) error {
    minSeats := uint32(1)
    if s := c.QueryParam("seats"); s != "" {
        n, err := strconv.ParseUint(s, 10, 32)
        if err != nil || n == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seats parameter"})
        }
        minSeats = uint32(n)
    }
    after := time.Now().UTC()
    if s := c.QueryParam("from"); s != "" {
        t, err := time.Parse(time.RFC3339, s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
        }
        after = t
    }
    rides, err := h.RideRepo.Search(c.Request().Context(), after, minSeats, 50)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"rides": rides})
}

// GetRide handles GET /v1/rides/:id, returning the ride plus its full
// seat list.  Read-only; served from the Redis cache when possible.
func (h *RideHandler) GetRide(c echo.Context) error {
    rideID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || rideID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
    }
    ctx := c.Request().Context()

    var cached booking.TripDetails
    if h.Cache.GetDetails(ctx, rideID, &cached) {
        return c.JSON(http.StatusOK, &cached)
    }

    details, err := h.Engine.GetTripDetails(ctx, rideID)
    if err != nil {
        return h.mapError(c, err)
    }
    h.Cache.SetDetails(ctx, rideID, details)
    return c.JSON(http.StatusOK, details)
}

// RequestSeat handles POST /v1/rides/:id/seats/:no/request.
func (h *RideHandler) RequestSeat(c echo.Context) error {
    return h.seatAction(c, func(rideID uint64, seatNo uint32, userID uint64) (*booking.TripDetails, error) {
        return h.Engine.RequestSeat(c.Request().Context(), rideID, seatNo, userID, getFullName(c))
    })
}

// CancelRequest handles DELETE /v1/rides/:id/seats/:no/request.
func (h *RideHandler) CancelRequest(c echo.Context) error {
    return h.seatAction(c, func(rideID uint64, seatNo uint32, userID uint64) (*booking.TripDetails, error) {
        return h.Engine.CancelRequest(c.Request().Context(), rideID, seatNo, userID)
    })
}

// ApproveSeat handles POST /v1/rides/:id/seats/:no/approve.
func (h *RideHandler) ApproveSeat(c echo.Context) error {
    return h.seatAction(c, func(rideID uint64, seatNo uint32, userID uint64) (*booking.TripDetails, error) {
        return h.Engine.ApproveSeat(c.Request().Context(), rideID, seatNo, userID)
    })
}

// RejectSeat handles POST /v1/rides/:id/seats/:no/reject.
func (h *RideHandler) RejectSeat(c echo.Context) error {
    return h.seatAction(c, func(rideID uint64, seatNo uint32, userID uint64) (*booking.TripDetails, error) {
        return h.Engine.RejectSeat(c.Request().Context(), rideID, seatNo, userID)
    })
}

// BlockSeat handles POST /v1/rides/:id/seats/:no/block.
func (h *RideHandler) BlockSeat(c echo.Context) error {
    return h.seatAction(c, func(rideID uint64, seatNo uint32, userID uint64) (*booking.TripDetails, error) {
        return h.Engine.BlockSeat(c.Request().Context(), rideID, seatNo, userID)
    })
}

// UnblockSeat handles POST /v1/rides/:id/seats/:no/unblock.
func (h *RideHandler) UnblockSeat(c echo.Context) error {
    return h.seatAction(c, func(rideID uint64, seatNo uint32, userID uint64) (*booking.TripDetails, error) {
        return h.Engine.UnblockSeat(c.Request().Context(), rideID, seatNo, userID)
    })
}

// seatAction parses the common path parameters, runs one engine
// operation and maps its outcome.
func (h *RideHandler) seatAction(c echo.Context, op func(rideID uint64, seatNo uint32, userID uint64) (*booking.TripDetails, error)) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rideID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || rideID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
    }
    seatNo, err := strconv.ParseUint(c.Param("no"), 10, 32)
    if err != nil || seatNo == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat number"})
    }
    details, err := op(rideID, uint32(seatNo), userID)
    if err != nil {
        return h.mapError(c, err)
    }
    return c.JSON(http.StatusOK, details)
}

func (h *RideHandler) mapError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, booking.ErrInvalidSeat):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat number"})
    case errors.Is(err, booking.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, booking.ErrSeatNotAvailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "SEAT_NOT_AVAILABLE"})
    case errors.Is(err, repository.ErrRideNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "ride not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
