// Package booking implements the seat state machine for rides.  All
// transitions are delegated to status-conditional store updates; the
// engine adds actor checks, availability recalculation and best-effort
// notifications on top.  These sentinel values let handlers map
// outcomes onto distinct HTTP responses.
package booking

import "errors"

// ErrSeatNotAvailable is the conflict outcome: the conditional update
// matched zero rows because the seat was not in the required state at
// the moment of the attempt.  Of N concurrent attempts to leave a
// given state, at most one succeeds; the losers receive this error
// and must surface it instead of retrying.
var ErrSeatNotAvailable = errors.New("SEAT_NOT_AVAILABLE")

// ErrForbidden is returned when the acting user is not the ride's
// driver on a driver-only transition, or when the ride has no driver
// on record at all.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidSeat is returned when the seat number is outside
// [1, ride.SeatCount].  It is rejected before any store access.
var ErrInvalidSeat = errors.New("invalid seat number")
