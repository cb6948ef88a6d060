// Package repository implements MySQL persistence for rides, seats,
// users and refresh tokens.  Status transitions on rides and seats are
// expressed as single conditional UPDATE statements ("set status = X
// where key = K and status = <precondition>"); the database's atomic
// compare-and-set on the status column is the only synchronization
// primitive the service relies on, so the same guarantees hold when
// several service instances race on one row.  Repositories report the
// zero-row outcome of a conditional update to their callers instead of
// mapping it to an error; deciding what a lost race means belongs to
// the booking layer.
package repository

import "errors"

// ErrRideNotFound is returned when a ride lookup matches no row.
var ErrRideNotFound = errors.New("ride not found")

// ErrSeatNotFound is returned when a (ride, seat_no) lookup matches
// no row.
var ErrSeatNotFound = errors.New("seat not found")
