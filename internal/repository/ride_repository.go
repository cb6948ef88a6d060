package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
)

// RideRepo provides data access to the rides table.  Ride lifecycle
// transitions use the same conditional-update pattern as seats: the
// status column is the guard, a zero-row result means another actor
// won the race and the caller should skip, not fail.
type RideRepo struct {
    db *sql.DB
}

// NewRideRepo returns a new RideRepo bound to the given database.
func NewRideRepo(db *sql.DB) *RideRepo { return &RideRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning ride and seat inserts at ride creation.
func (r *RideRepo) DB() *sql.DB { return r.db }

const rideColumns = `id, driver_id, seat_count, origin, destination, price_cents,
                     departure_time, started_at, status, available_seats, created_at, updated_at`

func scanRide(row interface{ Scan(...any) error }) (model.Ride, error) {
    var (
        ride      model.Ride
        driverID  sql.NullInt64
        startedAt sql.NullTime
    )
    err := row.Scan(&ride.ID, &driverID, &ride.SeatCount, &ride.Origin, &ride.Destination,
        &ride.PriceCents, &ride.DepartureTime, &startedAt, &ride.Status,
        &ride.AvailableSeats, &ride.CreatedAt, &ride.UpdatedAt)
    if err != nil {
        return model.Ride{}, err
    }
    if driverID.Valid {
        ride.DriverID = uint64(driverID.Int64)
    }
    if startedAt.Valid {
        t := startedAt.Time
        ride.StartedAt = &t
    }
    return ride, nil
}

// GetByID returns one ride or ErrRideNotFound.
func (r *RideRepo) GetByID(ctx context.Context, id uint64) (*model.Ride, error) {
    const q = `SELECT ` + rideColumns + ` FROM rides WHERE id = ?`
    ride, err := scanRide(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrRideNotFound
        }
        return nil, err
    }
    return &ride, nil
}

// CreateTx inserts a new ride within the scope of an existing
// transaction and populates the generated ID.  Seats are inserted
// separately by SeatRepo.CreateForRideTx under the same transaction;
// the caller commits or rolls back.
func (r *RideRepo) CreateTx(ctx context.Context, tx *sql.Tx, ride *model.Ride) error {
    const q = `INSERT INTO rides (driver_id, seat_count, origin, destination, price_cents,
                                  departure_time, status, available_seats)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        ride.DriverID, ride.SeatCount, ride.Origin, ride.Destination, ride.PriceCents,
        ride.DepartureTime.UTC(), model.RideStatusActive, ride.SeatCount)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    ride.ID = uint64(id)
    ride.Status = model.RideStatusActive
    ride.AvailableSeats = ride.SeatCount
    return nil
}

// Search returns upcoming active rides with at least minSeats seats
// still available, soonest departure first.  The cached
// available_seats counter serves as the coarse filter here; that is
// the reason the counter is persisted rather than derived at read
// time.
func (r *RideRepo) Search(ctx context.Context, after time.Time, minSeats uint32, limit int) ([]model.Ride, error) {
    const q = `SELECT ` + rideColumns + ` FROM rides
               WHERE status = ? AND departure_time >= ? AND available_seats >= ?
               ORDER BY departure_time ASC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, model.RideStatusActive, after.UTC(), minSeats, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectRides(rows)
}

// RecalculateAvailableSeats persists the derived available-seat count
// for a ride: the number of its seats currently in `available`
// status.  Running it twice with no intervening seat change is a
// no-op, so every mutation path can call it unconditionally.
func (r *RideRepo) RecalculateAvailableSeats(ctx context.Context, rideID uint64) error {
    const q = `UPDATE rides
               SET available_seats = (SELECT COUNT(*) FROM seats WHERE ride_id = ? AND status = ?)
               WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q, rideID, model.SeatStatusAvailable, rideID)
    return err
}

// ListDueForStart returns up to limit active rides whose departure
// time falls inside the auto-start window [oldest, latest], earliest
// departure first.  Rides older than the window are considered
// abandoned and are deliberately excluded.
func (r *RideRepo) ListDueForStart(ctx context.Context, oldest, latest time.Time, limit int) ([]model.Ride, error) {
    const q = `SELECT ` + rideColumns + ` FROM rides
               WHERE status = ? AND departure_time <= ? AND departure_time >= ?
               ORDER BY departure_time ASC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, model.RideStatusActive, latest.UTC(), oldest.UTC(), limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectRides(rows)
}

// ListDueForFinish returns up to limit in_progress rides that started
// at or before the cutoff, earliest start first.
func (r *RideRepo) ListDueForFinish(ctx context.Context, cutoff time.Time, limit int) ([]model.Ride, error) {
    const q = `SELECT ` + rideColumns + ` FROM rides
               WHERE status = ? AND started_at IS NOT NULL AND started_at <= ?
               ORDER BY started_at ASC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, model.RideStatusInProgress, cutoff.UTC(), limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectRides(rows)
}

// Start transitions a ride from active to in_progress and stamps
// started_at.  Only succeeds if the ride is still active, so two
// scheduler instances (or an overlapping tick) racing on the same
// ride produce exactly one winner.
func (r *RideRepo) Start(ctx context.Context, rideID uint64, startedAt time.Time) (bool, error) {
    const q = `UPDATE rides SET status = ?, started_at = ?
               WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.RideStatusInProgress, startedAt.UTC(), rideID, model.RideStatusActive)
    return oneRow(res, err)
}

// Finish transitions a ride from in_progress to finished.
func (r *RideRepo) Finish(ctx context.Context, rideID uint64) (bool, error) {
    const q = `UPDATE rides SET status = ?
               WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.RideStatusFinished, rideID, model.RideStatusInProgress)
    return oneRow(res, err)
}

func collectRides(rows *sql.Rows) ([]model.Ride, error) {
    rides := make([]model.Ride, 0)
    for rows.Next() {
        ride, err := scanRide(rows)
        if err != nil {
            return nil, err
        }
        rides = append(rides, ride)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return rides, nil
}
