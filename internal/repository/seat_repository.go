package repository

import (
    "context"
    "database/sql"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
)

// SeatRepo provides data access to the seats table.  Every state
// transition is a single UPDATE guarded by the seat's current status;
// the boolean result reports whether the row matched.  A false result
// means the precondition did not hold at the moment of the attempt —
// either some other actor already moved the seat, or it was never in
// that state.  Callers must not retry blindly on a false result.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// scanSeat reads one seats row.  client_id and holder_name are
// nullable and mapped to pointers.
func scanSeat(row interface{ Scan(...any) error }) (model.Seat, error) {
    var (
        s        model.Seat
        clientID sql.NullInt64
        holder   sql.NullString
    )
    err := row.Scan(&s.RideID, &s.SeatNo, &s.Status, &clientID, &holder, &s.UpdatedAt)
    if err != nil {
        return model.Seat{}, err
    }
    if clientID.Valid {
        cid := uint64(clientID.Int64)
        s.ClientID = &cid
    }
    if holder.Valid {
        h := holder.String
        s.HolderName = &h
    }
    return s, nil
}

const seatColumns = `ride_id, seat_no, status, client_id, holder_name, updated_at`

// ListByRide returns all seats of a ride ordered by seat number.
func (r *SeatRepo) ListByRide(ctx context.Context, rideID uint64) ([]model.Seat, error) {
    const q = `SELECT ` + seatColumns + ` FROM seats WHERE ride_id = ? ORDER BY seat_no`
    rows, err := r.db.QueryContext(ctx, q, rideID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]model.Seat, 0)
    for rows.Next() {
        s, err := scanSeat(rows)
        if err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}

// Get returns a single seat by its composite key.  ErrSeatNotFound is
// returned when the row does not exist.
func (r *SeatRepo) Get(ctx context.Context, rideID uint64, seatNo uint32) (*model.Seat, error) {
    const q = `SELECT ` + seatColumns + ` FROM seats WHERE ride_id = ? AND seat_no = ?`
    s, err := scanSeat(r.db.QueryRowContext(ctx, q, rideID, seatNo))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrSeatNotFound
        }
        return nil, err
    }
    return &s, nil
}

// CreateForRideTx inserts seat rows 1..seatCount for a freshly created
// ride, all in `available` status, within the provided transaction.
// It follows the bulk-insert shape used elsewhere in this package.
func (r *SeatRepo) CreateForRideTx(ctx context.Context, tx *sql.Tx, rideID uint64, seatCount uint32) error {
    if seatCount == 0 {
        return nil
    }
    query := `INSERT INTO seats (ride_id, seat_no, status) VALUES `
    args := make([]interface{}, 0, int(seatCount)*3)
    for no := uint32(1); no <= seatCount; no++ {
        if no > 1 {
            query += ","
        }
        query += "(?, ?, ?)"
        args = append(args, rideID, no, model.SeatStatusAvailable)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// Claim transitions a seat from available to pending on behalf of a
// client, recording the claimant and their display name.  Returns
// false when the seat was not available.
func (r *SeatRepo) Claim(ctx context.Context, rideID uint64, seatNo uint32, clientID uint64, holderName string) (bool, error) {
    const q = `UPDATE seats
               SET status = ?, client_id = ?, holder_name = ?
               WHERE ride_id = ? AND seat_no = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.SeatStatusPending, clientID, holderName,
        rideID, seatNo, model.SeatStatusAvailable)
    return oneRow(res, err)
}

// Release transitions a seat from pending back to available, but only
// when the pending request belongs to the given client.  Clearing
// client_id and holder_name keeps the "claimant set iff pending or
// approved" invariant.
func (r *SeatRepo) Release(ctx context.Context, rideID uint64, seatNo uint32, clientID uint64) (bool, error) {
    const q = `UPDATE seats
               SET status = ?, client_id = NULL, holder_name = NULL
               WHERE ride_id = ? AND seat_no = ? AND status = ? AND client_id = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.SeatStatusAvailable,
        rideID, seatNo, model.SeatStatusPending, clientID)
    return oneRow(res, err)
}

// Approve transitions a seat from pending to approved.  The claimant
// stays on the row.
func (r *SeatRepo) Approve(ctx context.Context, rideID uint64, seatNo uint32) (bool, error) {
    const q = `UPDATE seats SET status = ?
               WHERE ride_id = ? AND seat_no = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.SeatStatusApproved, rideID, seatNo, model.SeatStatusPending)
    return oneRow(res, err)
}

// Reject transitions a seat from pending back to available and clears
// the claimant.
func (r *SeatRepo) Reject(ctx context.Context, rideID uint64, seatNo uint32) (bool, error) {
    const q = `UPDATE seats
               SET status = ?, client_id = NULL, holder_name = NULL
               WHERE ride_id = ? AND seat_no = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.SeatStatusAvailable, rideID, seatNo, model.SeatStatusPending)
    return oneRow(res, err)
}

// Block transitions a seat from available to blocked.  Blocked seats
// carry no claimant.
func (r *SeatRepo) Block(ctx context.Context, rideID uint64, seatNo uint32) (bool, error) {
    const q = `UPDATE seats SET status = ?
               WHERE ride_id = ? AND seat_no = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.SeatStatusBlocked, rideID, seatNo, model.SeatStatusAvailable)
    return oneRow(res, err)
}

// Unblock transitions a seat from blocked back to available.
func (r *SeatRepo) Unblock(ctx context.Context, rideID uint64, seatNo uint32) (bool, error) {
    const q = `UPDATE seats SET status = ?
               WHERE ride_id = ? AND seat_no = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.SeatStatusAvailable, rideID, seatNo, model.SeatStatusBlocked)
    return oneRow(res, err)
}

// ListPending returns the seats of a ride that are currently pending.
// The lifecycle scheduler uses this to reject unanswered requests one
// by one at departure so every claimant gets notified individually.
func (r *SeatRepo) ListPending(ctx context.Context, rideID uint64) ([]model.Seat, error) {
    const q = `SELECT ` + seatColumns + ` FROM seats
               WHERE ride_id = ? AND status = ? ORDER BY seat_no`
    rows, err := r.db.QueryContext(ctx, q, rideID, model.SeatStatusPending)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]model.Seat, 0)
    for rows.Next() {
        s, err := scanSeat(rows)
        if err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}

// BlockAllAvailable closes boarding on a departed ride by moving every
// seat still available to blocked in one statement.  The per-row
// status guard makes the call safe to repeat.
func (r *SeatRepo) BlockAllAvailable(ctx context.Context, rideID uint64) error {
    const q = `UPDATE seats SET status = ?
               WHERE ride_id = ? AND status = ?`
    _, err := r.db.ExecContext(ctx, q,
        model.SeatStatusBlocked, rideID, model.SeatStatusAvailable)
    return err
}

// oneRow reports whether an UPDATE matched exactly one row.  The
// queries in this package address rows by key, so affected is 0 or 1.
func oneRow(res sql.Result, err error) (bool, error) {
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}
