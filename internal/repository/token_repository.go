package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"
)

// ErrTokenInvalid covers every way a presented refresh token can be
// unusable: unknown, expired, revoked, or already rotated.  Callers
// get one opaque outcome on purpose — distinguishing the cases would
// tell an attacker which stolen tokens are still worth replaying.
var ErrTokenInvalid = errors.New("refresh token invalid")

// TokenRepo persists refresh-token sessions.  Only SHA-256 hashes of
// token values are stored.  Rotation relies on the same
// conditional-update pattern the seat rows do: the revoke is guarded
// by `revoked_at IS NULL`, so of two concurrent refreshes presenting
// the same token exactly one rotates and the other is rejected as a
// replay.
type TokenRepo struct {
    db *sql.DB
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh opens a session: one row per issued refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
    const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q, userID, tokenHash, exp.UTC())
    return err
}

// LookupActive resolves a presented hash to its user, or
// ErrTokenInvalid.  Expiry and revocation are checked in SQL so the
// decision is made against the database clock, not this process's.
func (r *TokenRepo) LookupActive(ctx context.Context, tokenHash string) (uint64, error) {
    const q = `SELECT user_id FROM refresh_tokens
               WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`
    var userID uint64
    err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID)
    if err == sql.ErrNoRows {
        return 0, ErrTokenInvalid
    }
    if err != nil {
        return 0, err
    }
    return userID, nil
}

// Rotate retires the presented token and records its replacement in
// one transaction.  The conditional revoke admits exactly one winner;
// a second attempt with the same hash gets ErrTokenInvalid, which is
// how a replayed refresh surfaces.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const revoke = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
                    WHERE token_hash = ? AND revoked_at IS NULL`
    res, err := tx.ExecContext(ctx, revoke, oldHash)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n != 1 {
        return ErrTokenInvalid
    }

    const insert = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
    if _, err := tx.ExecContext(ctx, insert, userID, newHash, exp.UTC()); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Revoke closes the session for the presented hash.  Revoking an
// unknown or already-revoked token is a no-op rather than an error;
// logout must be idempotent.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
    const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
               WHERE token_hash = ? AND revoked_at IS NULL`
    _, err := r.db.ExecContext(ctx, q, tokenHash)
    return err
}
