package model

import "time"

// User represents an application user record as stored in the
// `users` table.  A user is either a DRIVER who offers rides or a
// PASSENGER who requests seats; the role is carried in the JWT and
// enforced by middleware, while seat-level driver checks are done
// against the ride's driver_id.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Phone        – unique phone number used for login.
//  FullName     – display name, denormalized onto seats when the
//                 user claims one.
//  PasswordHash – bcrypt hashed password.
//  Role         – DRIVER or PASSENGER.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Phone        string    // users.phone
    FullName     string    // users.full_name
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
