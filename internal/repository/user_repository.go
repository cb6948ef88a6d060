package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrPhoneExists = errors.New("phone already registered")

// Create inserts a user and returns its ID.  The phone number is
// normalized before insert; a duplicate-key failure maps to
// ErrPhoneExists.
func (r *UserRepo) Create(ctx context.Context, phone, fullName, password, role string, cost int) (uint64, error) {
    phone = strings.TrimSpace(phone)
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (phone, full_name, password_hash, role) VALUES (?,?,?,?)",
        phone, fullName, hash, role)
    if err != nil {
        // MySQL duplicate entry
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrPhoneExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByPhone fetches a user by normalized phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
    phone = strings.TrimSpace(phone)
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,phone,full_name,password_hash,role,is_active,created_at,updated_at FROM users WHERE phone=? LIMIT 1",
        phone).Scan(&u.ID, &u.Phone, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,phone,full_name,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
        id).Scan(&u.ID, &u.Phone, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}
