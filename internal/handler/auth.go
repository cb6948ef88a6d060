package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/config"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/repository"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/utils"
)

// UserStore is the user persistence the auth endpoints need.
// Implemented by repository.UserRepo; tests substitute fakes.
type UserStore interface {
    Create(ctx context.Context, phone, fullName, password, role string, cost int) (uint64, error)
    GetByPhone(ctx context.Context, phone string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore manages refresh-token sessions.  Implemented by
// repository.TokenRepo.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    LookupActive(ctx context.Context, tokenHash string) (uint64, error)
    Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error
    Revoke(ctx context.Context, tokenHash string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
    Phone    string `json:"phone"`
    FullName string `json:"full_name"`
    Password string `json:"password"`
    Role     string `json:"role"` // DRIVER | PASSENGER
}
type loginReq struct {
    Phone    string `json:"phone"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID       uint64 `json:"id"`
    Phone    string `json:"phone"`
    FullName string `json:"full_name"`
    Role     string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Phone = strings.TrimSpace(req.Phone)
    req.FullName = strings.TrimSpace(req.FullName)
    if req.Phone == "" || req.Password == "" || req.FullName == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone/full_name/password required"})
    }
    role := strings.ToUpper(strings.TrimSpace(req.Role))
    if role != "DRIVER" && role != "PASSENGER" {
        role = "PASSENGER"
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Phone, req.FullName, req.Password, role, h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrPhoneExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "phone already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    return h.issueTokens(c, ctx, http.StatusCreated, userPart{ID: uid, Phone: req.Phone, FullName: req.FullName, Role: role})
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Phone = strings.TrimSpace(req.Phone)
    if req.Phone == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByPhone(ctx, req.Phone)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    return h.issueTokens(c, ctx, http.StatusOK, userPart{ID: u.ID, Phone: u.Phone, FullName: u.FullName, Role: u.Role})
}

// Refresh: exchange a valid refresh token for a fresh pair.  The
// presented token is retired and its replacement recorded in one
// store transaction, so a replayed token — including the loser of two
// concurrent refreshes — always comes back 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
    uid, err := h.Tokens.LookupActive(ctx, hash)
    if err != nil {
        if err == repository.ErrTokenInvalid {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.Rotate(ctx, hash, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        if err == repository.ErrTokenInvalid {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rotate failed"})
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.FullName, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        User:    userPart{ID: u.ID, Phone: u.Phone, FullName: u.FullName, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

// Logout: invalidate the presented refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Tokens.Revoke(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, userPart{ID: u.ID, Phone: u.Phone, FullName: u.FullName, Role: u.Role})
}

// issueTokens signs an access token, mints and stores a refresh
// token, and writes the auth response.
func (h *AuthHandler) issueTokens(c echo.Context, ctx context.Context, status int, user userPart) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Role, user.FullName, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }
    return c.JSON(status, authResp{
        User:    user,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}
