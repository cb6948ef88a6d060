package router // registers HTTP routes for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/config"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/handler"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
    // Health check for load balancers and monitoring.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication endpoints.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterRides registers ride browsing and the seat-booking
// endpoints.  All of them require an authenticated user; ride
// creation additionally requires the DRIVER role.  Driver-only seat
// transitions are not role-gated here on purpose — ownership of the
// specific ride is checked in the booking engine against the ride's
// driver_id, which is stricter than a role claim.
func RegisterRides(e *echo.Echo, r *handler.RideHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("DRIVER", "PASSENGER"))
    g.Use(middleware.RateLimit(rlCfg, rdb))

    g.GET("/rides", r.SearchRides)
    g.GET("/rides/:id", r.GetRide)

    create := g.Group("/rides", middleware.RequireRole("DRIVER"))
    create.POST("", r.CreateRide)

    g.POST("/rides/:id/seats/:no/request", r.RequestSeat)
    g.DELETE("/rides/:id/seats/:no/request", r.CancelRequest)
    g.POST("/rides/:id/seats/:no/approve", r.ApproveSeat)
    g.POST("/rides/:id/seats/:no/reject", r.RejectSeat)
    g.POST("/rides/:id/seats/:no/block", r.BlockSeat)
    g.POST("/rides/:id/seats/:no/unblock", r.UnblockSeat)
}
