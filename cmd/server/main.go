package main

import (
    "context"
    "log"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/booking"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/cache"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/config"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/database"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/handler"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/lifecycle"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/notify"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/repository"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and trip cache disabled")
    }

    rideRepo := repository.NewRideRepo(db)
    seatRepo := repository.NewSeatRepo(db)
    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)

    tripCache := cache.NewTripCache(rdb)
    dispatcher := notify.NewDispatcher()
    engine := booking.NewEngine(rideRepo, seatRepo, dispatcher, tripCache)

    scheduler := lifecycle.New(cfg.Lifecycle, rideRepo, engine, nil)
    scheduler.Start()
    defer scheduler.Stop()

    // Notification consumer appends delivered events to a local log;
    // it reconnects forever on its own.
    go notify.StartConsumer()

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
    router.RegisterRides(e, handler.NewRideHandler(engine, rideRepo, seatRepo, tripCache),
        cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    go func() {
        if err := e.Start(addr); err != nil {
            log.Printf("server stopped: %v", err)
        }
    }()

    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit
    log.Printf("shutting down")

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := e.Shutdown(ctx); err != nil {
        log.Printf("server shutdown: %v", err)
    }
}
