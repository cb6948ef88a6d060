// Package lifecycle drives time-based ride transitions: rides past
// their departure are auto-started (closing their seat map) and rides
// running past a maximum duration are auto-finished.  The scheduler
// holds no durable state of its own; after a restart the next tick
// reconstructs everything it needs from the store, and concurrent
// instances are kept honest by the same conditional updates user
// actions rely on.
package lifecycle

import (
    "context"
    "log"
    "sync"
    "sync/atomic"
    "time"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/booking"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/config"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
)

// batchSize bounds how many rides one tick will touch per pass.
const batchSize = 50

// RideStore is the ride-side persistence the scheduler needs.
// Implemented by repository.RideRepo.
type RideStore interface {
    ListDueForStart(ctx context.Context, oldest, latest time.Time, limit int) ([]model.Ride, error)
    ListDueForFinish(ctx context.Context, cutoff time.Time, limit int) ([]model.Ride, error)
    Start(ctx context.Context, rideID uint64, startedAt time.Time) (bool, error)
    Finish(ctx context.Context, rideID uint64) (bool, error)
}

// Scheduler owns one recurring timer.  Start fires a tick immediately
// and then on a fixed interval; Stop cancels the timer.  Both are
// idempotent.  A tick that fires while the previous one is still
// running is a no-op; that single-flight guard is an in-process flag
// only — overlap across processes is resolved per ride by the
// conditional ride-status updates, not by the flag.
type Scheduler struct {
    cfg    config.LifecycleConfig
    rides  RideStore
    engine *booking.Engine
    now    func() time.Time

    mu     sync.Mutex
    cancel context.CancelFunc
    done   chan struct{}

    ticking atomic.Bool
}

// New constructs a Scheduler.  now may be nil, in which case the wall
// clock (UTC) is used; tests inject a fixed clock instead.
func New(cfg config.LifecycleConfig, rides RideStore, engine *booking.Engine, now func() time.Time) *Scheduler {
    if rides == nil || engine == nil {
        panic("nil dependency passed to lifecycle.New")
    }
    if now == nil {
        now = func() time.Time { return time.Now().UTC() }
    }
    return &Scheduler{cfg: cfg, rides: rides, engine: engine, now: now}
}

// Start launches the timer loop.  Calling Start while already running
// is a no-op.
func (s *Scheduler) Start() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.cancel != nil {
        return
    }
    ctx, cancel := context.WithCancel(context.Background())
    s.cancel = cancel
    s.done = make(chan struct{})
    go s.run(ctx)
    log.Printf("lifecycle: scheduler started, tick interval %s", s.cfg.TickInterval())
}

// Stop cancels the timer and waits for an in-flight tick to return.
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
    s.mu.Lock()
    cancel, done := s.cancel, s.done
    s.cancel = nil
    s.mu.Unlock()
    if cancel == nil {
        return
    }
    cancel()
    <-done
    log.Printf("lifecycle: scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
    defer close(s.done)
    s.Tick(ctx)
    ticker := time.NewTicker(s.cfg.TickInterval())
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            s.Tick(ctx)
        }
    }
}

// Tick runs one auto-start pass and one auto-finish pass.  The two
// passes are independent; a failure in one never suppresses the
// other, and an unexpected panic is contained here so the next
// scheduled tick still fires.
func (s *Scheduler) Tick(ctx context.Context) {
    if !s.ticking.CompareAndSwap(false, true) {
        return
    }
    defer s.ticking.Store(false)
    defer func() {
        if r := recover(); r != nil {
            log.Printf("lifecycle: tick panic recovered: %v", r)
        }
    }()
    s.autoStartPass(ctx)
    s.autoFinishPass(ctx)
}

// autoStartPass promotes active rides whose departure lies between
// grace and max-age in the past.  Rides beyond max-age are treated as
// abandoned and left alone.  Candidates come back earliest-due first
// so long-overdue rides are served before fresh ones.
func (s *Scheduler) autoStartPass(ctx context.Context) {
    now := s.now()
    latest := now.Add(-time.Duration(s.cfg.AutoStartGraceMinutes) * time.Minute)
    oldest := now.Add(-time.Duration(s.cfg.AutoStartMaxAgeHours) * time.Hour)
    rides, err := s.rides.ListDueForStart(ctx, oldest, latest, batchSize)
    if err != nil {
        log.Printf("lifecycle: list rides due for start: %v", err)
        return
    }
    for i := range rides {
        ride := rides[i]
        ok, err := s.rides.Start(ctx, ride.ID, now)
        if err != nil {
            log.Printf("lifecycle: start ride %d: %v", ride.ID, err)
            continue
        }
        if !ok {
            // Another instance or an overlapping tick already
            // started it.  Not an error.
            continue
        }
        startedAt := now
        ride.Status = model.RideStatusInProgress
        ride.StartedAt = &startedAt
        s.engine.HandleDeparture(ctx, &ride)
        log.Printf("lifecycle: ride %d auto-started (departure %s)", ride.ID, ride.DepartureTime.Format(time.RFC3339))
    }
}

// autoFinishPass closes in_progress rides that started longer ago
// than the finish max-age, earliest start first.  Finishing changes
// no seat rows, but the recalculation still runs so the cached trip
// read model is dropped and the next read sees the finished status.
func (s *Scheduler) autoFinishPass(ctx context.Context) {
    cutoff := s.now().Add(-time.Duration(s.cfg.AutoFinishMaxAgeHours) * time.Hour)
    rides, err := s.rides.ListDueForFinish(ctx, cutoff, batchSize)
    if err != nil {
        log.Printf("lifecycle: list rides due for finish: %v", err)
        return
    }
    for _, ride := range rides {
        ok, err := s.rides.Finish(ctx, ride.ID)
        if err != nil {
            log.Printf("lifecycle: finish ride %d: %v", ride.ID, err)
            continue
        }
        if !ok {
            continue
        }
        s.engine.Recalculate(ctx, ride.ID)
        log.Printf("lifecycle: ride %d auto-finished", ride.ID)
    }
}
