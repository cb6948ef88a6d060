package lifecycle_test

import (
    "context"
    "sort"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/booking"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/config"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/lifecycle"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/model"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/repository"
)

// tripStore backs both the scheduler and the engine it drives, so a
// tick's seat-side effects can be asserted end to end.  As in the
// engine tests, one mutex stands in for the database's row-level
// atomicity.
type tripStore struct {
    mu    sync.Mutex
    rides map[uint64]*model.Ride
    seats map[uint64]map[uint32]*model.Seat

    listStartCalls int
    startGate      chan struct{} // when set, ListDueForStart blocks until closed
}

func newTripStore() *tripStore {
    return &tripStore{
        rides: make(map[uint64]*model.Ride),
        seats: make(map[uint64]map[uint32]*model.Seat),
    }
}

func (ts *tripStore) addRide(r model.Ride) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    cp := r
    ts.rides[r.ID] = &cp
    ts.seats[r.ID] = make(map[uint32]*model.Seat)
    for no := uint32(1); no <= r.SeatCount; no++ {
        ts.seats[r.ID][no] = &model.Seat{RideID: r.ID, SeatNo: no, Status: model.SeatStatusAvailable}
    }
}

func (ts *tripStore) setSeat(rideID uint64, seatNo uint32, status string, clientID *uint64) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s := ts.seats[rideID][seatNo]
    s.Status = status
    s.ClientID = clientID
}

func (ts *tripStore) ride(id uint64) model.Ride {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    return *ts.rides[id]
}

func (ts *tripStore) seat(rideID uint64, seatNo uint32) model.Seat {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    return *ts.seats[rideID][seatNo]
}

// lifecycle.RideStore

func (ts *tripStore) ListDueForStart(_ context.Context, oldest, latest time.Time, limit int) ([]model.Ride, error) {
    ts.mu.Lock()
    ts.listStartCalls++
    gate := ts.startGate
    ts.mu.Unlock()
    if gate != nil {
        <-gate
    }

    ts.mu.Lock()
    defer ts.mu.Unlock()
    var out []model.Ride
    for _, r := range ts.rides {
        if r.Status != model.RideStatusActive {
            continue
        }
        if r.DepartureTime.Before(oldest) || r.DepartureTime.After(latest) {
            continue
        }
        out = append(out, *r)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
    if len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

func (ts *tripStore) ListDueForFinish(_ context.Context, cutoff time.Time, limit int) ([]model.Ride, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    var out []model.Ride
    for _, r := range ts.rides {
        if r.Status != model.RideStatusInProgress || r.StartedAt == nil || r.StartedAt.After(cutoff) {
            continue
        }
        out = append(out, *r)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(*out[j].StartedAt) })
    if len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

func (ts *tripStore) Start(_ context.Context, rideID uint64, startedAt time.Time) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    r, ok := ts.rides[rideID]
    if !ok || r.Status != model.RideStatusActive {
        return false, nil
    }
    at := startedAt
    r.Status = model.RideStatusInProgress
    r.StartedAt = &at
    return true, nil
}

func (ts *tripStore) Finish(_ context.Context, rideID uint64) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    r, ok := ts.rides[rideID]
    if !ok || r.Status != model.RideStatusInProgress {
        return false, nil
    }
    r.Status = model.RideStatusFinished
    return true, nil
}

// booking.RideStore

func (ts *tripStore) GetByID(_ context.Context, id uint64) (*model.Ride, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    r, ok := ts.rides[id]
    if !ok {
        return nil, repository.ErrRideNotFound
    }
    cp := *r
    return &cp, nil
}

func (ts *tripStore) RecalculateAvailableSeats(_ context.Context, rideID uint64) error {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    r, ok := ts.rides[rideID]
    if !ok {
        return repository.ErrRideNotFound
    }
    n := uint32(0)
    for _, s := range ts.seats[rideID] {
        if s.Status == model.SeatStatusAvailable {
            n++
        }
    }
    r.AvailableSeats = n
    return nil
}

// booking.SeatStore — the scheduler path only exercises the departure
// subset, but the full interface must be satisfied.

func (ts *tripStore) ListByRide(_ context.Context, rideID uint64) ([]model.Seat, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    out := make([]model.Seat, 0, len(ts.seats[rideID]))
    for _, s := range ts.seats[rideID] {
        out = append(out, *s)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].SeatNo < out[j].SeatNo })
    return out, nil
}

func (ts *tripStore) Get(_ context.Context, rideID uint64, seatNo uint32) (*model.Seat, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s, ok := ts.seats[rideID][seatNo]
    if !ok {
        return nil, repository.ErrSeatNotFound
    }
    cp := *s
    return &cp, nil
}

func (ts *tripStore) Claim(_ context.Context, rideID uint64, seatNo uint32, clientID uint64, holderName string) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s, ok := ts.seats[rideID][seatNo]
    if !ok || s.Status != model.SeatStatusAvailable {
        return false, nil
    }
    s.Status = model.SeatStatusPending
    s.ClientID = &clientID
    s.HolderName = &holderName
    return true, nil
}

func (ts *tripStore) Release(_ context.Context, rideID uint64, seatNo uint32, clientID uint64) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s, ok := ts.seats[rideID][seatNo]
    if !ok || s.Status != model.SeatStatusPending || s.ClientID == nil || *s.ClientID != clientID {
        return false, nil
    }
    s.Status = model.SeatStatusAvailable
    s.ClientID = nil
    s.HolderName = nil
    return true, nil
}

func (ts *tripStore) Approve(_ context.Context, rideID uint64, seatNo uint32) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s, ok := ts.seats[rideID][seatNo]
    if !ok || s.Status != model.SeatStatusPending {
        return false, nil
    }
    s.Status = model.SeatStatusApproved
    return true, nil
}

func (ts *tripStore) Reject(_ context.Context, rideID uint64, seatNo uint32) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s, ok := ts.seats[rideID][seatNo]
    if !ok || s.Status != model.SeatStatusPending {
        return false, nil
    }
    s.Status = model.SeatStatusAvailable
    s.ClientID = nil
    s.HolderName = nil
    return true, nil
}

func (ts *tripStore) Block(_ context.Context, rideID uint64, seatNo uint32) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s, ok := ts.seats[rideID][seatNo]
    if !ok || s.Status != model.SeatStatusAvailable {
        return false, nil
    }
    s.Status = model.SeatStatusBlocked
    return true, nil
}

func (ts *tripStore) Unblock(_ context.Context, rideID uint64, seatNo uint32) (bool, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    s, ok := ts.seats[rideID][seatNo]
    if !ok || s.Status != model.SeatStatusBlocked {
        return false, nil
    }
    s.Status = model.SeatStatusAvailable
    return true, nil
}

func (ts *tripStore) ListPending(_ context.Context, rideID uint64) ([]model.Seat, error) {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    var out []model.Seat
    for _, s := range ts.seats[rideID] {
        if s.Status == model.SeatStatusPending {
            out = append(out, *s)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].SeatNo < out[j].SeatNo })
    return out, nil
}

func (ts *tripStore) BlockAllAvailable(_ context.Context, rideID uint64) error {
    ts.mu.Lock()
    defer ts.mu.Unlock()
    for _, s := range ts.seats[rideID] {
        if s.Status == model.SeatStatusAvailable {
            s.Status = model.SeatStatusBlocked
        }
    }
    return nil
}

type recorder struct {
    mu     sync.Mutex
    events []booking.Event
}

func (r *recorder) Notify(ev booking.Event) {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.events = append(r.events, ev)
}

func (r *recorder) all() []booking.Event {
    r.mu.Lock()
    defer r.mu.Unlock()
    out := make([]booking.Event, len(r.events))
    copy(out, r.events)
    return out
}

func testConfig() config.LifecycleConfig {
    return config.LifecycleConfig{
        AutoStartGraceMinutes:     15,
        AutoStartMaxAgeHours:      24,
        AutoStartIntervalSeconds:  60,
        AutoFinishIntervalSeconds: 60,
        AutoFinishMaxAgeHours:     48,
    }
}

func newScheduler(t *testing.T, now time.Time) (*lifecycle.Scheduler, *tripStore, *recorder) {
    t.Helper()
    store := newTripStore()
    rec := &recorder{}
    engine := booking.NewEngine(store, store, rec, nil)
    clock := func() time.Time { return now }
    return lifecycle.New(testConfig(), store, engine, clock), store, rec
}

func TestTick_AutoStartsDueRide(t *testing.T) {
    now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
    sched, store, rec := newScheduler(t, now)

    client := uint64(101)
    store.addRide(model.Ride{
        ID:            1,
        DriverID:      10,
        SeatCount:     4,
        Status:        model.RideStatusActive,
        DepartureTime: now.Add(-20 * time.Minute), // past the 15-minute grace
    })
    store.setSeat(1, 1, model.SeatStatusApproved, ptr(uint64(100)))
    store.setSeat(1, 2, model.SeatStatusPending, &client)

    sched.Tick(context.Background())

    ride := store.ride(1)
    assert.Equal(t, model.RideStatusInProgress, ride.Status)
    require.NotNil(t, ride.StartedAt)
    assert.Equal(t, now, *ride.StartedAt)

    // Departure side effects: the unanswered request is rejected, the
    // open seats are locked, the approved passenger rides along.
    assert.Equal(t, model.SeatStatusApproved, store.seat(1, 1).Status)
    assert.Equal(t, model.SeatStatusBlocked, store.seat(1, 2).Status)
    assert.Equal(t, model.SeatStatusBlocked, store.seat(1, 3).Status)
    assert.Equal(t, model.SeatStatusBlocked, store.seat(1, 4).Status)
    assert.Equal(t, uint32(0), ride.AvailableSeats)

    events := rec.all()
    require.Len(t, events, 1)
    assert.Equal(t, booking.EventSeatRejected, events[0].Kind)
    assert.Equal(t, client, events[0].RecipientID)
}

func TestTick_RespectsGraceAndMaxAge(t *testing.T) {
    now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
    sched, store, _ := newScheduler(t, now)

    // Departure too recent: still within the grace window.
    store.addRide(model.Ride{
        ID: 1, DriverID: 10, SeatCount: 2,
        Status:        model.RideStatusActive,
        DepartureTime: now.Add(-10 * time.Minute),
    })
    // Departure too old: abandoned, never auto-started.
    store.addRide(model.Ride{
        ID: 2, DriverID: 11, SeatCount: 2,
        Status:        model.RideStatusActive,
        DepartureTime: now.Add(-25 * time.Hour),
    })

    sched.Tick(context.Background())

    assert.Equal(t, model.RideStatusActive, store.ride(1).Status)
    assert.Equal(t, model.RideStatusActive, store.ride(2).Status)
}

func TestTick_StartsAtMostOnce(t *testing.T) {
    now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
    sched, store, rec := newScheduler(t, now)

    client := uint64(101)
    store.addRide(model.Ride{
        ID: 1, DriverID: 10, SeatCount: 2,
        Status:        model.RideStatusActive,
        DepartureTime: now.Add(-time.Hour),
    })
    store.setSeat(1, 1, model.SeatStatusPending, &client)

    sched.Tick(context.Background())
    first := store.ride(1)
    sched.Tick(context.Background())

    second := store.ride(1)
    assert.Equal(t, model.RideStatusInProgress, second.Status)
    assert.Equal(t, *first.StartedAt, *second.StartedAt)
    assert.Len(t, rec.all(), 1, "departure effects must not repeat")
}

func TestTick_AutoFinishesLongRunningRide(t *testing.T) {
    now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
    sched, store, _ := newScheduler(t, now)

    overdue := now.Add(-50 * time.Hour)
    recent := now.Add(-10 * time.Hour)
    store.addRide(model.Ride{
        ID: 1, DriverID: 10, SeatCount: 2,
        Status:    model.RideStatusInProgress,
        StartedAt: &overdue,
    })
    store.addRide(model.Ride{
        ID: 2, DriverID: 11, SeatCount: 2,
        Status:    model.RideStatusInProgress,
        StartedAt: &recent,
    })

    sched.Tick(context.Background())

    assert.Equal(t, model.RideStatusFinished, store.ride(1).Status)
    assert.Equal(t, model.RideStatusInProgress, store.ride(2).Status)
}

// invalidationLog records which rides had their cached read model
// dropped.
type invalidationLog struct {
    mu  sync.Mutex
    ids []uint64
}

func (l *invalidationLog) InvalidateRide(_ context.Context, rideID uint64) {
    l.mu.Lock()
    defer l.mu.Unlock()
    l.ids = append(l.ids, rideID)
}

func (l *invalidationLog) all() []uint64 {
    l.mu.Lock()
    defer l.mu.Unlock()
    out := make([]uint64, len(l.ids))
    copy(out, l.ids)
    return out
}

func TestTick_AutoFinishDropsCachedReadModel(t *testing.T) {
    now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
    store := newTripStore()
    inv := &invalidationLog{}
    engine := booking.NewEngine(store, store, &recorder{}, inv)
    sched := lifecycle.New(testConfig(), store, engine, func() time.Time { return now })

    overdue := now.Add(-50 * time.Hour)
    store.addRide(model.Ride{
        ID: 1, DriverID: 10, SeatCount: 2,
        Status:    model.RideStatusInProgress,
        StartedAt: &overdue,
    })

    sched.Tick(context.Background())

    require.Equal(t, model.RideStatusFinished, store.ride(1).Status)
    // A cached in_progress snapshot must not outlive the transition.
    assert.Contains(t, inv.all(), uint64(1))
}

func TestTick_SingleFlight(t *testing.T) {
    now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
    sched, store, _ := newScheduler(t, now)

    gate := make(chan struct{})
    store.startGate = gate

    done := make(chan struct{})
    go func() {
        sched.Tick(context.Background())
        close(done)
    }()

    // Wait until the first tick is parked inside the store, then fire
    // an overlapping tick: it must return without touching the store.
    require.Eventually(t, func() bool {
        store.mu.Lock()
        defer store.mu.Unlock()
        return store.listStartCalls == 1
    }, time.Second, 5*time.Millisecond)

    sched.Tick(context.Background())
    store.mu.Lock()
    calls := store.listStartCalls
    store.mu.Unlock()
    assert.Equal(t, 1, calls)

    close(gate)
    <-done
}

func TestStartStop_Idempotent(t *testing.T) {
    now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
    sched, store, _ := newScheduler(t, now)

    sched.Start()
    sched.Start() // no-op

    // Start fires an immediate tick.
    require.Eventually(t, func() bool {
        store.mu.Lock()
        defer store.mu.Unlock()
        return store.listStartCalls >= 1
    }, time.Second, 5*time.Millisecond)

    sched.Stop()
    sched.Stop() // no-op
}

func ptr[T any](v T) *T { return &v }
