package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Required values are
// enforced by must(); groups with sensible defaults use the env*
// helpers instead.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    Lifecycle LifecycleConfig // ride auto-start / auto-finish knobs
}

// LifecycleConfig controls the ride lifecycle scheduler.  All values
// default to something safe for a fresh deployment, so none of them
// is required.
type LifecycleConfig struct {
    AutoStartGraceMinutes     int // minutes past departure before auto-start kicks in
    AutoStartMaxAgeHours      int // departures older than this are abandoned, never auto-started
    AutoStartIntervalSeconds  int // desired auto-start poll cadence
    AutoFinishIntervalSeconds int // desired auto-finish poll cadence
    AutoFinishMaxAgeHours     int // hours after start before a ride is auto-finished
}

// TickInterval derives the effective scheduler interval: the smaller
// of the two desired cadences, floored at five seconds to bound
// polling cost.
func (lc LifecycleConfig) TickInterval() time.Duration {
    secs := lc.AutoStartIntervalSeconds
    if lc.AutoFinishIntervalSeconds < secs {
        secs = lc.AutoFinishIntervalSeconds
    }
    if secs < 5 {
        secs = 5
    }
    return time.Duration(secs) * time.Second
}

// Load reads configuration values from environment variables and
// returns a Config.  Missing required variables cause the program to
// exit with a fatal log message.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        Lifecycle:      LoadLifecycleConfig(),
    }
}

// LoadLifecycleConfig reads the scheduler knobs with their documented
// defaults.  It is separate from Load so tests and tools can build a
// scheduler without the full (fatal-on-missing) application config.
func LoadLifecycleConfig() LifecycleConfig {
    return LifecycleConfig{
        AutoStartGraceMinutes:     envInt("AUTO_START_GRACE_MINUTES", 15),
        AutoStartMaxAgeHours:      envInt("AUTO_START_MAX_AGE_HOURS", 24),
        AutoStartIntervalSeconds:  envInt("AUTO_START_INTERVAL_SECONDS", 60),
        AutoFinishIntervalSeconds: envInt("AUTO_FINISH_INTERVAL_SECONDS", 60),
        AutoFinishMaxAgeHours:     envInt("AUTO_FINISH_MAX_AGE_HOURS", 48),
    }
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
