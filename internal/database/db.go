// Package database opens the MySQL pool shared by all repositories.
package database

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    _ "github.com/go-sql-driver/mysql"
)

// Pool sizing: seat actions are short conditional updates, so a
// modest pool goes a long way; the lifetime cap keeps connections
// from outliving load-balancer idle timeouts.
const (
    maxOpenConns    = 25
    maxIdleConns    = 25
    connMaxLifetime = 30 * time.Minute
    pingTimeout     = 5 * time.Second
)

// Open connects to MySQL and verifies the connection with a bounded
// ping.  parseTime maps DATETIME columns onto time.Time and loc=UTC
// keeps every timestamp in the zone the scheduler computes its
// windows in.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        credentials(user, pass), host, port, name)

    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, err
    }
    db.SetMaxOpenConns(maxOpenConns)
    db.SetMaxIdleConns(maxIdleConns)
    db.SetConnMaxLifetime(connMaxLifetime)

    ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        _ = db.Close()
        return nil, err
    }
    return db, nil
}

// credentials renders the DSN auth part, omitting the colon when no
// password is set.
func credentials(user, pass string) string {
    if pass == "" {
        return user
    }
    return fmt.Sprintf("%s:%s", user, pass)
}
