package handler // HTTP handlers for the carpooling API

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT claims pass through encoding/json, so the value most
// often arrives as float64.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getFullName returns the display name stored by the JWT middleware,
// or empty when the claim is missing.
func getFullName(c echo.Context) string {
    if v, ok := c.Get("full_name").(string); ok {
        return v
    }
    return ""
}
