package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with the configured bcrypt
// cost.  A cost below bcrypt's minimum (for example a zero from an
// unset config value) is replaced with the library default so weak
// hashes cannot be produced silently.
func HashPassword(plain string, cost int) (string, error) {
    if cost < bcrypt.MinCost {
        cost = bcrypt.DefaultCost
    }
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt
// hash.  The comparison is constant-time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
