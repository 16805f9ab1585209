package auth

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the admin password doesn't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminDisabled is returned when no admin password hash is configured.
	ErrAdminDisabled = errors.New("admin endpoints disabled")
)

// PasswordHeader carries the admin password for clients that don't speak basic auth.
const PasswordHeader = "X-Admin-Password"

// AdminGuard protects destructive endpoints with a bcrypt password hash.
type AdminGuard struct {
	PasswordHash string
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", errors.New("password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Check compares password against the configured hash.
func (g AdminGuard) Check(password string) error {
	if strings.TrimSpace(g.PasswordHash) == "" {
		return ErrAdminDisabled
	}
	if password == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Require rejects requests without the admin password. The password is read
// from basic auth (any username) or the X-Admin-Password header.
func (g AdminGuard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := g.Check(passwordFrom(r))
		switch {
		case errors.Is(err, ErrAdminDisabled):
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		case err != nil:
			w.Header().Set("WWW-Authenticate", `Basic realm="salon-admin"`)
			http.Error(w, "admin password required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func passwordFrom(r *http.Request) string {
	if _, password, ok := r.BasicAuth(); ok {
		return password
	}
	return r.Header.Get(PasswordHeader)
}
