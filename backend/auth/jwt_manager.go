package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

type JwtManager struct {
	auth *jwtauth.JWTAuth
}

func NewJwtManager(secret []byte) *JwtManager {
	return &JwtManager{auth: jwtauth.New("HS256", secret, nil)}
}

func (m *JwtManager) Verifier() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verifier(m.auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}))
	}
}

func (m *JwtManager) Authenticator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Authenticator(m.auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}))
	}
}

const (
	workerIdKey = "hw_id"
	roleKey     = "role"
)

func (m *JwtManager) CreateWorkerJwt(hwID uint, role string, exp time.Duration) (string, error) {
	claims := map[string]interface{}{
		workerIdKey: float64(hwID),
		roleKey:     role,
		"exp":       time.Now().Add(exp),
	}
	_, token, err := m.auth.Encode(claims)
	if err != nil {
		slog.Error("error generating jwt", "error", err)
		return "", fmt.Errorf("error generating access token: %w", err)
	}
	return token, nil
}

// WorkerIdFromContext extracts the authenticated worker id from verified
// token claims.
func WorkerIdFromContext(r *http.Request) (uint, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, fmt.Errorf("error retrieving auth claims: %w", err)
	}

	valueUncasted, ok := claims[workerIdKey]
	if !ok {
		return 0, fmt.Errorf("invalid token: unable to locate key %v in claims", workerIdKey)
	}

	value, ok := valueUncasted.(float64)
	if !ok || value < 1 {
		return 0, fmt.Errorf("invalid token: value for key %v has invalid type", workerIdKey)
	}

	return uint(value), nil
}
