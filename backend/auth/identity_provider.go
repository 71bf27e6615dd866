package auth

import (
	"errors"

	"github.com/go-chi/chi/v5"
)

var (
	ErrWorkerNotFoundWithEmail = errors.New("no account found for given email")
	ErrInvalidCredentials      = errors.New("invalid login credentials")
	ErrRoleMismatch            = errors.New("account role does not match requested role")
	ErrTooManyAttempts         = errors.New("too many failed login attempts, try again later")
	ErrGeneratingJwt           = errors.New("error generating jwt")
)

type LoginResult struct {
	HwID        uint
	AccessToken string
}

// IdentityProvider gates access to the entity store. Token minting is
// delegated to the jwt manager; this interface is what the services see.
type IdentityProvider interface {
	AuthMiddleware() chi.Middlewares

	// Login authenticates an email/password pair and requires the stored
	// role to match the submitted one, compared case-insensitively.
	Login(email, password, role string) (LoginResult, error)
}
