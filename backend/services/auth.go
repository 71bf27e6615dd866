package services

import (
	"errors"
	"net/http"
	"time"

	"wellnessbridge/backend/auth"
	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/validation"
	"wellnessbridge/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"gorm.io/gorm"
)

// loginRateLimit caps login traffic per client ip. The per-email failure
// window inside the identity provider handles targeted guessing; this guards
// the endpoint itself.
const loginRateLimit = 20

type AuthService struct {
	db       *gorm.DB
	identity auth.IdentityProvider
}

func NewAuthService(db *gorm.DB, identity auth.IdentityProvider) *AuthService {
	return &AuthService{db: db, identity: identity}
}

func (s *AuthService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(loginRateLimit, time.Minute))
		r.Post("/login", s.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.identity.AuthMiddleware()...)
		r.Get("/me", s.Me)
	})

	return r
}

func loginRules() validation.RuleSet {
	return validation.RuleSet{
		"email":    validation.Required(validation.String(254)),
		"password": validation.Required(validation.String(72)),
		"role":     validation.Required(validation.Enum(schema.Roles()...)),
	}
}

type loginResponse struct {
	HwID        uint   `json:"hwID"`
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}
	normalizeRoleField(payload)

	fields, errs := validation.Validate(payload, loginRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	result, err := s.identity.Login(
		fields["email"].(string),
		fields["password"].(string),
		fields["role"].(string),
	)
	if err != nil {
		writeFailure(w, loginStatus(err), err.Error())
		return
	}

	writeData(w, http.StatusOK, "Login successful.", loginResponse{
		HwID:        result.HwID,
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
	})
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrWorkerNotFoundWithEmail):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrRoleMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Me returns the account backing the presented token.
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
	hwID, err := auth.WorkerIdFromContext(r)
	if err != nil {
		writeFailure(w, http.StatusUnauthorized, err.Error())
		return
	}

	worker, err := schema.GetHealthWorker(hwID, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrHealthWorkerNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", worker)
}
