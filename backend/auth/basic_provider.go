package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wellnessbridge/backend/schema"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 15 * time.Minute

// BasicIdentityProvider authenticates against the health_workers table with
// bcrypt password hashes and mints HS256 bearer tokens.
type BasicIdentityProvider struct {
	jwtManager *JwtManager
	db         *gorm.DB
	limiter    *AttemptLimiter
}

type BasicProviderArgs struct {
	Secret []byte

	// Optional initial admin account, seeded on startup if no account with
	// this email exists yet. The seed cadre is created alongside it since a
	// worker cannot exist without one.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func NewBasicIdentityProvider(db *gorm.DB, limiter *AttemptLimiter, args BasicProviderArgs) (IdentityProvider, error) {
	if args.AdminEmail != "" {
		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(args.AdminPassword), 10)
		if err != nil {
			return nil, fmt.Errorf("error encrypting admin password: %w", err)
		}

		if err := addInitialAdminToDb(db, args.AdminName, args.AdminEmail, hashedPwd); err != nil {
			return nil, fmt.Errorf("error adding initial admin to db: %w", err)
		}
	}

	return &BasicIdentityProvider{
		jwtManager: NewJwtManager(args.Secret),
		db:         db,
		limiter:    limiter,
	}, nil
}

func (auth *BasicIdentityProvider) AuthMiddleware() chi.Middlewares {
	return chi.Middlewares{auth.jwtManager.Verifier(), auth.jwtManager.Authenticator()}
}

func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func (auth *BasicIdentityProvider) Login(email, password, role string) (LoginResult, error) {
	if auth.limiter.TooManyAttempts(email) {
		return LoginResult{}, ErrTooManyAttempts
	}

	worker, err := schema.GetHealthWorkerByEmail(email, auth.db)
	if err != nil {
		if errors.Is(err, schema.ErrHealthWorkerNotFound) {
			auth.limiter.RecordFailure(email)
			return LoginResult{}, ErrWorkerNotFoundWithEmail
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword(worker.Password, []byte(password)); err != nil {
		auth.limiter.RecordFailure(email)
		return LoginResult{}, ErrInvalidCredentials
	}

	if NormalizeRole(worker.Role) != NormalizeRole(role) {
		auth.limiter.RecordFailure(email)
		return LoginResult{}, ErrRoleMismatch
	}

	token, err := auth.jwtManager.CreateWorkerJwt(worker.HwID, NormalizeRole(worker.Role), tokenLifetime)
	if err != nil {
		return LoginResult{}, ErrGeneratingJwt
	}

	auth.limiter.Clear(email)

	return LoginResult{HwID: worker.HwID, AccessToken: token}, nil
}

func addInitialAdminToDb(db *gorm.DB, name, email string, password []byte) error {
	err := db.Transaction(func(txn *gorm.DB) error {
		var existing schema.HealthWorker
		result := txn.Limit(1).Find(&existing, "email = ?", email)
		if result.Error != nil {
			slog.Error("sql error checking if admin has already been added", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected != 0 {
			return nil
		}

		cadre := schema.Cadre{Name: "Administration", Qualification: "N/A"}
		result = txn.Where("name = ?", cadre.Name).FirstOrCreate(&cadre)
		if result.Error != nil {
			slog.Error("sql error creating admin cadre", "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		admin := schema.HealthWorker{
			Name:      name,
			Gender:    "other",
			Dob:       "1970-01-01",
			Role:      schema.RoleAdmin,
			Telephone: "000-000-0000",
			Email:     email,
			Password:  password,
			Address:   "N/A",
			CadreID:   cadre.CadID,
		}
		result = txn.Create(&admin)
		if result.Error != nil {
			slog.Error("sql error creating initial admin account", "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("error seeding admin account: %w", err)
	}

	return nil
}
