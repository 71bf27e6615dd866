package tests

import (
	"path/filepath"
	"testing"

	"wellnessbridge/backend/auth"
	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/services"
	"wellnessbridge/backend/storage"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	backend *services.WellnessBridge
	api     chi.Router
	db      *gorm.DB
	files   storage.Storage
}

const (
	adminName     = "admin123"
	adminEmail    = "admin123@mail.com"
	adminPassword = "admin_password123"
)

func setupTestEnv(t *testing.T) *testEnv {
	// sqlite ships with foreign keys off; turn them on so the constraint and
	// cascade behavior matches postgres.
	db, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.AutoMigrate(schema.Tables()...); err != nil {
		t.Fatal(err)
	}

	files := storage.NewLocalDisk(filepath.Join(t.TempDir(), "storage"))

	secret := []byte("290zcv02ai249")

	identity, err := auth.NewBasicIdentityProvider(
		db,
		auth.NewAttemptLimiter(auth.DefaultMaxAttempts, auth.DefaultAttemptWindow),
		auth.BasicProviderArgs{
			Secret:        secret,
			AdminName:     adminName,
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	backend := services.New(db, identity, files, services.Options{
		RejectDuplicateChildNames: true,
	})

	api := chi.NewRouter()
	api.Mount("/api/v1", backend.Routes())

	return &testEnv{backend: backend, api: api, db: db, files: files}
}

func (env *testEnv) client() *client {
	return &client{api: env.api}
}

// adminClient returns a client logged in as the seeded admin account.
func (env *testEnv) adminClient(t *testing.T) *client {
	c := env.client()
	if err := c.login(adminEmail, adminPassword, schema.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	return c
}
