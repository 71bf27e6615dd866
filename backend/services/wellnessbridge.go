// Package services implements the http api. Each entity group is its own
// service with a chi sub-router; WellnessBridge composes them into the
// versioned api surface.
package services

import (
	"net/http"

	"wellnessbridge/backend/auth"
	"wellnessbridge/backend/storage"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type Options struct {
	// Refuse registering a child whose name matches an existing record.
	RejectDuplicateChildNames bool
}

type WellnessBridge struct {
	db *gorm.DB

	Auth         *AuthService
	Cadres       *CadreService
	Workers      *HealthWorkerService
	Children     *ChildService
	Births       *BirthPropertyService
	Records      *HealthRecordService
	Restrictions *HealthRestrictionService
	Projects     *ProjectService
	Assignments  *ProjectAssignmentService
}

func New(db *gorm.DB, identity auth.IdentityProvider, files storage.Storage, opts Options) *WellnessBridge {
	return &WellnessBridge{
		db:           db,
		Auth:         NewAuthService(db, identity),
		Cadres:       NewCadreService(db),
		Workers:      NewHealthWorkerService(db, files),
		Children:     NewChildService(db, files, opts.RejectDuplicateChildNames),
		Births:       NewBirthPropertyService(db),
		Records:      NewHealthRecordService(db),
		Restrictions: NewHealthRestrictionService(db),
		Projects:     NewProjectService(db),
		Assignments:  NewProjectAssignmentService(db),
	}
}

func (wb *WellnessBridge) Routes() chi.Router {
	r := chi.NewRouter()

	r.Mount("/", wb.Auth.Routes())
	r.Mount("/cadres", wb.Cadres.Routes())
	r.Mount("/healthworkers", wb.Workers.Routes())
	r.Mount("/children", wb.Children.Routes())
	r.Mount("/birth-properties", wb.Births.Routes())
	r.Mount("/child-health-records", wb.Records.Routes())
	r.Mount("/health-restrictions", wb.Restrictions.Routes())
	r.Mount("/projects", wb.Projects.Routes())
	r.Mount("/project-assignments", wb.Assignments.Routes())

	r.Get("/health", wb.Health)

	return r
}

// Health reports whether the api can reach its database.
func (wb *WellnessBridge) Health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := wb.db.DB()
	if err != nil {
		writeFailure(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if err := sqlDB.Ping(); err != nil {
		writeFailure(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeData(w, http.StatusOK, "ok", nil)
}
