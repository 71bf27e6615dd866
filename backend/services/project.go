package services

import (
	"errors"
	"math"
	"net/http"

	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/store"
	"wellnessbridge/backend/validation"
	"wellnessbridge/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/{prjID}", s.Get)
	r.Put("/{prjID}", s.Update)
	r.Delete("/{prjID}", s.Delete)
	r.Get("/by-cadre/{cadID}", s.ListByCadre)

	return r
}

func (s *ProjectService) projectRules() validation.RuleSet {
	return validation.RuleSet{
		"cadID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("cadre", existsProbe[schema.Cadre](s.db, "cad_id")),
		),
		"name":        validation.Required(validation.String(255)),
		"description": validation.Required(validation.String(1000)),
		"startDate":   validation.Required(validation.Date()),
		"endDate":     validation.Optional(validation.Date(), validation.AfterOrEqual("startDate")),
		"status":      validation.Required(validation.String(100)),
	}
}

func (s *ProjectService) List(w http.ResponseWriter, r *http.Request) {
	projects, err := store.FindAll[schema.Project](s.db, "Cadre")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", projects)
}

func (s *ProjectService) Get(w http.ResponseWriter, r *http.Request) {
	prjID, err := utils.URLParamID(r, "prjID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := schema.GetProject(prjID, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrProjectNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", project)
}

func (s *ProjectService) ListByCadre(w http.ResponseWriter, r *http.Request) {
	cadID, err := utils.URLParamID(r, "cadID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := checkCadreExists(s.db, cadID); err != nil {
		writeCodedError(w, err)
		return
	}

	projects, err := store.FindAllBy[schema.Project](s.db, "cad_id", cadID)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", projects)
}

func (s *ProjectService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.Validate(payload, s.projectRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	project, err := decodeFields[schema.Project](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := store.Create(s.db, &project); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, "Project created successfully.", project)
}

func (s *ProjectService) Update(w http.ResponseWriter, r *http.Request) {
	prjID, err := utils.URLParamID(r, "prjID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	project, err := schema.GetProject(prjID, s.db, false)
	if err != nil {
		if errors.Is(err, schema.ErrProjectNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The date ordering rule needs the stored start date when the payload
	// only moves the end date.
	if _, present := payload["startDate"]; !present {
		payload["startDate"] = project.StartDate
	}

	fields, errs := validation.ValidatePartial(payload, s.projectRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	if err := mergeFields(&project, fields); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	project.PrjID = prjID

	if err := store.Save(s.db, &project); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Project updated successfully.", project)
}

func (s *ProjectService) Delete(w http.ResponseWriter, r *http.Request) {
	prjID, err := utils.URLParamID(r, "prjID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkProjectExists(txn, prjID); err != nil {
			return err
		}
		if err := store.Delete(txn, &schema.Project{PrjID: prjID}); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Project deleted successfully.", nil)
}
