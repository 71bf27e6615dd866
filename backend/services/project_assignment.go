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

type ProjectAssignmentService struct {
	db *gorm.DB
}

func NewProjectAssignmentService(db *gorm.DB) *ProjectAssignmentService {
	return &ProjectAssignmentService{db: db}
}

func (s *ProjectAssignmentService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/{asgID}", s.Get)
	r.Put("/{asgID}", s.Update)
	r.Delete("/{asgID}", s.Delete)
	r.Get("/by-health-worker/{hwID}", s.ListByWorker)
	r.Get("/by-project/{prjID}", s.ListByProject)

	return r
}

func (s *ProjectAssignmentService) assignmentRules() validation.RuleSet {
	return validation.RuleSet{
		"hwID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("health worker", existsProbe[schema.HealthWorker](s.db, "hw_id")),
		),
		"prjID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("project", existsProbe[schema.Project](s.db, "prj_id")),
		),
		"assignedDate": validation.Required(validation.Date()),
		"endDate":      validation.Optional(validation.Date(), validation.AfterOrEqual("assignedDate")),
		"role":         validation.Required(validation.String(255)),
	}
}

func (s *ProjectAssignmentService) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := store.FindAll[schema.ProjectAssignment](s.db, "HealthWorker", "Project")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", assignments)
}

func (s *ProjectAssignmentService) Get(w http.ResponseWriter, r *http.Request) {
	asgID, err := utils.URLParamID(r, "asgID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := store.FindByID[schema.ProjectAssignment](s.db, "asg_id", asgID, "HealthWorker", "Project")
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, schema.ErrAssignmentNotFound.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", assignment)
}

func (s *ProjectAssignmentService) ListByWorker(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := checkWorkerExists(s.db, hwID); err != nil {
		writeCodedError(w, err)
		return
	}

	assignments, err := store.FindAllBy[schema.ProjectAssignment](s.db, "hw_id", hwID, "Project")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", assignments)
}

func (s *ProjectAssignmentService) ListByProject(w http.ResponseWriter, r *http.Request) {
	prjID, err := utils.URLParamID(r, "prjID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := checkProjectExists(s.db, prjID); err != nil {
		writeCodedError(w, err)
		return
	}

	assignments, err := store.FindAllBy[schema.ProjectAssignment](s.db, "prj_id", prjID, "HealthWorker")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", assignments)
}

func (s *ProjectAssignmentService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.Validate(payload, s.assignmentRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	assignment, err := decodeFields[schema.ProjectAssignment](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := store.Create(s.db, &assignment); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, "Project assignment created successfully.", assignment)
}

func (s *ProjectAssignmentService) Update(w http.ResponseWriter, r *http.Request) {
	asgID, err := utils.URLParamID(r, "asgID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	assignment, err := store.FindByID[schema.ProjectAssignment](s.db, "asg_id", asgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, schema.ErrAssignmentNotFound.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if _, present := payload["assignedDate"]; !present {
		payload["assignedDate"] = assignment.AssignedDate
	}

	fields, errs := validation.ValidatePartial(payload, s.assignmentRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	if err := mergeFields(&assignment, fields); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	assignment.AsgID = asgID

	if err := store.Save(s.db, &assignment); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Project assignment updated successfully.", assignment)
}

func (s *ProjectAssignmentService) Delete(w http.ResponseWriter, r *http.Request) {
	asgID, err := utils.URLParamID(r, "asgID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := store.FindByID[schema.ProjectAssignment](txn, "asg_id", asgID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return CodedError(schema.ErrAssignmentNotFound, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		if err := store.Delete(txn, &schema.ProjectAssignment{AsgID: asgID}); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Project assignment deleted successfully.", nil)
}
