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

type HealthRestrictionService struct {
	db *gorm.DB
}

func NewHealthRestrictionService(db *gorm.DB) *HealthRestrictionService {
	return &HealthRestrictionService{db: db}
}

func (s *HealthRestrictionService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/{hrID}", s.Get)
	r.Put("/{hrID}", s.Update)
	r.Delete("/{hrID}", s.Delete)
	r.Get("/by-record/{recordID}", s.ListByRecord)

	return r
}

func (s *HealthRestrictionService) restrictionRules() validation.RuleSet {
	return validation.RuleSet{
		"recordID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("health record", existsProbe[schema.ChildHealthRecord](s.db, "record_id")),
		),
		"description": validation.Required(validation.String(500)),
		"severity":    validation.Required(validation.String(255)),
	}
}

func (s *HealthRestrictionService) List(w http.ResponseWriter, r *http.Request) {
	page := utils.QueryParamInt(r, "page", 1)
	perPage := utils.QueryParamInt(r, "per_page", store.DefaultPerPage)

	result, err := store.Paginate[schema.HealthRestriction](s.db, page, perPage)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Total == 0 {
		writeFailure(w, http.StatusNotFound, "No health restrictions found.")
		return
	}
	writeData(w, http.StatusOK, "", result)
}

func (s *HealthRestrictionService) Get(w http.ResponseWriter, r *http.Request) {
	hrID, err := utils.URLParamID(r, "hrID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	restriction, err := store.FindByID[schema.HealthRestriction](s.db, "hr_id", hrID, "Record")
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, schema.ErrRestrictionNotFound.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", restriction)
}

func (s *HealthRestrictionService) ListByRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := utils.URLParamID(r, "recordID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := checkRecordExists(s.db, recordID); err != nil {
		writeCodedError(w, err)
		return
	}

	restrictions, err := store.FindAllBy[schema.HealthRestriction](s.db, "record_id", recordID)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", restrictions)
}

func (s *HealthRestrictionService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.Validate(payload, s.restrictionRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	restriction, err := decodeFields[schema.HealthRestriction](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := store.Create(s.db, &restriction); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, "Health restriction created successfully.", restriction)
}

func (s *HealthRestrictionService) Update(w http.ResponseWriter, r *http.Request) {
	hrID, err := utils.URLParamID(r, "hrID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.ValidatePartial(payload, s.restrictionRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	restriction, err := store.FindByID[schema.HealthRestriction](s.db, "hr_id", hrID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, schema.ErrRestrictionNotFound.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := mergeFields(&restriction, fields); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	restriction.HrID = hrID

	if err := store.Save(s.db, &restriction); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Health restriction updated successfully.", restriction)
}

func (s *HealthRestrictionService) Delete(w http.ResponseWriter, r *http.Request) {
	hrID, err := utils.URLParamID(r, "hrID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := store.FindByID[schema.HealthRestriction](txn, "hr_id", hrID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return CodedError(schema.ErrRestrictionNotFound, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		if err := store.Delete(txn, &schema.HealthRestriction{HrID: hrID}); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Health restriction deleted successfully.", nil)
}
