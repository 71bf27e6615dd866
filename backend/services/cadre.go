package services

import (
	"errors"
	"net/http"

	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/store"
	"wellnessbridge/backend/validation"
	"wellnessbridge/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// pageSize is the fixed page size of the /page/{page} routes, kept for
// clients built against the paged card layout.
const pageSize = 5

type CadreService struct {
	db *gorm.DB
}

func NewCadreService(db *gorm.DB) *CadreService {
	return &CadreService{db: db}
}

func (s *CadreService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Get("/page/{page}", s.Page)
	r.Post("/", s.Create)
	r.Get("/{cadID}", s.Get)
	r.Put("/{cadID}", s.Update)
	r.Delete("/{cadID}", s.Delete)

	return r
}

func cadreRules() validation.RuleSet {
	return validation.RuleSet{
		"name":          validation.Required(validation.String(255)),
		"description":   validation.Optional(validation.String(1000)),
		"qualification": validation.Required(validation.String(255)),
	}
}

func (s *CadreService) List(w http.ResponseWriter, r *http.Request) {
	cadres, err := store.FindAll[schema.Cadre](s.db)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(cadres) == 0 {
		writeFailure(w, http.StatusNotFound, "No cadres found.")
		return
	}
	writeData(w, http.StatusOK, "", cadres)
}

func (s *CadreService) Page(w http.ResponseWriter, r *http.Request) {
	page, err := utils.URLParamID(r, "page")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := store.Paginate[schema.Cadre](s.db, int(page), pageSize)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", result)
}

func (s *CadreService) Get(w http.ResponseWriter, r *http.Request) {
	cadID, err := utils.URLParamID(r, "cadID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	cadre, err := schema.GetCadre(cadID, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrCadreNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", cadre)
}

func (s *CadreService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.Validate(payload, cadreRules())
	if errs != nil {
		// Cadre creation predates the 422 convention; clients of this
		// route expect a plain 400.
		utils.WriteJsonResponse(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "Validation error.",
			Errors:  errs,
		})
		return
	}

	cadre, err := decodeFields[schema.Cadre](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := store.Create(s.db, &cadre); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, "Cadre created successfully.", cadre)
}

func (s *CadreService) Update(w http.ResponseWriter, r *http.Request) {
	cadID, err := utils.URLParamID(r, "cadID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.ValidatePartial(payload, cadreRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	cadre, err := schema.GetCadre(cadID, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrCadreNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := mergeFields(&cadre, fields); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	cadre.CadID = cadID

	if err := store.Save(s.db, &cadre); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Cadre updated successfully.", cadre)
}

func (s *CadreService) Delete(w http.ResponseWriter, r *http.Request) {
	cadID, err := utils.URLParamID(r, "cadID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkCadreExists(txn, cadID); err != nil {
			return err
		}
		if err := checkCadreDeletable(txn, cadID); err != nil {
			return err
		}
		if err := store.Delete(txn, &schema.Cadre{CadID: cadID}); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Cadre deleted successfully.", nil)
}
