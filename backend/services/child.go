package services

import (
	"errors"
	"net/http"
	"strings"

	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/storage"
	"wellnessbridge/backend/store"
	"wellnessbridge/backend/validation"
	"wellnessbridge/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type ChildService struct {
	db    *gorm.DB
	files storage.Storage

	// When set, registering a child whose name matches an existing record
	// is refused and the existing record is returned, so intake staff can
	// decide whether it is the same child. Off by default since names are
	// not unique in the general population.
	rejectDuplicateNames bool
}

func NewChildService(db *gorm.DB, files storage.Storage, rejectDuplicateNames bool) *ChildService {
	return &ChildService{db: db, files: files, rejectDuplicateNames: rejectDuplicateNames}
}

func (s *ChildService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/{childID}", s.Get)
	r.Put("/{childID}", s.Update)
	r.Delete("/{childID}", s.Delete)
	r.Post("/{childID}/image", s.UploadImage)
	r.Get("/{childID}/image", s.GetImage)

	return r
}

func childRules() validation.RuleSet {
	return validation.RuleSet{
		"name":          validation.Required(validation.String(255)),
		"gender":        validation.Required(validation.Enum("male", "female", "other")),
		"dob":           validation.Required(validation.Date()),
		"address":       validation.Required(validation.String(500)),
		"parentName":    validation.Required(validation.String(255)),
		"parentContact": validation.Required(validation.String(50)),
	}
}

func childSearchColumns() []string {
	return []string{"name", "gender", "address", "parent_name", "parent_contact"}
}

// List returns a page of children, or a filtered list when ?search= is set.
func (s *ChildService) List(w http.ResponseWriter, r *http.Request) {
	if term := r.URL.Query().Get("search"); term != "" {
		children, err := store.Search[schema.Child](s.db, term, childSearchColumns(), "BirthProperty", "HealthRecords")
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeData(w, http.StatusOK, "", children)
		return
	}

	page := utils.QueryParamInt(r, "page", 1)
	perPage := utils.QueryParamInt(r, "per_page", store.DefaultPerPage)

	result, err := store.Paginate[schema.Child](s.db, page, perPage, "BirthProperty", "HealthRecords")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", result)
}

func (s *ChildService) Get(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	child, err := schema.GetChild(childID, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrChildNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", child)
}

func (s *ChildService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.Validate(payload, childRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	if s.rejectDuplicateNames {
		name := fields["name"].(string)
		existing, err := store.FindOneBy[schema.Child](s.db, "LOWER(name)", strings.ToLower(name))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err == nil {
			writeFailureData(w, http.StatusOK, "A child with this name already exists.", existing)
			return
		}
	}

	child, err := decodeFields[schema.Child](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := store.Create(s.db, &child); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, "Child registered successfully.", child)
}

func (s *ChildService) Update(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.ValidatePartial(payload, childRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	child, err := schema.GetChild(childID, s.db, false)
	if err != nil {
		if errors.Is(err, schema.ErrChildNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := mergeFields(&child, fields); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	child.ChildID = childID

	if err := store.Save(s.db, &child); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Child updated successfully.", child)
}

func (s *ChildService) Delete(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var image *string
	err = s.db.Transaction(func(txn *gorm.DB) error {
		child, err := schema.GetChild(childID, txn, false)
		if err != nil {
			if errors.Is(err, schema.ErrChildNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		image = child.Image

		if err := store.Delete(txn, &schema.Child{ChildID: childID}); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}

	if image != nil {
		if err := s.files.Delete(*image); err != nil {
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeData(w, http.StatusOK, "Child deleted successfully.", nil)
}

func (s *ChildService) UploadImage(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	child, err := schema.GetChild(childID, s.db, false)
	if err != nil {
		if errors.Is(err, schema.ErrChildNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	path, err := saveUploadedImage(s.files, r, childImageDir, child.Image)
	if err != nil {
		writeCodedError(w, err)
		return
	}

	child.Image = &path
	if err := store.Save(s.db, &child); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Image uploaded successfully.", child)
}

func (s *ChildService) GetImage(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	child, err := schema.GetChild(childID, s.db, false)
	if err != nil {
		if errors.Is(err, schema.ErrChildNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	serveImage(w, s.files, child.Image)
}
