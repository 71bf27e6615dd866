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

type BirthPropertyService struct {
	db *gorm.DB
}

func NewBirthPropertyService(db *gorm.DB) *BirthPropertyService {
	return &BirthPropertyService{db: db}
}

func (s *BirthPropertyService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/{bID}", s.Get)
	r.Put("/{bID}", s.Update)
	r.Delete("/{bID}", s.Delete)
	r.Get("/by-child/{childID}", s.GetByChild)
	r.Put("/by-child/{childID}", s.UpdateByChild)
	r.Delete("/by-child/{childID}", s.DeleteByChild)

	return r
}

// byChild resolves the birth record through the 1:1 child relation, for the
// routes addressed by child rather than by record id.
func (s *BirthPropertyService) byChild(w http.ResponseWriter, r *http.Request) (schema.BirthProperty, bool) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return schema.BirthProperty{}, false
	}

	property, err := store.FindOneBy[schema.BirthProperty](s.db, "child_id", childID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, schema.ErrBirthPropertyNotFound.Error())
			return schema.BirthProperty{}, false
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return schema.BirthProperty{}, false
	}
	return property, true
}

func (s *BirthPropertyService) birthPropertyRules() validation.RuleSet {
	return validation.RuleSet{
		"childID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("child", existsProbe[schema.Child](s.db, "child_id")),
		),
		"motherAge":        validation.Required(validation.Integer(12, 100)),
		"fatherAge":        validation.Required(validation.Integer(12, 100)),
		"numberOfChildren": validation.Required(validation.Integer(1, 30)),
		"birthType":        validation.Required(validation.String(255)),
		"birthWeight":      validation.Required(validation.Number(0.5, 10)),
		"childCondition":   validation.Required(validation.String(255)),
	}
}

func (s *BirthPropertyService) List(w http.ResponseWriter, r *http.Request) {
	properties, err := store.FindAll[schema.BirthProperty](s.db)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", properties)
}

func (s *BirthPropertyService) Get(w http.ResponseWriter, r *http.Request) {
	bID, err := utils.URLParamID(r, "bID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	property, err := store.FindByID[schema.BirthProperty](s.db, "b_id", bID, "Child")
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, schema.ErrBirthPropertyNotFound.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", property)
}

func (s *BirthPropertyService) GetByChild(w http.ResponseWriter, r *http.Request) {
	property, ok := s.byChild(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, "", property)
}

func (s *BirthPropertyService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.Validate(payload, s.birthPropertyRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	property, err := decodeFields[schema.BirthProperty](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		// One birth record per child; the unique index on child_id backs
		// this check.
		exists, err := store.ExistsBy[schema.BirthProperty](txn, "child_id = ?", property.ChildID)
		if err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		if exists {
			return CodedError(errors.New("birth property already exists for this child"), http.StatusUnprocessableEntity)
		}

		if err := store.Create(txn, &property); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Birth property created successfully.", property)
}

func (s *BirthPropertyService) Update(w http.ResponseWriter, r *http.Request) {
	bID, err := utils.URLParamID(r, "bID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	s.update(w, r, bID)
}

func (s *BirthPropertyService) UpdateByChild(w http.ResponseWriter, r *http.Request) {
	property, ok := s.byChild(w, r)
	if !ok {
		return
	}
	s.update(w, r, property.BID)
}

func (s *BirthPropertyService) update(w http.ResponseWriter, r *http.Request, bID uint) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.ValidatePartial(payload, s.birthPropertyRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	var property schema.BirthProperty
	err := s.db.Transaction(func(txn *gorm.DB) error {
		var err error
		property, err = store.FindByID[schema.BirthProperty](txn, "b_id", bID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return CodedError(schema.ErrBirthPropertyNotFound, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if err := mergeFields(&property, fields); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		property.BID = bID

		// Moving the record to another child must not break the 1:1.
		exists, err := store.ExistsBy[schema.BirthProperty](txn, "child_id = ? AND b_id <> ?", property.ChildID, bID)
		if err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		if exists {
			return CodedError(errors.New("birth property already exists for this child"), http.StatusUnprocessableEntity)
		}

		if err := store.Save(txn, &property); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Birth property updated successfully.", property)
}

func (s *BirthPropertyService) Delete(w http.ResponseWriter, r *http.Request) {
	bID, err := utils.URLParamID(r, "bID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	s.remove(w, bID)
}

func (s *BirthPropertyService) DeleteByChild(w http.ResponseWriter, r *http.Request) {
	property, ok := s.byChild(w, r)
	if !ok {
		return
	}
	s.remove(w, property.BID)
}

func (s *BirthPropertyService) remove(w http.ResponseWriter, bID uint) {
	err := s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := store.FindByID[schema.BirthProperty](txn, "b_id", bID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return CodedError(schema.ErrBirthPropertyNotFound, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		if err := store.Delete(txn, &schema.BirthProperty{BID: bID}); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Birth property deleted successfully.", nil)
}
