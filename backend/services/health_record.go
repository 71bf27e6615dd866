package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/store"
	"wellnessbridge/backend/validation"
	"wellnessbridge/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type HealthRecordService struct {
	db *gorm.DB
}

func NewHealthRecordService(db *gorm.DB) *HealthRecordService {
	return &HealthRecordService{db: db}
}

func (s *HealthRecordService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/{recordID}", s.Get)
	r.Put("/{recordID}", s.Update)
	r.Delete("/{recordID}", s.Delete)
	r.Get("/by-child/{childID}", s.ListByChild)
	r.Post("/by-child/{childID}", s.CreateForChild)
	r.Put("/by-child/{childID}", s.UpdateForChild)
	r.Get("/by-health-worker/{hwID}", s.ListByWorker)
	r.Post("/by-health-worker/{hwID}", s.CreateForWorker)
	r.Put("/by-health-worker/{hwID}", s.UpdateForWorker)

	return r
}

func (s *HealthRecordService) recordRules() validation.RuleSet {
	return validation.RuleSet{
		"childID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("child", existsProbe[schema.Child](s.db, "child_id")),
		),
		"healthWorkerID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("health worker", existsProbe[schema.HealthWorker](s.db, "hw_id")),
		),
		"checkupDate": validation.Required(validation.Date()),
		"height":      validation.Required(validation.Number(10, 250)),
		"weight":      validation.Required(validation.Number(1, 100)),
		"vaccination": validation.Required(validation.String(255)),
		"diagnosis":   validation.Required(validation.String(500)),
		"treatment":   validation.Required(validation.String(500)),
	}
}

func (s *HealthRecordService) List(w http.ResponseWriter, r *http.Request) {
	page := utils.QueryParamInt(r, "page", 1)
	perPage := utils.QueryParamInt(r, "per_page", store.DefaultPerPage)

	result, err := store.Paginate[schema.ChildHealthRecord](s.db, page, perPage, "Child", "HealthWorker")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", result)
}

func (s *HealthRecordService) Get(w http.ResponseWriter, r *http.Request) {
	recordID, err := utils.URLParamID(r, "recordID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := schema.GetHealthRecord(recordID, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrRecordNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", record)
}

func (s *HealthRecordService) ListByChild(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := checkChildExists(s.db, childID); err != nil {
		writeCodedError(w, err)
		return
	}

	records, err := store.FindAllBy[schema.ChildHealthRecord](s.db, "child_id", childID, "HealthWorker")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", records)
}

func (s *HealthRecordService) ListByWorker(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := checkWorkerExists(s.db, hwID); err != nil {
		writeCodedError(w, err)
		return
	}

	records, err := store.FindAllBy[schema.ChildHealthRecord](s.db, "health_worker_id", hwID, "Child")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", records)
}

func (s *HealthRecordService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}
	s.create(w, payload)
}

// CreateForChild is the nested form of Create: the child comes from the url,
// the rest of the record from the body. All entry paths share the duplicate
// check.
func (s *HealthRecordService) CreateForChild(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}
	payload["childID"] = childID

	s.create(w, payload)
}

func (s *HealthRecordService) CreateForWorker(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}
	payload["healthWorkerID"] = hwID

	s.create(w, payload)
}

// UpdateForChild addresses the record by its (child, worker) pair: the child
// comes from the url, healthWorkerID from the body.
func (s *HealthRecordService) UpdateForChild(w http.ResponseWriter, r *http.Request) {
	childID, err := utils.URLParamID(r, "childID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	s.updateByPair(w, r, "child_id", childID, "healthWorkerID")
}

func (s *HealthRecordService) UpdateForWorker(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	s.updateByPair(w, r, "health_worker_id", hwID, "childID")
}

func (s *HealthRecordService) updateByPair(w http.ResponseWriter, r *http.Request, column string, id uint, otherField string) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	otherID := asID(payload[otherField])
	if otherID == 0 {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("missing %v field", otherField))
		return
	}

	// The pair addresses the record, so it cannot be re-pointed on this route.
	delete(payload, "childID")
	delete(payload, "healthWorkerID")

	fields, errs := validation.ValidatePartial(payload, s.recordRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	otherColumn := "health_worker_id"
	if column == "health_worker_id" {
		otherColumn = "child_id"
	}

	var record schema.ChildHealthRecord
	err := s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.First(&record, fmt.Sprintf("%v = ? AND %v = ?", column, otherColumn), id, otherID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return CodedError(schema.ErrRecordNotFound, http.StatusNotFound)
			}
			slog.Error("sql error looking up health record by pair", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		if err := mergeFields(&record, fields); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}

		if err := store.Save(txn, &record); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Health record updated successfully.", record)
}

func (s *HealthRecordService) create(w http.ResponseWriter, payload map[string]interface{}) {
	fields, errs := validation.Validate(payload, s.recordRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	record, err := decodeFields[schema.ChildHealthRecord](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkNoDuplicateHealthRecord(txn, record.ChildID, record.HealthWorkerID); err != nil {
			return err
		}
		if err := store.Create(txn, &record); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Health record created successfully.", record)
}

func (s *HealthRecordService) Update(w http.ResponseWriter, r *http.Request) {
	recordID, err := utils.URLParamID(r, "recordID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	fields, errs := validation.ValidatePartial(payload, s.recordRules())
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	var record schema.ChildHealthRecord
	err = s.db.Transaction(func(txn *gorm.DB) error {
		var err error
		record, err = schema.GetHealthRecord(recordID, txn, false)
		if err != nil {
			if errors.Is(err, schema.ErrRecordNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		oldChild, oldWorker := record.ChildID, record.HealthWorkerID

		if err := mergeFields(&record, fields); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		record.RecordID = recordID

		// Re-pointing the record must not collide with an existing
		// (child, worker) pair.
		if record.ChildID != oldChild || record.HealthWorkerID != oldWorker {
			exists, err := store.ExistsBy[schema.ChildHealthRecord](txn,
				"child_id = ? AND health_worker_id = ? AND record_id <> ?",
				record.ChildID, record.HealthWorkerID, recordID)
			if err != nil {
				return CodedError(err, http.StatusInternalServerError)
			}
			if exists {
				return CodedError(errors.New("health record already exists for this child and health worker"), http.StatusUnprocessableEntity)
			}
		}

		if err := store.Save(txn, &record); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Health record updated successfully.", record)
}

func (s *HealthRecordService) Delete(w http.ResponseWriter, r *http.Request) {
	recordID, err := utils.URLParamID(r, "recordID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkRecordExists(txn, recordID); err != nil {
			return err
		}
		if err := store.Delete(txn, &schema.ChildHealthRecord{RecordID: recordID}); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Health record deleted successfully.", nil)
}
