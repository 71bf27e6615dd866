package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/store"
	"wellnessbridge/backend/validation"
	"wellnessbridge/utils"

	"gorm.io/gorm"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	utils.WriteJsonResponse(w, status, Response{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	utils.WriteJsonResponse(w, status, Response{Success: false, Message: message})
}

// writeFailureData reports a rejected request that still carries data, e.g.
// the existing record returned by the child duplicate-name policy.
func writeFailureData(w http.ResponseWriter, status int, message string, data interface{}) {
	utils.WriteJsonResponse(w, status, Response{Success: false, Message: message, Data: data})
}

func writeFieldErrors(w http.ResponseWriter, errs validation.Errors) {
	utils.WriteJsonResponse(w, http.StatusUnprocessableEntity, Response{
		Success: false,
		Message: "Validation error.",
		Errors:  errs,
	})
}

func writeCodedError(w http.ResponseWriter, err error) {
	writeFailure(w, GetResponseCode(err), err.Error())
}

// decodeFields builds an entity from coerced payload fields. Field names in
// the payload match the entity's json tags, so a marshal round-trip is the
// mapping.
func decodeFields[T any](fields map[string]interface{}) (T, error) {
	var entity T
	raw, err := json.Marshal(fields)
	if err != nil {
		return entity, fmt.Errorf("error encoding fields: %w", err)
	}
	if err := json.Unmarshal(raw, &entity); err != nil {
		return entity, fmt.Errorf("error decoding fields: %w", err)
	}
	return entity, nil
}

// mergeFields applies partial-update semantics: only fields present in the
// payload overwrite values on the entity, everything else is retained.
func mergeFields[T any](entity *T, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("error encoding fields: %w", err)
	}
	if err := json.Unmarshal(raw, entity); err != nil {
		return fmt.Errorf("error decoding fields: %w", err)
	}
	return nil
}

// asID normalizes a coerced numeric payload value to an id.
func asID(value interface{}) uint {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return uint(v)
		}
	case float64:
		if v > 0 {
			return uint(v)
		}
	case uint:
		return v
	}
	return 0
}

// existsProbe builds a validation rule probe that checks a row of T exists
// with the given column value.
func existsProbe[T any](db *gorm.DB, column string) validation.ExistsFunc {
	return func(value interface{}) (bool, error) {
		id := asID(value)
		if id == 0 {
			return false, nil
		}
		return store.ExistsBy[T](db, fmt.Sprintf("%v = ?", column), id)
	}
}

// uniqueProbe builds a probe that reports a conflicting row of T holding the
// value in the given column. A non-zero excludeID skips the row being
// updated.
func uniqueProbe[T any](db *gorm.DB, column, key string, excludeID uint) validation.UniqueFunc {
	return func(value interface{}) (bool, error) {
		if excludeID != 0 {
			return store.ExistsBy[T](db, fmt.Sprintf("%v = ? AND %v <> ?", column, key), value, excludeID)
		}
		return store.ExistsBy[T](db, fmt.Sprintf("%v = ?", column), value)
	}
}

// Existence checks shared by the orchestrators. Each returns a coded error
// so the handler can report the right status without inspecting the cause.

func checkCadreExists(txn *gorm.DB, cadID uint) error {
	if _, err := schema.GetCadre(cadID, txn); err != nil {
		if errors.Is(err, schema.ErrCadreNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

func checkWorkerExists(txn *gorm.DB, hwID uint) error {
	if _, err := schema.GetHealthWorker(hwID, txn, false); err != nil {
		if errors.Is(err, schema.ErrHealthWorkerNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

func checkChildExists(txn *gorm.DB, childID uint) error {
	if _, err := schema.GetChild(childID, txn, false); err != nil {
		if errors.Is(err, schema.ErrChildNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

func checkRecordExists(txn *gorm.DB, recordID uint) error {
	if _, err := schema.GetHealthRecord(recordID, txn, false); err != nil {
		if errors.Is(err, schema.ErrRecordNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

func checkProjectExists(txn *gorm.DB, prjID uint) error {
	if _, err := schema.GetProject(prjID, txn, false); err != nil {
		if errors.Is(err, schema.ErrProjectNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

// checkNoDuplicateHealthRecord rejects a second checkup for the same
// (child, health worker) pair. Runs before the insert; the composite unique
// index covers the race between check and write.
func checkNoDuplicateHealthRecord(txn *gorm.DB, childID, hwID uint) error {
	exists, err := store.ExistsBy[schema.ChildHealthRecord](txn, "child_id = ? AND health_worker_id = ?", childID, hwID)
	if err != nil {
		return CodedError(err, http.StatusInternalServerError)
	}
	if exists {
		return CodedError(errors.New("health record already exists for this child and health worker"), http.StatusUnprocessableEntity)
	}
	return nil
}

// checkCadreDeletable blocks deleting a cadre that still owns workers.
func checkCadreDeletable(txn *gorm.DB, cadID uint) error {
	count, err := schema.CountWorkersInCadre(cadID, txn)
	if err != nil {
		return CodedError(err, http.StatusInternalServerError)
	}
	if count > 0 {
		return CodedError(errors.New("cannot delete cadre, it has related health workers"), http.StatusUnprocessableEntity)
	}
	return nil
}
