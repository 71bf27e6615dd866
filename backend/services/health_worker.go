package services

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"path/filepath"

	"wellnessbridge/backend/auth"
	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/storage"
	"wellnessbridge/backend/store"
	"wellnessbridge/backend/validation"
	"wellnessbridge/utils"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxImageBytes = 10 << 20

	workerImageDir = "healthworkers"
	childImageDir  = "children"
)

type HealthWorkerService struct {
	db    *gorm.DB
	files storage.Storage
}

func NewHealthWorkerService(db *gorm.DB, files storage.Storage) *HealthWorkerService {
	return &HealthWorkerService{db: db, files: files}
}

func (s *HealthWorkerService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Get("/search", s.Search)
	r.Get("/page/{page}", s.Page)
	r.Post("/", s.Create)
	r.Post("/assign", s.AssignCadre)
	r.Get("/{hwID}", s.Get)
	r.Put("/{hwID}", s.Update)
	r.Delete("/{hwID}", s.Delete)
	r.Post("/{hwID}/image", s.UploadImage)
	r.Get("/{hwID}/image", s.GetImage)

	return r
}

// workerRules builds the ruleset for worker payloads. The uniqueness probes
// exclude excludeID so updates do not collide with the row being updated.
func (s *HealthWorkerService) workerRules(excludeID uint) validation.RuleSet {
	return validation.RuleSet{
		"name":   validation.Required(validation.String(255)),
		"gender": validation.Required(validation.String(50)),
		"dob":    validation.Required(validation.Date()),
		"role":   validation.Required(validation.Enum(schema.Roles()...)),
		"telephone": validation.Required(
			validation.String(50),
			validation.Unique("telephone", uniqueProbe[schema.HealthWorker](s.db, "telephone", "hw_id", excludeID)),
		),
		"email": validation.Required(
			validation.String(254),
			validation.Unique("email", uniqueProbe[schema.HealthWorker](s.db, "email", "hw_id", excludeID)),
		),
		"password": validation.Required(validation.String(72)),
		"address":  validation.Required(validation.String(500)),
		"cadID": validation.Required(
			validation.Integer(1, math.MaxInt32),
			validation.Exists("cadre", existsProbe[schema.Cadre](s.db, "cad_id")),
		),
	}
}

// Roles are matched case-insensitively everywhere, so fold the payload value
// before the enum rule sees it.
func normalizeRoleField(payload map[string]interface{}) {
	if role, ok := payload["role"].(string); ok {
		payload["role"] = auth.NormalizeRole(role)
	}
}

func workerSearchColumns() []string {
	return []string{"name", "email", "telephone"}
}

func (s *HealthWorkerService) List(w http.ResponseWriter, r *http.Request) {
	workers, err := store.FindAll[schema.HealthWorker](s.db, "Cadre")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", workers)
}

func (s *HealthWorkerService) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	if term == "" {
		writeFailure(w, http.StatusBadRequest, "missing search parameter")
		return
	}

	workers, err := store.Search[schema.HealthWorker](s.db, term, workerSearchColumns(), "Cadre")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", workers)
}

func (s *HealthWorkerService) Page(w http.ResponseWriter, r *http.Request) {
	page, err := utils.URLParamID(r, "page")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := store.Paginate[schema.HealthWorker](s.db, int(page), pageSize, "Cadre")
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", result)
}

func (s *HealthWorkerService) Get(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	worker, err := schema.GetHealthWorker(hwID, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrHealthWorkerNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "", worker)
}

func (s *HealthWorkerService) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}
	normalizeRoleField(payload)

	fields, errs := validation.Validate(payload, s.workerRules(0))
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	worker, err := decodeFields[schema.HealthWorker](fields)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Password is write-only on the model; hash it out of band.
	hashed, err := bcrypt.GenerateFromPassword([]byte(fields["password"].(string)), 10)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "error encrypting password")
		return
	}
	worker.Password = hashed

	err = s.db.Transaction(func(txn *gorm.DB) error {
		// The rule probes ran outside this transaction; re-check so a
		// concurrent duplicate maps to 422 rather than a constraint error.
		exists, err := store.ExistsBy[schema.HealthWorker](txn, "telephone = ? OR email = ?", worker.Telephone, worker.Email)
		if err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		if exists {
			return CodedError(errors.New("telephone or email already exists"), http.StatusUnprocessableEntity)
		}

		if err := store.Create(txn, &worker); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Health worker created successfully.", worker)
}

func (s *HealthWorkerService) Update(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload map[string]interface{}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}
	normalizeRoleField(payload)

	fields, errs := validation.ValidatePartial(payload, s.workerRules(hwID))
	if errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	worker, err := schema.GetHealthWorker(hwID, s.db, false)
	if err != nil {
		if errors.Is(err, schema.ErrHealthWorkerNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := mergeFields(&worker, fields); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	worker.HwID = hwID

	if password, ok := fields["password"].(string); ok {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "error encrypting password")
			return
		}
		worker.Password = hashed
	}

	if err := store.Save(s.db, &worker); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Health worker updated successfully.", worker)
}

func (s *HealthWorkerService) Delete(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var image *string
	err = s.db.Transaction(func(txn *gorm.DB) error {
		worker, err := schema.GetHealthWorker(hwID, txn, false)
		if err != nil {
			if errors.Is(err, schema.ErrHealthWorkerNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		image = worker.Image

		if err := store.Delete(txn, &schema.HealthWorker{HwID: hwID}); err != nil {
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
	writeData(w, http.StatusOK, "Health worker deleted successfully.", nil)
}

// AssignCadre moves a worker into a different cadre.
func (s *HealthWorkerService) AssignCadre(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		HwID  uint `json:"hwID"`
		CadID uint `json:"cadID"`
	}
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	var worker schema.HealthWorker
	err := s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkCadreExists(txn, payload.CadID); err != nil {
			return err
		}

		var err error
		worker, err = schema.GetHealthWorker(payload.HwID, txn, false)
		if err != nil {
			if errors.Is(err, schema.ErrHealthWorkerNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if worker.CadreID == payload.CadID {
			return CodedError(errors.New("health worker is already assigned to this cadre"), http.StatusUnprocessableEntity)
		}

		worker.CadreID = payload.CadID
		if err := store.Save(txn, &worker); err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		writeCodedError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Health worker assigned to cadre successfully.", worker)
}

func (s *HealthWorkerService) UploadImage(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	worker, err := schema.GetHealthWorker(hwID, s.db, false)
	if err != nil {
		if errors.Is(err, schema.ErrHealthWorkerNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	path, err := saveUploadedImage(s.files, r, workerImageDir, worker.Image)
	if err != nil {
		writeCodedError(w, err)
		return
	}

	worker.Image = &path
	if err := store.Save(s.db, &worker); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, "Image uploaded successfully.", worker)
}

func (s *HealthWorkerService) GetImage(w http.ResponseWriter, r *http.Request) {
	hwID, err := utils.URLParamID(r, "hwID")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	worker, err := schema.GetHealthWorker(hwID, s.db, false)
	if err != nil {
		if errors.Is(err, schema.ErrHealthWorkerNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	serveImage(w, s.files, worker.Image)
}

// saveUploadedImage stores the "image" part of a multipart upload and removes
// the previous file once the new one is on disk.
func saveUploadedImage(files storage.Storage, r *http.Request, dir string, previous *string) (string, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return "", CodedError(errors.New("error parsing multipart form"), http.StatusBadRequest)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return "", CodedError(errors.New("missing image file in request"), http.StatusBadRequest)
	}
	defer file.Close()

	path, err := files.Save(dir, header.Filename, file)
	if err != nil {
		return "", CodedError(err, http.StatusInternalServerError)
	}

	if previous != nil {
		if err := files.Delete(*previous); err != nil {
			return "", CodedError(err, http.StatusInternalServerError)
		}
	}
	return path, nil
}

func serveImage(w http.ResponseWriter, files storage.Storage, path *string) {
	if path == nil || !files.Exists(*path) {
		writeFailure(w, http.StatusNotFound, "no image found")
		return
	}

	file, err := files.Read(*path)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(*path)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		slog.Error("error streaming image", "path", *path, "error", err)
	}
}
