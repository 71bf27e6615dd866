package schema

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"
)

var (
	ErrCadreNotFound         = errors.New("cadre not found")
	ErrHealthWorkerNotFound  = errors.New("health worker not found")
	ErrChildNotFound         = errors.New("child not found")
	ErrBirthPropertyNotFound = errors.New("birth property not found")
	ErrRecordNotFound        = errors.New("health record not found")
	ErrRestrictionNotFound   = errors.New("health restriction not found")
	ErrProjectNotFound       = errors.New("project not found")
	ErrAssignmentNotFound    = errors.New("project assignment not found")
	ErrDbAccessFailed        = errors.New("db access failed")
)

func GetCadre(cadID uint, db *gorm.DB) (Cadre, error) {
	var cadre Cadre

	result := db.First(&cadre, "cad_id = ?", cadID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return cadre, ErrCadreNotFound
		}
		slog.Error("sql error in get cadre", "cad_id", cadID, "error", result.Error)
		return cadre, ErrDbAccessFailed
	}

	return cadre, nil
}

// GetHealthWorker loads a worker, optionally with its cadre embedded. The
// cadre is allowed to be nil on display even though creation enforces it.
func GetHealthWorker(hwID uint, db *gorm.DB, loadCadre bool) (HealthWorker, error) {
	var worker HealthWorker

	query := db
	if loadCadre {
		query = query.Preload("Cadre")
	}

	result := query.First(&worker, "hw_id = ?", hwID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return worker, ErrHealthWorkerNotFound
		}
		slog.Error("sql error in get health worker", "hw_id", hwID, "error", result.Error)
		return worker, ErrDbAccessFailed
	}

	return worker, nil
}

func GetChild(childID uint, db *gorm.DB, loadRelations bool) (Child, error) {
	var child Child

	query := db
	if loadRelations {
		query = query.Preload("BirthProperty").Preload("HealthRecords")
	}

	result := query.First(&child, "child_id = ?", childID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return child, ErrChildNotFound
		}
		slog.Error("sql error in get child", "child_id", childID, "error", result.Error)
		return child, ErrDbAccessFailed
	}

	return child, nil
}

func GetHealthRecord(recordID uint, db *gorm.DB, loadRelations bool) (ChildHealthRecord, error) {
	var record ChildHealthRecord

	query := db
	if loadRelations {
		query = query.Preload("Child").Preload("HealthWorker")
	}

	result := query.First(&record, "record_id = ?", recordID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return record, ErrRecordNotFound
		}
		slog.Error("sql error in get health record", "record_id", recordID, "error", result.Error)
		return record, ErrDbAccessFailed
	}

	return record, nil
}

func GetProject(prjID uint, db *gorm.DB, loadCadre bool) (Project, error) {
	var project Project

	query := db
	if loadCadre {
		query = query.Preload("Cadre")
	}

	result := query.First(&project, "prj_id = ?", prjID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return project, ErrProjectNotFound
		}
		slog.Error("sql error in get project", "prj_id", prjID, "error", result.Error)
		return project, ErrDbAccessFailed
	}

	return project, nil
}

// GetHealthWorkerByEmail is used by the login path. Email is unique.
func GetHealthWorkerByEmail(email string, db *gorm.DB) (HealthWorker, error) {
	var worker HealthWorker

	result := db.First(&worker, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return worker, ErrHealthWorkerNotFound
		}
		slog.Error("sql error looking up health worker by email", "error", result.Error)
		return worker, ErrDbAccessFailed
	}

	return worker, nil
}

// CountWorkersInCadre backs the cadre deletion guard.
func CountWorkersInCadre(cadID uint, db *gorm.DB) (int64, error) {
	var count int64
	result := db.Model(&HealthWorker{}).Where("cad_id = ?", cadID).Count(&count)
	if result.Error != nil {
		slog.Error("sql error counting workers in cadre", "cad_id", cadID, "error", result.Error)
		return 0, ErrDbAccessFailed
	}
	return count, nil
}
