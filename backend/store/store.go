// Package store provides typed accessors over the entity tables. The handlers
// for every entity group share these instead of repeating the same gorm
// plumbing per table.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"wellnessbridge/backend/schema"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

const DefaultPerPage = 10

// Page is the pagination envelope returned by list endpoints.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PerPage  int   `json:"perPage"`
	Total    int64 `json:"total"`
	LastPage int   `json:"lastPage"`
}

func FindByID[T any](db *gorm.DB, key string, id uint, preloads ...string) (T, error) {
	var entity T

	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	result := query.First(&entity, fmt.Sprintf("%v = ?", key), id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entity, ErrNotFound
		}
		slog.Error("sql error in find by id", "key", key, "id", id, "error", result.Error)
		return entity, schema.ErrDbAccessFailed
	}

	return entity, nil
}

// FindOneBy looks up a single row by a foreign key column, for 1:1 relations
// such as child -> birth property.
func FindOneBy[T any](db *gorm.DB, column string, value any, preloads ...string) (T, error) {
	var entity T

	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	result := query.First(&entity, fmt.Sprintf("%v = ?", column), value)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entity, ErrNotFound
		}
		slog.Error("sql error in find one by", "column", column, "error", result.Error)
		return entity, schema.ErrDbAccessFailed
	}

	return entity, nil
}

// FindAllBy returns every row matching a foreign key column.
func FindAllBy[T any](db *gorm.DB, column string, value any, preloads ...string) ([]T, error) {
	var entities []T

	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	result := query.Where(fmt.Sprintf("%v = ?", column), value).Find(&entities)
	if result.Error != nil {
		slog.Error("sql error in find all by", "column", column, "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}

	return entities, nil
}

func FindAll[T any](db *gorm.DB, preloads ...string) ([]T, error) {
	var entities []T

	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	result := query.Find(&entities)
	if result.Error != nil {
		slog.Error("sql error in find all", "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}

	return entities, nil
}

// Paginate returns the requested page. Page numbers start at 1; perPage
// values below 1 fall back to DefaultPerPage.
func Paginate[T any](db *gorm.DB, page, perPage int, preloads ...string) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	var entity T
	var total int64
	result := db.Model(&entity).Count(&total)
	if result.Error != nil {
		slog.Error("sql error counting rows for pagination", "error", result.Error)
		return Page[T]{}, schema.ErrDbAccessFailed
	}

	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	entities := make([]T, 0, perPage)
	result = query.Offset((page - 1) * perPage).Limit(perPage).Find(&entities)
	if result.Error != nil {
		slog.Error("sql error fetching page", "page", page, "error", result.Error)
		return Page[T]{}, schema.ErrDbAccessFailed
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return Page[T]{Data: entities, Page: page, PerPage: perPage, Total: total, LastPage: lastPage}, nil
}

// SearchQuery builds a case-insensitive substring filter OR-combined across
// the named columns. It returns a query so callers can layer pagination or
// eager loading on top.
func SearchQuery(db *gorm.DB, term string, columns []string) *gorm.DB {
	term = strings.ToLower(strings.TrimSpace(term))
	pattern := "%" + term + "%"

	clauses := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		clauses = append(clauses, fmt.Sprintf("LOWER(%v) LIKE ?", column))
		args = append(args, pattern)
	}

	return db.Where(strings.Join(clauses, " OR "), args...)
}

func Search[T any](db *gorm.DB, term string, columns []string, preloads ...string) ([]T, error) {
	query := SearchQuery(db, term, columns)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var entities []T
	result := query.Find(&entities)
	if result.Error != nil {
		slog.Error("sql error in search", "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}

	return entities, nil
}

func Create[T any](db *gorm.DB, entity *T) error {
	result := db.Create(entity)
	if result.Error != nil {
		slog.Error("sql error creating entity", "error", result.Error)
		return schema.ErrDbAccessFailed
	}
	return nil
}

func Save[T any](db *gorm.DB, entity *T) error {
	result := db.Save(entity)
	if result.Error != nil {
		slog.Error("sql error saving entity", "error", result.Error)
		return schema.ErrDbAccessFailed
	}
	return nil
}

func Delete[T any](db *gorm.DB, entity *T) error {
	result := db.Delete(entity)
	if result.Error != nil {
		slog.Error("sql error deleting entity", "error", result.Error)
		return schema.ErrDbAccessFailed
	}
	return nil
}

// ExistsBy reports whether any row matches the given filter. It backs the
// referential and duplicate pre-checks; the storage constraints remain the
// final authority under concurrent writers.
func ExistsBy[T any](db *gorm.DB, query string, args ...any) (bool, error) {
	var entity T
	result := db.Limit(1).Find(&entity, append([]any{query}, args...)...)
	if result.Error != nil {
		slog.Error("sql error in exists check", "query", query, "error", result.Error)
		return false, schema.ErrDbAccessFailed
	}
	return result.RowsAffected != 0, nil
}
