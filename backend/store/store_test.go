package store

import (
	"fmt"
	"testing"

	"wellnessbridge/backend/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDb(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(schema.Tables()...))
	return db
}

func seedCadres(t *testing.T, db *gorm.DB, n int) {
	for i := 0; i < n; i++ {
		cadre := schema.Cadre{Name: fmt.Sprintf("cadre%d", i), Qualification: "certificate"}
		require.NoError(t, Create(db, &cadre))
	}
}

func TestFindByID(t *testing.T) {
	db := setupDb(t)
	seedCadres(t, db, 3)

	cadre, err := FindByID[schema.Cadre](db, "cad_id", 2)
	require.NoError(t, err)
	assert.Equal(t, "cadre1", cadre.Name)

	_, err = FindByID[schema.Cadre](db, "cad_id", 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaginate(t *testing.T) {
	db := setupDb(t)
	seedCadres(t, db, 12)

	page, err := Paginate[schema.Cadre](db, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.PerPage)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.LastPage)
	assert.Len(t, page.Data, 5)

	// Last page holds the remainder.
	page, err = Paginate[schema.Cadre](db, 3, 5)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	// Out of range pages are empty but well formed.
	page, err = Paginate[schema.Cadre](db, 9, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 3, page.LastPage)

	// Bad inputs fall back to sane defaults.
	page, err = Paginate[schema.Cadre](db, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPerPage, page.PerPage)
}

func TestPaginateEmptyTable(t *testing.T) {
	db := setupDb(t)

	page, err := Paginate[schema.Cadre](db, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 1, page.LastPage)
	assert.Empty(t, page.Data)
}

func TestSearch(t *testing.T) {
	db := setupDb(t)

	for _, name := range []string{"Community Nurses", "Doctors", "Nutritionists"} {
		cadre := schema.Cadre{Name: name, Qualification: "certificate", Description: "field staff"}
		require.NoError(t, Create(db, &cadre))
	}

	// Case-insensitive substring match.
	results, err := Search[schema.Cadre](db, "NURSE", []string{"name"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Community Nurses", results[0].Name)

	// Or-combined across columns.
	results, err = Search[schema.Cadre](db, "field", []string{"name", "description"})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = Search[schema.Cadre](db, "missing", []string{"name", "description"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExistsBy(t *testing.T) {
	db := setupDb(t)
	seedCadres(t, db, 2)

	exists, err := ExistsBy[schema.Cadre](db, "name = ?", "cadre0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = ExistsBy[schema.Cadre](db, "name = ?", "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = ExistsBy[schema.Cadre](db, "name = ? AND cad_id <> ?", "cadre0", 1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindAllBy(t *testing.T) {
	db := setupDb(t)
	seedCadres(t, db, 1)

	for i := 0; i < 3; i++ {
		worker := schema.HealthWorker{
			Name: fmt.Sprintf("worker%d", i), Gender: "female", Dob: "1990-01-01",
			Role: schema.RoleHealthWorker, Telephone: fmt.Sprintf("078%d", i),
			Email: fmt.Sprintf("w%d@mail.com", i), Address: "Kigali", CadreID: 1,
		}
		require.NoError(t, Create(db, &worker))
	}

	workers, err := FindAllBy[schema.HealthWorker](db, "cad_id", 1)
	require.NoError(t, err)
	assert.Len(t, workers, 3)

	workers, err = FindAllBy[schema.HealthWorker](db, "cad_id", 2)
	require.NoError(t, err)
	assert.Empty(t, workers)
}

func TestDelete(t *testing.T) {
	db := setupDb(t)
	seedCadres(t, db, 1)

	require.NoError(t, Delete(db, &schema.Cadre{CadID: 1}))

	_, err := FindByID[schema.Cadre](db, "cad_id", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
