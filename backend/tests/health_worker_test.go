package tests

import (
	"fmt"
	"net/http"
	"testing"

	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/store"
)

func TestHealthWorkerCrud(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")
	worker := createTestWorker(t, c, cadre.CadID, "alice")

	if worker.HwID == 0 || worker.CadreID != cadre.CadID {
		t.Fatalf("unexpected worker %+v", worker)
	}

	var fetched schema.HealthWorker
	if err := c.Get(fmt.Sprintf("/api/v1/healthworkers/%d", worker.HwID)).Do(&fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.Cadre == nil || fetched.Cadre.Name != "nurses" {
		t.Fatalf("worker should embed its cadre, got %+v", fetched.Cadre)
	}

	update := map[string]interface{}{"address": "Huye"}
	var updated schema.HealthWorker
	if err := c.Put(fmt.Sprintf("/api/v1/healthworkers/%d", worker.HwID)).Json(update).Do(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.Address != "Huye" || updated.Email != worker.Email {
		t.Fatalf("partial update should keep unchanged fields, got %+v", updated)
	}

	if err := c.Delete(fmt.Sprintf("/api/v1/healthworkers/%d", worker.HwID)).Do(nil); err != nil {
		t.Fatal(err)
	}

	status, _, err := c.Get(fmt.Sprintf("/api/v1/healthworkers/%d", worker.HwID)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestHealthWorkerUniqueEmail(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")
	createTestWorker(t, c, cadre.CadID, "bob")

	status, res, err := c.Post("/api/v1/healthworkers").Json(map[string]interface{}{
		"name":      "bob again",
		"gender":    "male",
		"dob":       "1985-01-01",
		"role":      schema.RoleHealthWorker,
		"telephone": "0799999999",
		"email":     "bob@mail.com",
		"password":  "worker_password",
		"address":   "Kigali",
		"cadID":     cadre.CadID,
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for duplicate email, got %d", status)
	}
	if len(res.Errors["email"]) == 0 {
		t.Fatalf("expected field error for email, got %v", res.Errors)
	}
}

func TestHealthWorkerCadreMustExist(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	status, res, err := c.Post("/api/v1/healthworkers").Json(map[string]interface{}{
		"name":      "carol",
		"gender":    "female",
		"dob":       "1992-03-03",
		"role":      schema.RoleHealthWorker,
		"telephone": "0788777666",
		"email":     "carol@mail.com",
		"password":  "worker_password",
		"address":   "Kigali",
		"cadID":     9999,
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown cadre, got %d", status)
	}
	if len(res.Errors["cadID"]) == 0 {
		t.Fatalf("expected field error for cadID, got %v", res.Errors)
	}
}

func TestHealthWorkerSearch(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")
	createTestWorker(t, c, cadre.CadID, "grace")
	createTestWorker(t, c, cadre.CadID, "gloria")
	createTestWorker(t, c, cadre.CadID, "henry")

	var results []schema.HealthWorker
	if err := c.Get("/api/v1/healthworkers/search?search=GRA").Do(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "grace" {
		t.Fatalf("expected case-insensitive match for grace, got %+v", results)
	}

	// Matches both names and emails.
	if err := c.Get("/api/v1/healthworkers/search?search=mail.com").Do(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) < 3 {
		t.Fatalf("expected email matches, got %d results", len(results))
	}
}

func TestHealthWorkerPagination(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")
	for i := 0; i < 7; i++ {
		createTestWorker(t, c, cadre.CadID, fmt.Sprintf("worker%d", i))
	}

	var page store.Page[schema.HealthWorker]
	if err := c.Get("/api/v1/healthworkers/page/2").Do(&page); err != nil {
		t.Fatal(err)
	}

	// 7 created plus the seeded admin.
	if page.Total != 8 || page.LastPage != 2 || len(page.Data) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestAssignWorkerToCadre(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	nurses := createTestCadre(t, c, "nurses")
	doctors := createTestCadre(t, c, "doctors")
	worker := createTestWorker(t, c, nurses.CadID, "dave")

	var assigned schema.HealthWorker
	err := c.Post("/api/v1/healthworkers/assign").Json(map[string]interface{}{
		"hwID":  worker.HwID,
		"cadID": doctors.CadID,
	}).Do(&assigned)
	if err != nil {
		t.Fatal(err)
	}
	if assigned.CadreID != doctors.CadID {
		t.Fatalf("worker should now be in doctors cadre, got %+v", assigned)
	}

	status, _, err := c.Post("/api/v1/healthworkers/assign").Json(map[string]interface{}{
		"hwID":  worker.HwID,
		"cadID": doctors.CadID,
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 re-assigning to same cadre, got %d", status)
	}
}
