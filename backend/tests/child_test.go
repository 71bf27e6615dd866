package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"wellnessbridge/backend/schema"
	"wellnessbridge/backend/store"
)

func TestChildCrud(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	child := createTestChild(t, c, "amara")
	if child.ChildID == 0 || child.Name != "amara" {
		t.Fatalf("unexpected child %+v", child)
	}

	var fetched schema.Child
	if err := c.Get(fmt.Sprintf("/api/v1/children/%d", child.ChildID)).Do(&fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.ParentName != "parent of amara" {
		t.Fatalf("unexpected child %+v", fetched)
	}

	update := map[string]interface{}{"address": "Rubavu"}
	var updated schema.Child
	if err := c.Put(fmt.Sprintf("/api/v1/children/%d", child.ChildID)).Json(update).Do(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.Address != "Rubavu" || updated.Name != "amara" {
		t.Fatalf("partial update should keep unchanged fields, got %+v", updated)
	}

	if err := c.Delete(fmt.Sprintf("/api/v1/children/%d", child.ChildID)).Do(nil); err != nil {
		t.Fatal(err)
	}

	status, _, err := c.Get(fmt.Sprintf("/api/v1/children/%d", child.ChildID)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestChildDeleteCascades(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")
	worker := createTestWorker(t, c, cadre.CadID, "alice")
	child := createTestChild(t, c, "amara")
	record := createTestRecord(t, c, child.ChildID, worker.HwID)

	var property schema.BirthProperty
	err := c.Post("/api/v1/birth-properties").Json(map[string]interface{}{
		"childID":          child.ChildID,
		"motherAge":        28,
		"fatherAge":        31,
		"numberOfChildren": 2,
		"birthType":        "natural",
		"birthWeight":      3.4,
		"childCondition":   "healthy",
	}).Do(&property)
	if err != nil {
		t.Fatal(err)
	}

	var restriction schema.HealthRestriction
	err = c.Post("/api/v1/health-restrictions").Json(map[string]interface{}{
		"recordID":    record.RecordID,
		"description": "no strenuous activity",
		"severity":    schema.SeverityMild,
	}).Do(&restriction)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(fmt.Sprintf("/api/v1/children/%d", child.ChildID)).Do(nil); err != nil {
		t.Fatal(err)
	}

	// The dependent rows go with the child: birth property, health records,
	// and the restrictions hanging off those records.
	status, _, err := c.Get(fmt.Sprintf("/api/v1/birth-properties/%d", property.BID)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected birth property to cascade away, got %d", status)
	}

	status, _, err = c.Get(fmt.Sprintf("/api/v1/child-health-records/%d", record.RecordID)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected health record to cascade away, got %d", status)
	}

	status, _, err = c.Get(fmt.Sprintf("/api/v1/health-restrictions/%d", restriction.HrID)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected restriction to cascade away, got %d", status)
	}
}

func TestChildGenderValidation(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	status, res, err := c.Post("/api/v1/children").Json(map[string]interface{}{
		"name":          "kofi",
		"gender":        "unknown",
		"dob":           "2022-01-01",
		"address":       "Musanze",
		"parentName":    "parent",
		"parentContact": "0788123456",
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid gender, got %d", status)
	}
	if len(res.Errors["gender"]) == 0 {
		t.Fatalf("expected field error for gender, got %v", res.Errors)
	}
}

func TestChildDuplicateNamePolicy(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	first := createTestChild(t, c, "amara")

	status, res, err := c.Post("/api/v1/children").Json(map[string]interface{}{
		"name":          "Amara",
		"gender":        "female",
		"dob":           "2022-09-09",
		"address":       "Kigali",
		"parentName":    "different parent",
		"parentContact": "0788000000",
	}).Send()
	if err != nil {
		t.Fatal(err)
	}

	// Matching is case-insensitive; the existing record comes back so intake
	// staff can compare before overriding.
	if status != http.StatusOK {
		t.Fatalf("expected 200 with rejection envelope, got %d", status)
	}
	if res.Success {
		t.Fatal("duplicate name should not be marked successful")
	}

	var existing schema.Child
	if err := json.Unmarshal(res.Data, &existing); err != nil {
		t.Fatal(err)
	}
	if existing.ChildID != first.ChildID {
		t.Fatalf("expected existing child %d in response, got %+v", first.ChildID, existing)
	}
}

func TestChildPagination(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	for i := 0; i < 25; i++ {
		createTestChild(t, c, fmt.Sprintf("child%d", i))
	}

	var page store.Page[schema.Child]
	if err := c.Get("/api/v1/children?page=3&per_page=10").Do(&page); err != nil {
		t.Fatal(err)
	}

	if page.Total != 25 || page.LastPage != 3 {
		t.Fatalf("expected 25 children over 3 pages, got total=%d lastPage=%d", page.Total, page.LastPage)
	}
	if len(page.Data) != 5 {
		t.Fatalf("expected 5 children on the last page, got %d", len(page.Data))
	}
}

func TestChildSearch(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	createTestChild(t, c, "keza")
	createTestChild(t, c, "kevin")
	createTestChild(t, c, "diane")

	var results []schema.Child
	if err := c.Get("/api/v1/children?search=ke").Do(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches for 'ke', got %+v", results)
	}

	// Parent names are searchable too.
	if err := c.Get("/api/v1/children?search=parent+of+diane").Do(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "diane" {
		t.Fatalf("expected match on parent name, got %+v", results)
	}
}
