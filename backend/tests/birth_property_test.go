package tests

import (
	"fmt"
	"net/http"
	"testing"

	"wellnessbridge/backend/schema"
)

func birthPropertyBody(childID uint) map[string]interface{} {
	return map[string]interface{}{
		"childID":          childID,
		"motherAge":        28,
		"fatherAge":        33,
		"numberOfChildren": 2,
		"birthType":        "natural",
		"birthWeight":      3.4,
		"childCondition":   "healthy",
	}
}

func TestBirthPropertyCrud(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	child := createTestChild(t, c, "amara")

	var property schema.BirthProperty
	if err := c.Post("/api/v1/birth-properties").Json(birthPropertyBody(child.ChildID)).Do(&property); err != nil {
		t.Fatal(err)
	}
	if property.BID == 0 || property.ChildID != child.ChildID {
		t.Fatalf("unexpected birth property %+v", property)
	}

	var byChild schema.BirthProperty
	if err := c.Get(fmt.Sprintf("/api/v1/birth-properties/by-child/%d", child.ChildID)).Do(&byChild); err != nil {
		t.Fatal(err)
	}
	if byChild.BID != property.BID {
		t.Fatalf("lookup by child returned wrong record %+v", byChild)
	}

	update := map[string]interface{}{"childCondition": "underweight"}
	var updated schema.BirthProperty
	if err := c.Put(fmt.Sprintf("/api/v1/birth-properties/%d", property.BID)).Json(update).Do(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.ChildCondition != "underweight" || updated.MotherAge != 28 {
		t.Fatalf("partial update should keep unchanged fields, got %+v", updated)
	}

	if err := c.Delete(fmt.Sprintf("/api/v1/birth-properties/%d", property.BID)).Do(nil); err != nil {
		t.Fatal(err)
	}

	status, _, err := c.Get(fmt.Sprintf("/api/v1/birth-properties/%d", property.BID)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestBirthPropertyOnePerChild(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	child := createTestChild(t, c, "amara")

	if err := c.Post("/api/v1/birth-properties").Json(birthPropertyBody(child.ChildID)).Do(nil); err != nil {
		t.Fatal(err)
	}

	status, res, err := c.Post("/api/v1/birth-properties").Json(birthPropertyBody(child.ChildID)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for second birth property, got %d", status)
	}
	if res.Success {
		t.Fatal("response should not be marked successful")
	}
}

func TestBirthPropertyBounds(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	child := createTestChild(t, c, "amara")

	body := birthPropertyBody(child.ChildID)
	body["birthWeight"] = 15.0
	body["motherAge"] = 10

	status, res, err := c.Post("/api/v1/birth-properties").Json(body).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for out of range values, got %d", status)
	}
	if len(res.Errors["birthWeight"]) == 0 || len(res.Errors["motherAge"]) == 0 {
		t.Fatalf("expected field errors for birthWeight and motherAge, got %v", res.Errors)
	}
}

func TestBirthPropertyChildMustExist(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	status, res, err := c.Post("/api/v1/birth-properties").Json(birthPropertyBody(4242)).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown child, got %d", status)
	}
	if len(res.Errors["childID"]) == 0 {
		t.Fatalf("expected field error for childID, got %v", res.Errors)
	}
}
