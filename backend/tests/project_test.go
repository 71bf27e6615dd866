package tests

import (
	"fmt"
	"net/http"
	"testing"

	"wellnessbridge/backend/schema"
)

func TestProjectCrud(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")
	project := createTestProject(t, c, cadre.CadID, "vaccination drive")

	if project.PrjID == 0 || project.CadreID != cadre.CadID {
		t.Fatalf("unexpected project %+v", project)
	}
	if project.EndDate != nil {
		t.Fatalf("end date should be unset, got %+v", project.EndDate)
	}

	var fetched schema.Project
	if err := c.Get(fmt.Sprintf("/api/v1/projects/%d", project.PrjID)).Do(&fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.Cadre == nil || fetched.Cadre.Name != "nurses" {
		t.Fatalf("project detail should embed its cadre, got %+v", fetched)
	}

	update := map[string]interface{}{"status": "completed", "endDate": "2024-06-30"}
	var updated schema.Project
	if err := c.Put(fmt.Sprintf("/api/v1/projects/%d", project.PrjID)).Json(update).Do(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.Status != "completed" || updated.EndDate == nil || *updated.EndDate != "2024-06-30" {
		t.Fatalf("unexpected project after update %+v", updated)
	}

	var byCadre []schema.Project
	if err := c.Get(fmt.Sprintf("/api/v1/projects/by-cadre/%d", cadre.CadID)).Do(&byCadre); err != nil {
		t.Fatal(err)
	}
	if len(byCadre) != 1 {
		t.Fatalf("expected 1 project for cadre, got %d", len(byCadre))
	}

	if err := c.Delete(fmt.Sprintf("/api/v1/projects/%d", project.PrjID)).Do(nil); err != nil {
		t.Fatal(err)
	}
}

func TestProjectDateOrdering(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")

	status, res, err := c.Post("/api/v1/projects").Json(map[string]interface{}{
		"cadID":       cadre.CadID,
		"name":        "backwards project",
		"description": "ends before it starts",
		"startDate":   "2024-05-01",
		"endDate":     "2024-04-01",
		"status":      "active",
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity || len(res.Errors["endDate"]) == 0 {
		t.Fatalf("expected 422 with endDate error, got %d %v", status, res.Errors)
	}

	// The stored start date also guards updates that only move the end date.
	project := createTestProject(t, c, cadre.CadID, "real project")

	status, res, err = c.Put(fmt.Sprintf("/api/v1/projects/%d", project.PrjID)).Json(map[string]interface{}{
		"endDate": "2024-01-15",
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity || len(res.Errors["endDate"]) == 0 {
		t.Fatalf("expected 422 moving endDate before stored startDate, got %d %v", status, res.Errors)
	}
}

func TestProjectAssignments(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	cadre := createTestCadre(t, c, "nurses")
	worker := createTestWorker(t, c, cadre.CadID, "alice")
	project := createTestProject(t, c, cadre.CadID, "vaccination drive")

	var assignment schema.ProjectAssignment
	err := c.Post("/api/v1/project-assignments").Json(map[string]interface{}{
		"hwID":         worker.HwID,
		"prjID":        project.PrjID,
		"assignedDate": "2024-02-05",
		"role":         "field coordinator",
	}).Do(&assignment)
	if err != nil {
		t.Fatal(err)
	}
	if assignment.AsgID == 0 || assignment.HealthWorkerID != worker.HwID {
		t.Fatalf("unexpected assignment %+v", assignment)
	}

	var byWorker []schema.ProjectAssignment
	if err := c.Get(fmt.Sprintf("/api/v1/project-assignments/by-health-worker/%d", worker.HwID)).Do(&byWorker); err != nil {
		t.Fatal(err)
	}
	if len(byWorker) != 1 || byWorker[0].Project == nil {
		t.Fatalf("expected 1 assignment with project embedded, got %+v", byWorker)
	}

	var byProject []schema.ProjectAssignment
	if err := c.Get(fmt.Sprintf("/api/v1/project-assignments/by-project/%d", project.PrjID)).Do(&byProject); err != nil {
		t.Fatal(err)
	}
	if len(byProject) != 1 || byProject[0].HealthWorker == nil {
		t.Fatalf("expected 1 assignment with worker embedded, got %+v", byProject)
	}

	// Assignments cannot end before they start.
	status, res, err := c.Put(fmt.Sprintf("/api/v1/project-assignments/%d", assignment.AsgID)).Json(map[string]interface{}{
		"endDate": "2024-01-01",
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity || len(res.Errors["endDate"]) == 0 {
		t.Fatalf("expected 422 with endDate error, got %d %v", status, res.Errors)
	}

	if err := c.Delete(fmt.Sprintf("/api/v1/project-assignments/%d", assignment.AsgID)).Do(nil); err != nil {
		t.Fatal(err)
	}
}

func TestProjectAssignmentReferencesMustExist(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client()

	status, res, err := c.Post("/api/v1/project-assignments").Json(map[string]interface{}{
		"hwID":         4242,
		"prjID":        4242,
		"assignedDate": "2024-02-05",
		"role":         "field coordinator",
	}).Send()
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown references, got %d", status)
	}
	if len(res.Errors["hwID"]) == 0 || len(res.Errors["prjID"]) == 0 {
		t.Fatalf("expected field errors for hwID and prjID, got %v", res.Errors)
	}
}
