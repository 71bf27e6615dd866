package tests

import (
	"fmt"
	"sync/atomic"
	"testing"

	"wellnessbridge/backend/schema"
)

// telephone numbers are unique across workers, so generate fresh ones.
var phoneCounter atomic.Uint32

func createTestCadre(t *testing.T, c *client, name string) schema.Cadre {
	body := map[string]interface{}{
		"name":          name,
		"description":   "community health cadre",
		"qualification": "certificate",
	}

	var cadre schema.Cadre
	if err := c.Post("/api/v1/cadres").Json(body).Do(&cadre); err != nil {
		t.Fatal(err)
	}
	return cadre
}

func createTestWorker(t *testing.T, c *client, cadID uint, name string) schema.HealthWorker {
	body := map[string]interface{}{
		"name":      name,
		"gender":    "female",
		"dob":       "1990-04-12",
		"role":      schema.RoleHealthWorker,
		"telephone": fmt.Sprintf("07%08d", phoneCounter.Add(1)),
		"email":     fmt.Sprintf("%v@mail.com", name),
		"password":  "worker_password",
		"address":   "Kigali",
		"cadID":     cadID,
	}

	var worker schema.HealthWorker
	if err := c.Post("/api/v1/healthworkers").Json(body).Do(&worker); err != nil {
		t.Fatal(err)
	}
	return worker
}

func createTestChild(t *testing.T, c *client, name string) schema.Child {
	body := map[string]interface{}{
		"name":          name,
		"gender":        "male",
		"dob":           "2021-06-15",
		"address":       "Musanze",
		"parentName":    "parent of " + name,
		"parentContact": "0788123456",
	}

	var child schema.Child
	if err := c.Post("/api/v1/children").Json(body).Do(&child); err != nil {
		t.Fatal(err)
	}
	return child
}

func createTestRecord(t *testing.T, c *client, childID, hwID uint) schema.ChildHealthRecord {
	body := map[string]interface{}{
		"childID":        childID,
		"healthWorkerID": hwID,
		"checkupDate":    "2024-01-10",
		"height":         82.5,
		"weight":         11.2,
		"vaccination":    "MMR",
		"diagnosis":      "healthy",
		"treatment":      "none",
	}

	var record schema.ChildHealthRecord
	if err := c.Post("/api/v1/child-health-records").Json(body).Do(&record); err != nil {
		t.Fatal(err)
	}
	return record
}

func createTestProject(t *testing.T, c *client, cadID uint, name string) schema.Project {
	body := map[string]interface{}{
		"cadID":       cadID,
		"name":        name,
		"description": "vaccination outreach",
		"startDate":   "2024-02-01",
		"status":      "active",
	}

	var project schema.Project
	if err := c.Post("/api/v1/projects").Json(body).Do(&project); err != nil {
		t.Fatal(err)
	}
	return project
}
