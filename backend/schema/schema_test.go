package schema

import (
	"sync"
	"testing"

	gormschema "gorm.io/gorm/schema"
)

// A foreignKey tag naming a field that also exists on the referenced struct
// makes gorm resolve the pointer as has-one and emit the constraint on the
// referenced table, so the belongs-to sides rely on conventional field names.
// This pins the resolved direction for every reference pointer.
func TestReferencePointersResolveAsBelongsTo(t *testing.T) {
	cases := []struct {
		model    interface{}
		relation string
		fkColumn string
	}{
		{&HealthWorker{}, "Cadre", "cad_id"},
		{&Project{}, "Cadre", "cad_id"},
		{&BirthProperty{}, "Child", "child_id"},
		{&ChildHealthRecord{}, "Child", "child_id"},
		{&ChildHealthRecord{}, "HealthWorker", "health_worker_id"},
		{&HealthRestriction{}, "Record", "record_id"},
		{&ProjectAssignment{}, "HealthWorker", "hw_id"},
		{&ProjectAssignment{}, "Project", "prj_id"},
	}

	cache := &sync.Map{}
	for _, tc := range cases {
		parsed, err := gormschema.Parse(tc.model, cache, gormschema.NamingStrategy{})
		if err != nil {
			t.Fatal(err)
		}

		rel, ok := parsed.Relationships.Relations[tc.relation]
		if !ok {
			t.Fatalf("%v: missing relation %v", parsed.Name, tc.relation)
		}
		if rel.Type != gormschema.BelongsTo {
			t.Fatalf("%v.%v: expected belongs-to, got %v", parsed.Name, tc.relation, rel.Type)
		}

		fk := rel.References[0].ForeignKey
		if fk.Schema.Name != parsed.Name || fk.DBName != tc.fkColumn {
			t.Fatalf("%v.%v: foreign key should be %v.%v, got %v.%v",
				parsed.Name, tc.relation, parsed.Name, tc.fkColumn, fk.Schema.Name, fk.DBName)
		}
	}
}
