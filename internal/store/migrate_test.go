package store

import (
	"encoding/json"
	"strings"
	"testing"

	"connectorsync/internal/models"
)

func seedKV(t *testing.T, kv *memKV, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	kv.data[key] = data
}

func TestMigrateLegacyEmailUsers(t *testing.T) {
	kv := newMemKV()
	kv.data[keyUsers] = []byte(`[
		{"id":"u1","name":"Old Admin","email":"boss@example.com","role":"ADMIN","avatarColor":"33"},
		{"id":"u2","name":"Done Already","employeeId":"ENG-009","role":"ENGINEER","avatarColor":"42"}
	]`)
	seedKV(t, kv, keyTasks, []models.Task{})
	seedKV(t, kv, keyCategories, seedCategories())
	// No schema_version key: pre-versioning payload, treated as version 1.

	s, err := load(kv, fixedNow)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	u1 := s.UserByID("u1")
	if u1.EmployeeID != "boss" {
		t.Errorf("employeeId = %q, want local part %q", u1.EmployeeID, "boss")
	}
	if s.UserByID("u2").EmployeeID != "ENG-009" {
		t.Errorf("already-migrated user was changed")
	}

	// The migrated record must no longer carry the email field.
	if strings.Contains(string(kv.data[keyUsers]), "email") {
		t.Errorf("email field still present after migration: %s", kv.data[keyUsers])
	}
}

func TestMigrateBackfillsTaskCategory(t *testing.T) {
	kv := newMemKV()
	seedKV(t, kv, keyUsers, seedUsers())
	seedKV(t, kv, keyCategories, []models.Category{{ID: "zz", Name: "Only one"}})
	kv.data[keyTasks] = []byte(`[
		{"id":"t9","userId":"u2","title":"No category","status":"TODO","logs":[]},
		{"id":"t8","userId":"u2","title":"Has category","status":"TODO","logs":[],"categoryId":"c3"}
	]`)

	s, err := load(kv, fixedNow)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := s.TaskByID("t9").CategoryID; got != "zz" {
		t.Errorf("backfilled categoryId = %q, want first category zz", got)
	}
	if got := s.TaskByID("t8").CategoryID; got != "c3" {
		t.Errorf("existing categoryId changed to %q", got)
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	kv := newMemKV()
	kv.data[keyUsers] = []byte(`[{"id":"u1","name":"Old","email":"x@y.z","role":"ADMIN","avatarColor":"33"}]`)
	kv.data[keyTasks] = []byte(`[{"id":"t9","userId":"u1","title":"T","status":"TODO","logs":[]}]`)
	seedKV(t, kv, keyCategories, seedCategories())

	if _, err := load(kv, fixedNow); err != nil {
		t.Fatalf("first load: %v", err)
	}
	firstUsers := string(kv.data[keyUsers])
	firstTasks := string(kv.data[keyTasks])

	if _, err := load(kv, fixedNow); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got := string(kv.data[keyUsers]); got != firstUsers {
		t.Errorf("second load changed users:\n%s\nvs\n%s", got, firstUsers)
	}
	if got := string(kv.data[keyTasks]); got != firstTasks {
		t.Errorf("second load changed tasks:\n%s\nvs\n%s", got, firstTasks)
	}
}

func TestMigrationWritesCurrentVersion(t *testing.T) {
	kv := newMemKV()
	seedKV(t, kv, keyUsers, seedUsers())
	seedKV(t, kv, keyTasks, []models.Task{})
	seedKV(t, kv, keyCategories, seedCategories())

	if _, err := load(kv, fixedNow); err != nil {
		t.Fatalf("load: %v", err)
	}

	var version int
	if err := json.Unmarshal(kv.data[keySchemaVersion], &version); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("stored version = %d, want %d", version, schemaVersion)
	}
}

func TestUnknownSchemaVersionRejected(t *testing.T) {
	kv := newMemKV()
	seedKV(t, kv, keyUsers, seedUsers())
	seedKV(t, kv, keyTasks, []models.Task{})
	seedKV(t, kv, keyCategories, seedCategories())
	seedKV(t, kv, keySchemaVersion, schemaVersion+1)

	if _, err := load(kv, fixedNow); err == nil {
		t.Fatalf("expected error for schema version %d", schemaVersion+1)
	}
}

func TestBackfillFallsBackToSeedCategory(t *testing.T) {
	p := &payload{
		tasks: []byte(`[{"id":"t9","userId":"u1","title":"T","status":"TODO","logs":[]}]`),
	}
	if err := migrateTaskCategories(p); err != nil {
		t.Fatalf("migrateTaskCategories: %v", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(p.tasks, &tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := seedCategories()[0].ID; tasks[0].CategoryID != want {
		t.Errorf("categoryId = %q, want seed default %q", tasks[0].CategoryID, want)
	}
}
