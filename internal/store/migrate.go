package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"connectorsync/internal/models"
)

// schemaVersion is the version new and migrated payloads are stored at.
//
// Version history:
//
//	1: users may carry a legacy email field instead of an employee id;
//	   tasks may lack a category reference
//	2: employee ids derived from email local parts, email dropped
//	3: empty task category references backfilled
const schemaVersion = 3

// payload holds the raw stored collections while migrations run. A nil
// slice means the collection was never stored.
type payload struct {
	users      []byte
	tasks      []byte
	categories []byte
}

type dataMigration struct {
	from  int
	name  string
	apply func(p *payload) error
}

// dataMigrations are applied in order; each entry upgrades from its version
// to the next. Every step is a no-op on data already in the target shape.
var dataMigrations = []dataMigration{
	{from: 1, name: "derive employee ids", apply: migrateUserEmployeeIDs},
	{from: 2, name: "backfill task categories", apply: migrateTaskCategories},
}

// runDataMigrations upgrades p from the given version to schemaVersion.
// Versions newer than schemaVersion are rejected rather than guessed at.
func runDataMigrations(p *payload, from int) error {
	if from > schemaVersion {
		return fmt.Errorf("stored data has schema version %d, newest supported is %d", from, schemaVersion)
	}
	for _, m := range dataMigrations {
		if m.from < from {
			continue
		}
		if err := m.apply(p); err != nil {
			return fmt.Errorf("migrate (%s): %w", m.name, err)
		}
	}
	return nil
}

// userRecordV1 is the stored user shape before version 2, when identity was
// an email address.
type userRecordV1 struct {
	models.User
	Email string `json:"email,omitempty"`
}

func migrateUserEmployeeIDs(p *payload) error {
	if p.users == nil {
		return nil
	}

	var records []userRecordV1
	if err := json.Unmarshal(p.users, &records); err != nil {
		return err
	}

	users := make([]models.User, len(records))
	for i, rec := range records {
		if rec.Email != "" {
			rec.EmployeeID = strings.SplitN(rec.Email, "@", 2)[0]
		}
		users[i] = rec.User
	}

	migrated, err := json.Marshal(users)
	if err != nil {
		return err
	}
	p.users = migrated
	return nil
}

func migrateTaskCategories(p *payload) error {
	if p.tasks == nil {
		return nil
	}

	var tasks []models.Task
	if err := json.Unmarshal(p.tasks, &tasks); err != nil {
		return err
	}

	defaultID := seedCategories()[0].ID
	if p.categories != nil {
		var categories []models.Category
		if err := json.Unmarshal(p.categories, &categories); err != nil {
			return err
		}
		if len(categories) > 0 {
			defaultID = categories[0].ID
		}
	}

	for i := range tasks {
		if tasks[i].CategoryID == "" {
			tasks[i].CategoryID = defaultID
		}
	}

	migrated, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	p.tasks = migrated
	return nil
}
