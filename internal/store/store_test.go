package store

import (
	"errors"
	"testing"
	"time"

	"connectorsync/internal/models"
)

// memKV is an in-memory stand-in for the sqlite layer.
type memKV struct {
	data     map[string][]byte
	failPuts bool
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(key string, value []byte) error {
	if m.failPuts {
		return errors.New("disk full")
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

var testDay = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testDay }

func newTestStore(t *testing.T) (*Store, *memKV) {
	t.Helper()
	kv := newMemKV()
	s, err := load(kv, fixedNow)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, kv
}

func TestLoadSeedsInitialData(t *testing.T) {
	s, kv := newTestStore(t)

	snap := s.Snapshot()
	if len(snap.Users) != 4 {
		t.Errorf("expected 4 seed users, got %d", len(snap.Users))
	}
	if len(snap.Categories) != 5 {
		t.Errorf("expected 5 seed categories, got %d", len(snap.Categories))
	}
	if len(snap.Tasks) != 2 {
		t.Errorf("expected 2 seed tasks, got %d", len(snap.Tasks))
	}

	for _, key := range []string{keyUsers, keyTasks, keyCategories, keySchemaVersion} {
		if _, ok := kv.data[key]; !ok {
			t.Errorf("key %q not persisted after seeding", key)
		}
	}
}

func TestAddLog(t *testing.T) {
	t.Run("accumulates hours across entries", func(t *testing.T) {
		s, _ := newTestStore(t)

		for _, h := range []float64{2, 1.5, 0.5} {
			if err := s.AddLog("t1", LogData{Content: "work", HoursSpent: h}); err != nil {
				t.Fatalf("AddLog: %v", err)
			}
		}

		task := s.TaskByID("t1")
		var sum float64
		for _, entry := range task.Logs {
			sum += entry.HoursSpent
		}
		if task.ActualHours != sum {
			t.Errorf("ActualHours = %v, want sum of log hours %v", task.ActualHours, sum)
		}
		if task.ActualHours != 8 { // seeded 4 + 2 + 1.5 + 0.5
			t.Errorf("ActualHours = %v, want 8", task.ActualHours)
		}
	})

	t.Run("reopens a DONE task", func(t *testing.T) {
		s, _ := newTestStore(t)
		done := models.StatusDone
		if err := s.UpdateTask("t1", TaskUpdate{Status: &done}); err != nil {
			t.Fatalf("UpdateTask: %v", err)
		}

		if err := s.AddLog("t1", LogData{Content: "rework", HoursSpent: 1}); err != nil {
			t.Fatalf("AddLog: %v", err)
		}

		if got := s.TaskByID("t1").Status; got != models.StatusInProgress {
			t.Errorf("status after logging on DONE task = %s, want %s", got, models.StatusInProgress)
		}
	})

	t.Run("sets start date only once", func(t *testing.T) {
		s, _ := newTestStore(t)

		if got := s.TaskByID("t2").StartDate; got != "" {
			t.Fatalf("seed t2 has start date %q, want none", got)
		}

		if err := s.AddLog("t2", LogData{Content: "first", HoursSpent: 1}); err != nil {
			t.Fatalf("AddLog: %v", err)
		}
		today := models.FormatDate(testDay)
		if got := s.TaskByID("t2").StartDate; got != today {
			t.Errorf("start date = %q, want %q", got, today)
		}

		// Force a different start date, then log again: it must not move.
		other := "2026-01-01"
		if err := s.UpdateTask("t2", TaskUpdate{StartDate: &other}); err != nil {
			t.Fatalf("UpdateTask: %v", err)
		}
		if err := s.AddLog("t2", LogData{Content: "second", HoursSpent: 1}); err != nil {
			t.Fatalf("AddLog: %v", err)
		}
		if got := s.TaskByID("t2").StartDate; got != other {
			t.Errorf("start date changed to %q on repeated log, want %q", got, other)
		}
	})

	t.Run("prepends entries", func(t *testing.T) {
		s, _ := newTestStore(t)

		if err := s.AddLog("t1", LogData{Content: "newest", HoursSpent: 1}); err != nil {
			t.Fatalf("AddLog: %v", err)
		}

		logs := s.TaskByID("t1").Logs
		if len(logs) != 2 {
			t.Fatalf("expected 2 logs, got %d", len(logs))
		}
		if logs[0].Content != "newest" {
			t.Errorf("first log = %q, want the newest entry", logs[0].Content)
		}
	})

	t.Run("unknown task is a no-op", func(t *testing.T) {
		s, _ := newTestStore(t)
		before := s.Snapshot()

		if err := s.AddLog("missing", LogData{Content: "x", HoursSpent: 1}); err != nil {
			t.Fatalf("AddLog: %v", err)
		}

		after := s.Snapshot()
		if len(after.Tasks) != len(before.Tasks) {
			t.Errorf("task count changed on unknown id")
		}
	})
}

func TestTransferTask(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.TransferTask("t1", "u4", "u2"); err != nil {
		t.Fatalf("TransferTask: %v", err)
	}

	task := s.TaskByID("t1")
	if task.UserID != "u4" {
		t.Errorf("owner = %q, want u4", task.UserID)
	}
	if task.TransferredFrom != "u2" {
		t.Errorf("transferredFrom = %q, want u2", task.TransferredFrom)
	}
	if task.Status != models.StatusInProgress {
		t.Errorf("transfer changed status to %s", task.Status)
	}

	if err := s.DismissTransferAlert("t1"); err != nil {
		t.Fatalf("DismissTransferAlert: %v", err)
	}
	task = s.TaskByID("t1")
	if task.TransferredFrom != "" {
		t.Errorf("transferredFrom = %q after dismissal, want empty", task.TransferredFrom)
	}
	if task.UserID != "u4" {
		t.Errorf("dismissal changed owner to %q", task.UserID)
	}

	// Dismissal is idempotent.
	if err := s.DismissTransferAlert("t1"); err != nil {
		t.Fatalf("second DismissTransferAlert: %v", err)
	}
	if got := s.TaskByID("t1").UserID; got != "u4" {
		t.Errorf("owner = %q after repeated dismissal, want u4", got)
	}
}

func TestAddTask(t *testing.T) {
	t.Run("defaults and newest-first ordering", func(t *testing.T) {
		s, _ := newTestStore(t)

		task, err := s.AddTask(TaskData{
			Title:      "New connector housing",
			Deadline:   "2026-09-15",
			Priority:   models.PriorityLow,
			Phase:      models.PhaseRFQ,
			CategoryID: "c1",
		}, "u2")
		if err != nil {
			t.Fatalf("AddTask: %v", err)
		}

		if task.Status != models.StatusTodo {
			t.Errorf("status = %s, want TODO", task.Status)
		}
		if task.ActualHours != 0 || len(task.Logs) != 0 {
			t.Errorf("new task not empty: %v hours, %d logs", task.ActualHours, len(task.Logs))
		}
		if task.UserID != "u2" {
			t.Errorf("owner = %q, want acting user u2", task.UserID)
		}

		snap := s.Snapshot()
		if snap.Tasks[0].ID != task.ID {
			t.Errorf("new task is not first in the list")
		}
	})

	t.Run("explicit assignee wins over acting user", func(t *testing.T) {
		s, _ := newTestStore(t)

		task, err := s.AddTask(TaskData{Title: "Assigned", UserID: "u3", CategoryID: "c1"}, "u1")
		if err != nil {
			t.Fatalf("AddTask: %v", err)
		}
		if task.UserID != "u3" {
			t.Errorf("owner = %q, want explicit assignee u3", task.UserID)
		}
	})
}

func TestUpdateUserUnknownIDIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	before := s.Snapshot()

	name := "Ghost"
	if err := s.UpdateUser("missing", UserUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	after := s.Snapshot()
	if len(after.Users) != len(before.Users) {
		t.Fatalf("user count changed")
	}
	for i := range after.Users {
		if after.Users[i] != before.Users[i] {
			t.Errorf("user %d changed: %+v", i, after.Users[i])
		}
	}
}

func TestRemoveUserLeavesTasksDangling(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.RemoveUser("u2"); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}

	if s.UserByID("u2") != nil {
		t.Errorf("user u2 still present")
	}
	if got := s.TaskByID("t1").UserID; got != "u2" {
		t.Errorf("task owner = %q, want dangling u2", got)
	}
}

func TestDeleteCategoryLeavesTasksDangling(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.DeleteCategory("c1"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	if s.CategoryByID("c1") != nil {
		t.Errorf("category c1 still present")
	}
	if got := s.TaskByID("t1").CategoryID; got != "c1" {
		t.Errorf("task categoryId = %q, want dangling c1", got)
	}
}

func TestAddUserAssignsIDAndPaletteColor(t *testing.T) {
	s, _ := newTestStore(t)

	user, err := s.AddUser(UserData{Name: "New Engineer", EmployeeID: "ENG-004", Role: models.RoleEngineer})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if user.ID == "" {
		t.Errorf("no id assigned")
	}

	found := false
	for _, c := range models.AvatarColors {
		if user.AvatarColor == c {
			found = true
		}
	}
	if !found {
		t.Errorf("avatar color %q not from the palette", user.AvatarColor)
	}
}

func TestPersistFailureSurfacesButStateStaysPublished(t *testing.T) {
	s, kv := newTestStore(t)

	kv.failPuts = true
	err := s.AddLog("t1", LogData{Content: "work", HoursSpent: 2})
	if err == nil {
		t.Fatalf("expected persistence error")
	}

	// The mutation is still visible in memory.
	if got := s.TaskByID("t1").ActualHours; got != 6 {
		t.Errorf("ActualHours = %v, want 6", got)
	}

	// The next successful mutation rewrites the whole collection.
	kv.failPuts = false
	if err := s.DismissTransferAlert("t1"); err != nil {
		t.Fatalf("mutation after recovery: %v", err)
	}

	reloaded, err := load(kv, fixedNow)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.TaskByID("t1").ActualHours; got != 6 {
		t.Errorf("ActualHours after reload = %v, want 6", got)
	}
}

func TestReplaceData(t *testing.T) {
	s, _ := newTestStore(t)
	catsBefore := s.Snapshot().Categories

	users := []models.User{{ID: "x1", Name: "Imported", Role: models.RoleAdmin}}
	tasks := []models.Task{{ID: "y1", UserID: "x1", Title: "Imported task", CategoryID: "c9", Status: models.StatusTodo}}

	if err := s.ReplaceData(users, tasks); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Users) != 1 || snap.Users[0].ID != "x1" {
		t.Errorf("users not replaced: %+v", snap.Users)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != "y1" {
		t.Errorf("tasks not replaced: %+v", snap.Tasks)
	}
	if len(snap.Categories) != len(catsBefore) {
		t.Errorf("categories changed by import")
	}
}

func TestSnapshotIsIsolatedFromMutations(t *testing.T) {
	s, _ := newTestStore(t)

	snap := s.Snapshot()
	logsBefore := len(snap.Tasks[0].Logs)

	if err := s.AddLog(snap.Tasks[0].ID, LogData{Content: "more", HoursSpent: 1}); err != nil {
		t.Fatalf("AddLog: %v", err)
	}

	if len(snap.Tasks[0].Logs) != logsBefore {
		t.Errorf("earlier snapshot changed by a later mutation")
	}
}

// End-to-end over the seeded data: log work on the untouched seed task.
func TestSeededLogWorkflow(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.AddLog("t2", LogData{Content: "checked", HoursSpent: 2}); err != nil {
		t.Fatalf("AddLog: %v", err)
	}

	task := s.TaskByID("t2")
	if task.Status != models.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", task.Status)
	}
	if task.ActualHours != 2 {
		t.Errorf("ActualHours = %v, want 2", task.ActualHours)
	}
	if want := models.FormatDate(testDay); task.StartDate != want {
		t.Errorf("startDate = %q, want %q", task.StartDate, want)
	}
	if len(task.Logs) != 1 {
		t.Errorf("logs length = %d, want 1", len(task.Logs))
	}
}
