package store

import (
	"encoding/json"
	"fmt"
	"time"

	"connectorsync/internal/models"
)

// Storage keys for the persisted collections.
const (
	keyUsers         = "users"
	keyTasks         = "tasks"
	keyCategories    = "categories"
	keySchemaVersion = "schema_version"
)

// KV is the durable storage the store persists into. Writes replace the
// whole collection under a key.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Store owns the three domain collections. Every mutation builds a new
// collection, publishes it, then writes it through to storage. A failed
// write is returned to the caller as a warning; the in-memory state stays
// published and the next successful mutation rewrites the collection.
type Store struct {
	kv  KV
	now func() time.Time

	users      []models.User
	categories []models.Category
	tasks      []models.Task
}

// Snapshot is a point-in-time copy of the collections handed to consumers.
type Snapshot struct {
	Users      []models.User
	Categories []models.Category
	Tasks      []models.Task
}

// Load reads the collections from storage, running data migrations as
// needed, or seeds initial data on first use.
func Load(kv KV) (*Store, error) {
	return load(kv, time.Now)
}

func load(kv KV, now func() time.Time) (*Store, error) {
	s := &Store{kv: kv, now: now}

	usersRaw, haveUsers, err := kv.Get(keyUsers)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	tasksRaw, haveTasks, err := kv.Get(keyTasks)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	catsRaw, haveCats, err := kv.Get(keyCategories)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	if !haveUsers && !haveTasks && !haveCats {
		s.users = seedUsers()
		s.categories = seedCategories()
		s.tasks = seedTasks(now())
		if err := s.persistAll(); err != nil {
			return nil, err
		}
		return s, nil
	}

	version, err := s.storedVersion()
	if err != nil {
		return nil, err
	}

	p := &payload{
		users:      usersRaw,
		tasks:      tasksRaw,
		categories: catsRaw,
	}
	if err := runDataMigrations(p, version); err != nil {
		return nil, err
	}

	if haveUsers {
		if err := json.Unmarshal(p.users, &s.users); err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
	} else {
		s.users = seedUsers()
	}
	if haveCats {
		if err := json.Unmarshal(p.categories, &s.categories); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
	} else {
		s.categories = seedCategories()
	}
	if haveTasks {
		if err := json.Unmarshal(p.tasks, &s.tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
	} else {
		s.tasks = seedTasks(now())
	}

	// Write back so migrated data is stored at the current version.
	if err := s.persistAll(); err != nil {
		return nil, err
	}

	return s, nil
}

// storedVersion reads the schema version of the persisted payload.
// Payloads written before versioning carry no key and count as version 1.
func (s *Store) storedVersion() (int, error) {
	raw, ok, err := s.kv.Get(keySchemaVersion)
	if err != nil {
		return 0, fmt.Errorf("load schema version: %w", err)
	}
	if !ok {
		return 1, nil
	}
	var version int
	if err := json.Unmarshal(raw, &version); err != nil {
		return 0, fmt.Errorf("decode schema version: %w", err)
	}
	return version, nil
}

// Snapshot returns a copy of the current collections.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Users:      make([]models.User, len(s.users)),
		Categories: make([]models.Category, len(s.categories)),
		Tasks:      make([]models.Task, len(s.tasks)),
	}
	copy(snap.Users, s.users)
	copy(snap.Categories, s.categories)
	copy(snap.Tasks, s.tasks)
	return snap
}

// UserByID returns the user with the given id, or nil if absent.
func (s *Store) UserByID(id string) *models.User {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u
		}
	}
	return nil
}

// TaskByID returns the task with the given id, or nil if absent.
func (s *Store) TaskByID(id string) *models.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			t := s.tasks[i].Clone()
			return &t
		}
	}
	return nil
}

// CategoryByID returns the category with the given id, or nil if absent.
// A nil result is normal after a category deletion left tasks dangling.
func (s *Store) CategoryByID(id string) *models.Category {
	for i := range s.categories {
		if s.categories[i].ID == id {
			c := s.categories[i]
			return &c
		}
	}
	return nil
}

// UserData carries the caller-supplied fields of a new user.
type UserData struct {
	Name       string
	EmployeeID string
	Role       models.Role
}

// AddUser appends a new user with a fresh id and a palette color.
func (s *Store) AddUser(data UserData) (models.User, error) {
	user := models.User{
		ID:          generateID(),
		Name:        data.Name,
		EmployeeID:  data.EmployeeID,
		Role:        data.Role,
		AvatarColor: randomColor(),
	}

	users := make([]models.User, 0, len(s.users)+1)
	users = append(users, s.users...)
	users = append(users, user)
	s.users = users

	return user, s.persistUsers()
}

// UserUpdate carries the fields of a user update. Nil fields are left
// unchanged.
type UserUpdate struct {
	Name       *string
	EmployeeID *string
	Role       *models.Role
}

// UpdateUser merges the update into the user. An unknown id is a no-op.
func (s *Store) UpdateUser(id string, upd UserUpdate) error {
	users := make([]models.User, len(s.users))
	copy(users, s.users)
	for i := range users {
		if users[i].ID != id {
			continue
		}
		if upd.Name != nil {
			users[i].Name = *upd.Name
		}
		if upd.EmployeeID != nil {
			users[i].EmployeeID = *upd.EmployeeID
		}
		if upd.Role != nil {
			users[i].Role = *upd.Role
		}
	}
	s.users = users
	return s.persistUsers()
}

// RemoveUser deletes the user. Tasks owned by the user are left in place
// with a dangling owner reference.
func (s *Store) RemoveUser(id string) error {
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	s.users = users
	return s.persistUsers()
}

// AddCategory appends a new category with a fresh id.
func (s *Store) AddCategory(name string) (models.Category, error) {
	cat := models.Category{ID: generateID(), Name: name}

	categories := make([]models.Category, 0, len(s.categories)+1)
	categories = append(categories, s.categories...)
	categories = append(categories, cat)
	s.categories = categories

	return cat, s.persistCategories()
}

// DeleteCategory removes the category. Tasks referencing it keep their
// now-dangling categoryId.
func (s *Store) DeleteCategory(id string) error {
	categories := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.ID != id {
			categories = append(categories, c)
		}
	}
	s.categories = categories
	return s.persistCategories()
}

// TaskData carries the caller-supplied fields of a new task.
type TaskData struct {
	UserID         string // optional explicit assignee
	Title          string
	Description    string
	ReceiveDate    string
	Deadline       string
	EstimatedHours float64
	Priority       models.TaskPriority
	Phase          models.ProjectPhase
	CategoryID     string
}

// AddTask prepends a new task. Status starts at TODO with an empty log
// sequence; the owner is the explicit assignee if given, else the acting
// user.
func (s *Store) AddTask(data TaskData, actingUserID string) (models.Task, error) {
	userID := data.UserID
	if userID == "" {
		userID = actingUserID
	}

	task := models.Task{
		ID:             generateID(),
		UserID:         userID,
		Title:          data.Title,
		Description:    data.Description,
		ReceiveDate:    data.ReceiveDate,
		Deadline:       data.Deadline,
		EstimatedHours: data.EstimatedHours,
		ActualHours:    0,
		Status:         models.StatusTodo,
		Logs:           []models.TaskLog{},
		Priority:       data.Priority,
		Phase:          data.Phase,
		CategoryID:     data.CategoryID,
	}

	tasks := make([]models.Task, 0, len(s.tasks)+1)
	tasks = append(tasks, task)
	tasks = append(tasks, s.tasks...)
	s.tasks = tasks

	return task, s.persistTasks()
}

// TaskUpdate carries the fields of a task update. Nil fields are left
// unchanged. Cross-field consistency is the caller's responsibility.
type TaskUpdate struct {
	UserID         *string
	Title          *string
	Description    *string
	ReceiveDate    *string
	Deadline       *string
	StartDate      *string
	EstimatedHours *float64
	Status         *models.TaskStatus
	CompletedDate  *string
	Priority       *models.TaskPriority
	Phase          *models.ProjectPhase
	CategoryID     *string
}

// UpdateTask merges the update into the task. An unknown id is a no-op.
func (s *Store) UpdateTask(id string, upd TaskUpdate) error {
	return s.replaceTask(id, func(t *models.Task) {
		if upd.UserID != nil {
			t.UserID = *upd.UserID
		}
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.ReceiveDate != nil {
			t.ReceiveDate = *upd.ReceiveDate
		}
		if upd.Deadline != nil {
			t.Deadline = *upd.Deadline
		}
		if upd.StartDate != nil {
			t.StartDate = *upd.StartDate
		}
		if upd.EstimatedHours != nil {
			t.EstimatedHours = *upd.EstimatedHours
		}
		if upd.Status != nil {
			t.Status = *upd.Status
		}
		if upd.CompletedDate != nil {
			t.CompletedDate = *upd.CompletedDate
		}
		if upd.Priority != nil {
			t.Priority = *upd.Priority
		}
		if upd.Phase != nil {
			t.Phase = *upd.Phase
		}
		if upd.CategoryID != nil {
			t.CategoryID = *upd.CategoryID
		}
	})
}

// DeleteTask removes the task. An unknown id is a no-op.
func (s *Store) DeleteTask(id string) error {
	tasks := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	s.tasks = tasks
	return s.persistTasks()
}

// TransferTask reassigns the task to newUserID and marks fromUserID as the
// previous owner in one step. Status is not touched.
func (s *Store) TransferTask(id, newUserID, fromUserID string) error {
	return s.replaceTask(id, func(t *models.Task) {
		t.UserID = newUserID
		t.TransferredFrom = fromUserID
	})
}

// DismissTransferAlert clears the transfer marker, leaving the owner
// unchanged. Dismissing an already-clear marker is a no-op.
func (s *Store) DismissTransferAlert(id string) error {
	return s.replaceTask(id, func(t *models.Task) {
		t.TransferredFrom = ""
	})
}

// LogData carries the caller-supplied fields of a new work log entry.
type LogData struct {
	Content    string
	HoursSpent float64
}

// AddLog prepends a work entry dated today and applies the side effects of
// logging work: actual hours grow by the entry's hours, status moves to
// IN_PROGRESS regardless of where it was (a DONE task reopens), and the
// start date is set if the task had none.
func (s *Store) AddLog(taskID string, data LogData) error {
	today := models.FormatDate(s.now())
	entry := models.TaskLog{
		ID:         generateID(),
		Date:       today,
		Content:    data.Content,
		HoursSpent: data.HoursSpent,
	}

	return s.replaceTask(taskID, func(t *models.Task) {
		logs := make([]models.TaskLog, 0, len(t.Logs)+1)
		logs = append(logs, entry)
		logs = append(logs, t.Logs...)
		t.Logs = logs
		t.ActualHours += data.HoursSpent
		t.Status = models.StatusInProgress
		if t.StartDate == "" {
			t.StartDate = today
		}
	})
}

// ReplaceData overwrites the users and tasks collections wholesale. This
// backs a confirmed import; categories are not part of the exchange payload
// and stay as they are.
func (s *Store) ReplaceData(users []models.User, tasks []models.Task) error {
	s.users = append([]models.User(nil), users...)
	s.tasks = append([]models.Task(nil), tasks...)
	if err := s.persistUsers(); err != nil {
		return err
	}
	return s.persistTasks()
}

// replaceTask publishes a new task list with fn applied to the matching
// task. An unknown id leaves the list unchanged.
func (s *Store) replaceTask(id string, fn func(*models.Task)) error {
	tasks := make([]models.Task, len(s.tasks))
	copy(tasks, s.tasks)
	for i := range tasks {
		if tasks[i].ID == id {
			t := tasks[i].Clone()
			fn(&t)
			tasks[i] = t
		}
	}
	s.tasks = tasks
	return s.persistTasks()
}

func (s *Store) persistUsers() error {
	return s.put(keyUsers, s.users)
}

func (s *Store) persistTasks() error {
	return s.put(keyTasks, s.tasks)
}

func (s *Store) persistCategories() error {
	return s.put(keyCategories, s.categories)
}

func (s *Store) persistAll() error {
	if err := s.persistUsers(); err != nil {
		return err
	}
	if err := s.persistTasks(); err != nil {
		return err
	}
	if err := s.persistCategories(); err != nil {
		return err
	}
	return s.put(keySchemaVersion, schemaVersion)
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Put(key, data)
}
