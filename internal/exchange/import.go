package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"connectorsync/internal/models"
)

// ErrMissingCollections is returned when a parsed file lacks the users or
// tasks field.
var ErrMissingCollections = errors.New("file must contain users and tasks")

// Replacer is the store-side half of a confirmed import.
type Replacer interface {
	ReplaceData(users []models.User, tasks []models.Task) error
}

// Staged is a parsed-but-uncommitted import payload. It is resolved exactly
// once, by Commit or Discard; the live data is untouched until Commit.
type Staged struct {
	users    []models.User
	tasks    []models.Task
	resolved bool
}

func (st *Staged) UserCount() int { return len(st.users) }
func (st *Staged) TaskCount() int { return len(st.tasks) }

// Commit replaces the live users and tasks with the staged payload.
func (st *Staged) Commit(dst Replacer) error {
	if st.resolved {
		return errors.New("import already resolved")
	}
	st.resolved = true
	return dst.ReplaceData(st.users, st.tasks)
}

// Discard drops the staged payload without touching the live data.
func (st *Staged) Discard() {
	st.resolved = true
}

// Parse reads an exchange artifact and stages its content. The error is
// user-visible: either the file is not valid JSON or it lacks the required
// collections.
func Parse(r io.Reader) (*Staged, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var parsed struct {
		Users *[]models.User `json:"users"`
		Tasks *[]models.Task `json:"tasks"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("file is not valid JSON: %w", err)
	}

	if parsed.Users == nil || parsed.Tasks == nil {
		return nil, ErrMissingCollections
	}

	return &Staged{users: *parsed.Users, tasks: *parsed.Tasks}, nil
}

// ParseFile stages the artifact at path.
func ParseFile(path string) (*Staged, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
