// Package exchange implements the data exchange artifact: a JSON file
// carrying the users and tasks collections. Categories are not part of the
// payload; an import leaves the category list untouched.
package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"connectorsync/internal/models"
)

// Version is the payload version written on export. It is a literal marker,
// not validated on import.
const Version = "1.0"

// Payload is the exchange artifact schema.
type Payload struct {
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Users     []models.User `json:"users"`
	Tasks     []models.Task `json:"tasks"`
}

// Export writes the payload for the given collections as indented JSON.
func Export(w io.Writer, users []models.User, tasks []models.Task, now time.Time) error {
	payload := Payload{
		Version:   Version,
		Timestamp: now.Format(time.RFC3339),
		Users:     users,
		Tasks:     tasks,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// Filename returns the artifact filename for the given day.
func Filename(now time.Time) string {
	return fmt.Sprintf("connector_sync_data_%s.json", models.FormatDate(now))
}

// WriteFile exports into dir under the dated filename, creating the
// directory if needed, and returns the written path.
func WriteFile(dir string, users []models.User, tasks []models.Task, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, Filename(now))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Export(f, users, tasks, now); err != nil {
		return "", err
	}
	return path, nil
}
