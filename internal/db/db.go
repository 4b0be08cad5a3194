package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"connectorsync/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// KV is the durable key-value storage backing the domain store. Each key
// holds one JSON-serialized collection.
type KV struct {
	db *sql.DB
}

// Open opens the database at the default location and runs all pending
// schema migrations.
func Open() (*KV, error) {
	if err := config.EnsureDirectories(); err != nil {
		return nil, err
	}

	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}

	return OpenPath(dbPath)
}

// OpenPath opens the database at an explicit path and runs all pending
// schema migrations.
func OpenPath(path string) (*KV, error) {
	database, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	kv := &KV{db: database}
	if err := kv.migrate(); err != nil {
		database.Close()
		return nil, err
	}

	return kv, nil
}

func (k *KV) Close() error {
	return k.db.Close()
}

// Get returns the value stored under key. The second return value reports
// whether the key exists.
func (k *KV) Get(key string) ([]byte, bool, error) {
	var data string
	err := k.db.QueryRow("SELECT data FROM collections WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(data), true, nil
}

// Put stores value under key, replacing any previous value.
func (k *KV) Put(key string, value []byte) error {
	_, err := k.db.Exec(`
		INSERT INTO collections (key, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

// migrate runs all pending schema migrations.
func (k *KV) migrate() error {
	driver, err := sqlite3.WithInstance(k.db, &sqlite3.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
