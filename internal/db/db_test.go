package db

import (
	"path/filepath"
	"testing"
)

func openTestKV(t *testing.T, path string) *KV {
	t.Helper()
	kv, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestPutGetRoundTrip(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "test.sqlite"))

	if err := kv.Put("users", []byte(`[{"id":"u1"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, ok, err := kv.Get("users")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("key not found after Put")
	}
	if string(data) != `[{"id":"u1"}]` {
		t.Errorf("data = %s", data)
	}
}

func TestPutReplacesValue(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "test.sqlite"))

	if err := kv.Put("tasks", []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kv.Put("tasks", []byte(`[{"id":"t1"}]`)); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	data, _, err := kv.Get("tasks")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `[{"id":"t1"}]` {
		t.Errorf("data = %s, want the replaced value", data)
	}
}

func TestGetMissingKey(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "test.sqlite"))

	_, ok, err := kv.Get("nothing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Errorf("missing key reported as present")
	}
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")

	kv, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := kv.Put("categories", []byte(`[{"id":"c1"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openTestKV(t, path)
	data, ok, err := reopened.Get("categories")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if string(data) != `[{"id":"c1"}]` {
		t.Errorf("data after reopen = %s", data)
	}
}
