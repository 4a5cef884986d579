package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestBoltStore(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotations.db")
	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestBoltStore_Get_NotFound(t *testing.T) {
	s, _ := newTestBoltStore(t)

	_, err := s.Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBoltStore_SetGet(t *testing.T) {
	s, _ := newTestBoltStore(t)

	key := "alice:abc123"
	value := []byte(`{"annotation":"positive"}`)

	if err := s.Set(key, value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("expected %s, got %s", value, got)
	}
}

func TestBoltStore_Contains(t *testing.T) {
	s, _ := newTestBoltStore(t)

	if err := s.Set("alice:abc", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ok, err := s.Contains("alice:abc")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !ok {
		t.Error("expected key to exist")
	}

	ok, err = s.Contains("missing")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Error("expected key to be absent")
	}
}

func TestBoltStore_Keys(t *testing.T) {
	s, _ := newTestBoltStore(t)

	want := map[string]bool{"alice:1": true, "alice:2": true, "bob:1": true}
	for k := range want {
		if err := s.Set(k, []byte("v")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %s", k)
		}
	}
}

func TestBoltStore_DurableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.db")

	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore failed: %v", err)
	}
	if err := s.Set("alice:abc", []byte("persisted")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("alice:abc")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("expected persisted value, got %s", got)
	}
}

func TestBoltStore_Closed(t *testing.T) {
	s, _ := newTestBoltStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := s.Get("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close: expected ErrClosed, got %v", err)
	}
	if err := s.Set("k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close: expected ErrClosed, got %v", err)
	}

	// Double close is a no-op.
	if err := s.Close(); err != nil {
		t.Errorf("second Close should not error: %v", err)
	}
}
