// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "studycraft.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "kv.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	if err := s.Put(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Get(ctx, "a"); err != nil || string(v) != "1" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestGetPutDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "settings"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, "settings", []byte(`{"mode":"ai"}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "settings", []byte(`{"mode":"offline"}`)); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get(ctx, "settings")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != `{"mode":"offline"}` {
		t.Errorf("Get = %s, want overwritten value", v)
	}

	if err := s.Delete(ctx, "settings"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "settings"); err != nil {
		t.Fatalf("deleting a missing key: %v", err)
	}
	if _, err := s.Get(ctx, "settings"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: got %v", err)
	}
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, k := range []string{"performance/b", "performance/a", "flashcard/x", "performancex"} {
		if err := s.Put(ctx, k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.List(ctx, Key("performance", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].Key != "performance/a" || entries[1].Key != "performance/b" {
		t.Errorf("List order = %s, %s", entries[0].Key, entries[1].Key)
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("List(\"\") returned %d entries, want 4", len(all))
	}
}

func TestUpdate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	incr := func(old []byte) ([]byte, error) {
		n := 0
		if old != nil {
			var err error
			if n, err = strconv.Atoi(string(old)); err != nil {
				return nil, err
			}
		}
		return []byte(strconv.Itoa(n + 1)), nil
	}

	if err := s.Update(ctx, "counter", incr); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "counter", incr); err != nil {
		t.Fatal(err)
	}
	v, _ := s.Get(ctx, "counter")
	if string(v) != "2" {
		t.Errorf("counter = %s, want 2", v)
	}

	boom := errors.New("boom")
	err := s.Update(ctx, "counter", func([]byte) ([]byte, error) { return []byte("99"), boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}
	v, _ = s.Get(ctx, "counter")
	if string(v) != "2" {
		t.Errorf("aborted update wrote %s", v)
	}
}

func TestUpdateConcurrent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, "counter", func(old []byte) ([]byte, error) {
				n, _ := strconv.Atoi(string(old))
				return []byte(strconv.Itoa(n + 1)), nil
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	v, err := s.Get(ctx, "counter")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "20" {
		t.Errorf("counter = %s, want 20 with no lost updates", v)
	}
}
