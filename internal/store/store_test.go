package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}
	if err := kv.Set(ctx, "a", "one"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "a", "two"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := kv.Get(ctx, "a")
	if err != nil || got != "two" {
		t.Fatalf("Get(a) = %q, %v; want two", got, err)
	}
	if err := kv.Set(ctx, "b", "three"); err != nil {
		t.Fatalf("Set b: %v", err)
	}
	keys, err := kv.Keys(ctx)
	if err != nil || len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Keys = %v, %v; want [a b]", keys, err)
	}
	if err := kv.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete b: %v", err)
	}
	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
	if keys, err := kv.Keys(ctx); err != nil || len(keys) != 0 {
		t.Fatalf("Keys after delete = %v, %v", keys, err)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "store.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	exerciseKV(t, s)
}

func TestSQLiteValuesSealedAtRest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if err := s.Set(ctx, "tfr_access_token", "plain-secret-value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = s.Close()

	info, err := os.Stat(filepath.Join(dir, "key"))
	if err != nil {
		t.Fatalf("key file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("key mode = %v, want 0600", info.Mode().Perm())
	}

	for _, name := range []string{"store.db", "store.db-wal"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if bytes.Contains(raw, []byte("plain-secret-value")) {
			t.Fatalf("%s contains the plaintext value", name)
		}
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Get(ctx, "tfr_access_token")
	if err != nil || got != "plain-secret-value" {
		t.Fatalf("Get after reopen = %q, %v", got, err)
	}
	keys, err := reopened.Keys(ctx)
	if err != nil || len(keys) != 1 {
		t.Fatalf("Keys = %v, %v", keys, err)
	}
}

func TestSealerRejectsForeignKey(t *testing.T) {
	a, _ := NewSealer(bytes.Repeat([]byte{1}, keySize))
	b, _ := NewSealer(bytes.Repeat([]byte{2}, keySize))

	sealed, err := a.Seal([]byte("token"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Open(sealed); !errors.Is(err, ErrSealedValue) {
		t.Fatalf("Open with wrong key err = %v, want ErrSealedValue", err)
	}
	if _, err := a.Open([]byte("short")); !errors.Is(err, ErrSealedValue) {
		t.Fatalf("Open short err = %v, want ErrSealedValue", err)
	}
	if _, err := NewSealer([]byte("too short")); err == nil {
		t.Fatal("expected error for short key")
	}
}
