package bucket

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestHostWriteReadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	h := NewHost(store, true)
	if !h.IsServer() {
		t.Fatalf("IsServer: got false, want true")
	}
	if err := h.Select([]byte("profile")); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := h.Write([]byte("name"), []byte("alice")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok, err := h.Read([]byte("name"))
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	if string(got) != "alice" {
		t.Fatalf("Read: got %q, want %q", got, "alice")
	}
}

func TestHostReadMissingKeyReturnsNotOk(t *testing.T) {
	store := openTestStore(t)
	h := NewHost(store, false)
	if err := h.Select([]byte("profile")); err != nil {
		t.Fatalf("Select: %v", err)
	}
	_, ok, err := h.Read([]byte("absent"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ok {
		t.Fatalf("Read: got ok=true for missing key")
	}
}

func TestHostAppendConcatenates(t *testing.T) {
	store := openTestStore(t)
	h := NewHost(store, false)
	if err := h.Select([]byte("log")); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := h.Append([]byte("entries"), []byte("a")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := h.Append([]byte("entries"), []byte("b")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, ok, err := h.Read([]byte("entries"))
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	if string(got) != "ab" {
		t.Fatalf("Append: got %q, want %q", got, "ab")
	}
}

func TestHostDeleteRemovesKey(t *testing.T) {
	store := openTestStore(t)
	h := NewHost(store, false)
	if err := h.Select([]byte("profile")); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := h.Write([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := h.Delete([]byte("k")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, ok, err := h.Read([]byte("k"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ok {
		t.Fatalf("Delete: key still present")
	}
}

func TestHostOperationWithoutSelectFails(t *testing.T) {
	store := openTestStore(t)
	h := NewHost(store, false)
	if _, _, err := h.Read([]byte("k")); err == nil {
		t.Fatalf("Read without Select: expected error")
	}
	if err := h.Write([]byte("k"), []byte("v")); err == nil {
		t.Fatalf("Write without Select: expected error")
	}
}
