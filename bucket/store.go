// Package bucket backs the interpreter's deferred SELECT/READ/WRITE/
// APPEND/DELETE opcodes with a bbolt-backed key-value store.
package bucket

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store owns the on-disk database. One Store may back any number of
// Hosts; each Host tracks its own selected bucket independently.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bucket: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("bucket: mkdir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bucket: open bbolt: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Host is a per-script BucketHost: it carries the currently selected
// bucket name, set by the SELECT opcode, and is the thing wired into
// script.New as the interpreter's BucketHost capability.
type Host struct {
	store    *Store
	isServer bool
	selected []byte
}

// NewHost builds a Host over store. isServer answers the SERVER
// opcode, distinguishing a node acting as the receiving party of a
// session from one acting as the initiator — the two differ in which
// bucket permissions apply, a decision made entirely by the embedder.
func NewHost(store *Store, isServer bool) *Host {
	return &Host{store: store, isServer: isServer}
}

func (h *Host) IsServer() bool { return h.isServer }

// Select records name as the active bucket for subsequent READ/WRITE/
// APPEND/DELETE calls, creating the backing bbolt bucket on first use.
func (h *Host) Select(name []byte) error {
	if len(name) == 0 {
		return fmt.Errorf("bucket: select: empty name")
	}
	err := h.store.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	})
	if err != nil {
		return fmt.Errorf("bucket: select: %w", err)
	}
	h.selected = append([]byte{}, name...)
	return nil
}

func (h *Host) bucketName() ([]byte, error) {
	if len(h.selected) == 0 {
		return nil, fmt.Errorf("bucket: no bucket selected")
	}
	return h.selected, nil
}

// Read looks up key in the selected bucket.
func (h *Host) Read(key []byte) ([]byte, bool, error) {
	name, err := h.bucketName()
	if err != nil {
		return nil, false, err
	}
	var out []byte
	err = h.store.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(name)
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// Write stores value under key in the selected bucket, overwriting any
// existing value.
func (h *Host) Write(key, value []byte) error {
	name, err := h.bucketName()
	if err != nil {
		return err
	}
	return h.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(name).Put(key, value)
	})
}

// Append concatenates value onto whatever is currently stored under
// key in the selected bucket (treating an absent key as empty).
func (h *Host) Append(key, value []byte) error {
	name, err := h.bucketName()
	if err != nil {
		return err
	}
	return h.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(name)
		existing := b.Get(key)
		combined := append(append([]byte{}, existing...), value...)
		return b.Put(key, combined)
	})
}

// Delete removes key from the selected bucket.
func (h *Host) Delete(key []byte) error {
	name, err := h.bucketName()
	if err != nil {
		return err
	}
	return h.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(name).Delete(key)
	})
}
