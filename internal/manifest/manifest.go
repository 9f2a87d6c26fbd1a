// Package manifest records which header content produced which generated
// file, so unchanged headers can be skipped on the next run. Entries live in a
// single bbolt bucket keyed by the cleaned header path.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketHeaders = []byte("headers")

// Entry is the stored state of one header.
type Entry struct {
	Hash        string    `json:"hash"`
	Output      string    `json:"output"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Store is a bbolt-backed manifest.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the manifest database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("manifest dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHeaders)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the entry for header. found is false for unknown headers.
func (s *Store) Get(header string) (Entry, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketHeaders).Get(key(header)); v != nil {
			// bbolt values are only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	if data == nil {
		return Entry{}, false, nil
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("unmarshal entry for %s: %w", header, err)
	}
	return e, true, nil
}

// Put stores the entry for header, replacing any previous one.
func (s *Store) Put(header string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHeaders).Put(key(header), data)
	})
}

// Delete removes the entry for header. Unknown headers are not an error.
func (s *Store) Delete(header string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHeaders).Delete(key(header))
	})
}

// Headers lists all recorded header paths in key order.
func (s *Store) Headers() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHeaders).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

func key(header string) []byte {
	return []byte(filepath.ToSlash(filepath.Clean(header)))
}
