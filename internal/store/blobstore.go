// Package store provides durable blob persistence for the catalog
// database. It has no schema awareness: the registry engine hands it an
// opaque serialized database and reads it back at startup.
package store

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	filesBucket = "files"

	// CatalogKey is the fixed logical name of the catalog database blob.
	CatalogKey = "mch_main.sqlite"
)

// BlobStore is a bbolt-backed keyed blob store. Saves are last write
// wins; bbolt serializes writers so at most one save is in flight.
type BlobStore struct {
	db *bolt.DB
}

// Open opens (or creates) the blob store file at path.
func Open(path string) (*BlobStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open blob store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(filesBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create blob bucket")
	}
	return &BlobStore{db: db}, nil
}

// Load returns the catalog blob, or (nil, nil) when nothing has been
// saved yet. Absence is not an error.
func (s *BlobStore) Load() ([]byte, error) {
	return s.LoadNamed(CatalogKey)
}

// Save stores the catalog blob under the fixed catalog key.
func (s *BlobStore) Save(blob []byte) error {
	return s.SaveNamed(CatalogKey, blob)
}

// LoadNamed returns the blob stored under key, or (nil, nil) when absent.
func (s *BlobStore) LoadNamed(key string) ([]byte, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(filesBucket)).Get([]byte(key))
		if v != nil {
			blob = make([]byte, len(v))
			copy(blob, v)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load blob %s", key)
	}
	return blob, nil
}

// SaveNamed stores blob under key, replacing any previous value.
func (s *BlobStore) SaveNamed(key string, blob []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(filesBucket)).Put([]byte(key), blob)
	})
	return errors.Wrapf(err, "save blob %s", key)
}

// Delete removes the blob stored under key. Deleting a missing key is
// a no-op.
func (s *BlobStore) Delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(filesBucket)).Delete([]byte(key))
	})
	return errors.Wrapf(err, "delete blob %s", key)
}

// Keys lists the stored blob names, in byte order.
func (s *BlobStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(filesBucket)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

func (s *BlobStore) Close() error {
	return s.db.Close()
}
