package objectstore

import (
	"fmt"
	"net/url"
	"time"

	"go.etcd.io/bbolt"
)

// BoltStore implements the Store interface on a single bbolt file: a
// storage bucket maps directly onto a bolt bucket. Safe for concurrent use;
// bbolt serializes writers and allows parallel readers.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore instance
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Fetch retrieves an object
func (b *BoltStore) Fetch(bucket, key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return fmt.Errorf("bucket not found: %s", bucket)
		}
		v := bkt.Get([]byte(key))
		if v == nil {
			return fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		// Copy out: bolt-owned memory is only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put stores an object, creating the bucket on first use
func (b *BoltStore) Put(bucket, key string, data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return bkt.Put([]byte(key), data)
	})
}

// Delete removes an object
func (b *BoltStore) Delete(bucket, key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return fmt.Errorf("bucket not found: %s", bucket)
		}
		return bkt.Delete([]byte(key))
	})
}

// Presign returns a path-style URL with an expiry, honored by this
// process's own HTTP surface
func (b *BoltStore) Presign(bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key are required")
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("/objects/%s/%s?expires=%d", url.PathEscape(bucket), keyEscape(key), expires), nil
}

// Close closes the underlying database
func (b *BoltStore) Close() error {
	return b.db.Close()
}
