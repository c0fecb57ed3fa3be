package objectstore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore implements the Store interface on the local filesystem: a
// bucket is a directory under the base path, a key is a relative file path
// within it.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a new LocalStore instance
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStore{
		basePath: basePath,
	}, nil
}

// objectPath resolves bucket/key to a path under basePath, rejecting keys
// that would escape it
func (l *LocalStore) objectPath(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key are required")
	}
	path := filepath.Join(l.basePath, bucket, filepath.FromSlash(key))
	root := filepath.Join(l.basePath, bucket)
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return path, nil
}

// Fetch retrieves an object from local storage
func (l *LocalStore) Fetch(bucket, key string) ([]byte, error) {
	path, err := l.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return data, nil
}

// Put stores an object in local storage
func (l *LocalStore) Put(bucket, key string, data []byte) error {
	path, err := l.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing object: %w", err)
	}
	return nil
}

// Delete removes an object from local storage
func (l *LocalStore) Delete(bucket, key string) error {
	path, err := l.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Presign returns a path-style URL with an expiry. Local storage has no
// signing authority, so the URL is only honored by this process's own HTTP
// surface.
func (l *LocalStore) Presign(bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key are required")
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("/objects/%s/%s?expires=%d", url.PathEscape(bucket), keyEscape(key), expires), nil
}

// keyEscape percent-encodes each key segment but keeps the '/' separators
func keyEscape(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
