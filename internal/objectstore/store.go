// Package objectstore holds the object storage collaborator the pipeline
// fetches uploaded documents from. Fetch feeds the extraction pipeline;
// Put, Delete, and Presign serve the upload flow.
package objectstore

import "time"

// Store defines the interface for bucket/key object storage operations
type Store interface {
	// Fetch retrieves an object's bytes
	Fetch(bucket, key string) ([]byte, error)

	// Put stores an object
	Put(bucket, key string, data []byte) error

	// Delete removes an object
	Delete(bucket, key string) error

	// Presign returns a time-limited URL for uploading or fetching the
	// object directly
	Presign(bucket, key string, ttl time.Duration) (string, error)
}
