package expense

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const presignTTL = 15 * time.Minute

var (
	filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

const maxFilenameStem = 50

// sanitizeFilename cleans up a filename by removing special characters and
// truncating length, so phone-generated names make stable object keys
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = filenameCleaner.ReplaceAllString(base, "")
	base = whitespaceRuns.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > maxFilenameStem {
		base = base[:maxFilenameStem]
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// uploadKey builds the object key for an uploaded file, matching the
// receipts/<timestamp>-<name> convention the upload UI uses
func (s *Service) uploadKey(filename string) string {
	return fmt.Sprintf("receipts/%d-%s", s.timeSource.Now().UnixMilli(), sanitizeFilename(filename))
}

// ProcessUpload stores an uploaded document and runs the extraction
// pipeline on it, returning the same invocation response a storage
// notification would produce.
func (s *Service) ProcessUpload(ctx context.Context, bucket, filename string, data []byte) Response {
	key := s.uploadKey(filename)

	if err := s.store.Put(bucket, key, data); err != nil {
		return s.invalidEventResponse(fmt.Sprintf("storing upload: %v", err))
	}

	// Sanitized keys contain no '%' or '+', so they survive the event
	// key-decoding step unchanged
	return s.HandleEvent(ctx, &StorageEvent{
		Records: []StorageEventRecord{{
			S3: StorageObjectRef{
				Bucket: StorageBucketRef{Name: bucket},
				Object: ObjectRef{Key: key, Size: int64(len(data))},
			},
		}},
	})
}

// PresignUpload returns a presigned upload URL and the object key it is
// bound to
func (s *Service) PresignUpload(bucket, filename string) (string, string, error) {
	key := s.uploadKey(filename)
	url, err := s.store.Presign(bucket, key, presignTTL)
	if err != nil {
		return "", "", fmt.Errorf("presigning upload: %w", err)
	}
	return url, key, nil
}

// DeleteObject removes a stored object
func (s *Service) DeleteObject(bucket, key string) error {
	if err := s.store.Delete(bucket, key); err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}
