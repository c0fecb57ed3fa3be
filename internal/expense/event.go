package expense

import (
	"fmt"
	"net/url"
	"strings"
)

// StorageEvent is the notification sent when an object lands in the upload
// bucket. The field names mirror the S3-compatible shape the trigger emits.
// Only the first record is processed.
type StorageEvent struct {
	Records []StorageEventRecord `json:"Records"`
}

// StorageEventRecord is one object notification within a StorageEvent
type StorageEventRecord struct {
	S3 StorageObjectRef `json:"s3"`
}

// StorageObjectRef identifies one stored object
type StorageObjectRef struct {
	Bucket StorageBucketRef `json:"bucket"`
	Object ObjectRef        `json:"object"`
}

// StorageBucketRef names the containing bucket
type StorageBucketRef struct {
	Name string `json:"name"`
}

// ObjectRef carries the URL-encoded object key and size
type ObjectRef struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// decodeObjectKey reverses the URL encoding applied to object keys in
// storage notifications: '+' stands for a space, then percent-encoding is
// unescaped.
func decodeObjectKey(key string) (string, error) {
	decoded, err := url.PathUnescape(strings.ReplaceAll(key, "+", " "))
	if err != nil {
		return "", fmt.Errorf("decoding object key %q: %w", key, err)
	}
	return decoded, nil
}
