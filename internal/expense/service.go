package expense

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/receipted/receipted/internal/extraction"
	"github.com/receipted/receipted/internal/objectstore"
)

// supportedFormats is the extension allow-list checked before any engine
// call
var supportedFormats = []string{".jpg", ".jpeg", ".png", ".pdf"}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs the extraction pipeline: fetch the stored object, hand it to
// the engine, normalize the result. One invocation per object, strictly
// sequential, no shared state across invocations.
type Service struct {
	store      objectstore.Store
	engine     extraction.Engine
	timeSource TimeSource
}

// NewService creates a new Service with the default time source
func NewService(store objectstore.Store, engine extraction.Engine) *Service {
	return &Service{
		store:      store,
		engine:     engine,
		timeSource: &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with a custom time source for
// testing
func NewServiceWithDeps(store objectstore.Store, engine extraction.Engine, timeSource TimeSource) *Service {
	return &Service{
		store:      store,
		engine:     engine,
		timeSource: timeSource,
	}
}

// contentTypeForKey derives the MIME type the engine should be told about
// from the object key's extension
func contentTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Extract runs the adapter and normalizer for one stored object and returns
// either a fully populated record or a classified failure; there is no
// partial-success state. The engine is called exactly once, with no retry
// and no timeout beyond whatever deadline ctx carries.
func (s *Service) Extract(ctx context.Context, bucket, key string) (*Record, *PipelineError) {
	ext := strings.ToLower(filepath.Ext(key))
	if !slices.Contains(supportedFormats, ext) {
		return nil, &PipelineError{
			Kind:    KindUnsupportedFormat,
			Message: fmt.Sprintf("unsupported file format: %s. Supported formats: %s", ext, strings.Join(supportedFormats, ", ")),
		}
	}

	data, err := s.store.Fetch(bucket, key)
	if err != nil {
		return nil, &PipelineError{
			Kind:    KindEngineError,
			Message: err.Error(),
			Details: fmt.Sprintf("fetching %s/%s: %v", bucket, key, err),
		}
	}

	resp, err := s.engine.AnalyzeExpense(ctx, data, contentTypeForKey(key))
	if err != nil {
		return nil, &PipelineError{
			Kind:    KindEngineError,
			Message: err.Error(),
			Details: fmt.Sprintf("analyzing %s/%s: %v", bucket, key, err),
		}
	}

	if len(resp.ExpenseDocuments) == 0 {
		return nil, &PipelineError{
			Kind:    KindNoExpenseData,
			Message: "no expense data found in document",
		}
	}

	// Only the first detected expense document is processed
	record := Normalize(&resp.ExpenseDocuments[0])
	return &record, nil
}

// HandleEvent processes one storage notification end to end and builds the
// invocation response. Every failure inside the pipeline is caught here and
// converted into a structured success:false body; only an event missing its
// required structure produces the 500-class response.
func (s *Service) HandleEvent(ctx context.Context, event *StorageEvent) Response {
	if event == nil || len(event.Records) == 0 || event.Records[0].S3.Bucket.Name == "" {
		return s.invalidEventResponse("invalid storage event structure")
	}

	ref := event.Records[0].S3
	key, err := decodeObjectKey(ref.Object.Key)
	if err != nil {
		return s.invalidEventResponse(err.Error())
	}

	file := &FileInfo{
		Bucket: ref.Bucket.Name,
		Key:    key,
		Size:   ref.Object.Size,
	}

	slog.Info("Processing receipt", "bucket", file.Bucket, "key", file.Key, "size", file.Size)

	record, perr := s.Extract(ctx, file.Bucket, key)
	if perr != nil {
		slog.Error("Receipt extraction failed", "bucket", file.Bucket, "key", file.Key, "kind", perr.Kind, "error", perr.Message)
		return Response{
			StatusCode: 200,
			Headers:    responseHeaders(),
			Body: ResponseBody{
				Message:   "Receipt processing failed",
				File:      file,
				Timestamp: s.timeSource.Now().UTC().Format(time.RFC3339),
				Success:   false,
				Error:     perr.Message,
				Details:   perr.Details,
			},
		}
	}

	slog.Info("Receipt processed", "bucket", file.Bucket, "key", file.Key, "merchant", record.Merchant, "total", record.Total, "category", record.Category)

	return Response{
		StatusCode: 200,
		Headers:    responseHeaders(),
		Body: ResponseBody{
			Message:   "Receipt processed successfully",
			File:      file,
			Timestamp: s.timeSource.Now().UTC().Format(time.RFC3339),
			Success:   true,
			Data:      record,
		},
	}
}

func (s *Service) invalidEventResponse(message string) Response {
	return Response{
		StatusCode: 500,
		Headers:    responseHeaders(),
		Body: ResponseBody{
			Message:   "Error processing receipt",
			Timestamp: s.timeSource.Now().UTC().Format(time.RFC3339),
			Success:   false,
			Error:     message,
		},
	}
}
