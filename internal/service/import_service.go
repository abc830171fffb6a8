package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/repository"
)

var (
	// ErrMalformedJSON wraps the parser's own message so the caller sees
	// why the payload did not parse.
	ErrMalformedJSON = errors.New("malformed JSON")
	// ErrInvalidShape means the payload parsed but was neither an object
	// nor an array.
	ErrInvalidShape = errors.New("payload must be a JSON object or array of objects")
	// ErrInvalidElement means an array element was not an object. The whole
	// batch is rejected; nothing is inserted.
	ErrInvalidElement = errors.New("array elements must be JSON objects")
)

// ImportService validates externally supplied JSON and bulk-loads it into a
// schemaless document collection. Validation is decided completely before
// any mutation is attempted: a batch either inserts in full or not at all.
type ImportService struct {
	documents repository.DocumentCollection
	logger    *zap.Logger
}

func NewImportService(documents repository.DocumentCollection, logger *zap.Logger) *ImportService {
	return &ImportService{
		documents: documents,
		logger:    logger,
	}
}

// Import parses raw text as JSON and inserts the resulting documents in one
// bulk operation, returning how many were inserted. A single object is
// treated as a one-element batch.
func (s *ImportService) Import(ctx context.Context, raw string) (int, error) {
	var payload interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	var docs []map[string]interface{}
	switch v := payload.(type) {
	case map[string]interface{}:
		docs = []map[string]interface{}{v}
	case []interface{}:
		docs = make([]map[string]interface{}, 0, len(v))
		for i, elem := range v {
			doc, ok := elem.(map[string]interface{})
			if !ok {
				return 0, fmt.Errorf("%w: element %d", ErrInvalidElement, i)
			}
			docs = append(docs, doc)
		}
	default:
		return 0, ErrInvalidShape
	}

	if len(docs) == 0 {
		return 0, nil
	}

	count, err := s.documents.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert documents: %w", err)
	}

	s.logger.Info("Batch import completed",
		zap.Int("inserted", count))
	return count, nil
}

// Delete removes the documents whose ids are valid and present. Ids that do
// not parse as identifiers are silently dropped; the returned count is the
// number of documents actually deleted, which may be less than requested.
func (s *ImportService) Delete(ctx context.Context, ids []string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			s.logger.Warn("Ignoring invalid document id",
				zap.String("doc_id", id))
			continue
		}
		valid = append(valid, id)
	}

	if len(valid) == 0 {
		return 0, nil
	}

	count, err := s.documents.DeleteMany(ctx, valid)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}

	s.logger.Info("Batch delete completed",
		zap.Int("requested", len(ids)),
		zap.Int("deleted", count))
	return count, nil
}

func (s *ImportService) ListDocuments(ctx context.Context) ([]map[string]interface{}, error) {
	return s.documents.ListDocuments(ctx)
}
