package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type MemoryDocumentCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]map[string]interface{}
}

func NewMemoryDocumentCollection() *MemoryDocumentCollection {
	return &MemoryDocumentCollection{
		docs: make(map[string]map[string]interface{}),
	}
}

func (c *MemoryDocumentCollection) InsertMany(ctx context.Context, docs []map[string]interface{}) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range docs {
		id := uuid.New().String()
		stored := make(map[string]interface{}, len(doc)+1)
		for k, v := range doc {
			stored[k] = v
		}
		stored["doc_id"] = id
		c.docs[id] = stored
		c.order = append(c.order, id)
	}
	return len(docs), nil
}

func (c *MemoryDocumentCollection) DeleteMany(ctx context.Context, ids []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := c.docs[id]; ok {
			delete(c.docs, id)
			deleted++
		}
	}

	if deleted > 0 {
		kept := c.order[:0]
		for _, id := range c.order {
			if _, ok := c.docs[id]; ok {
				kept = append(kept, id)
			}
		}
		c.order = kept
	}
	return deleted, nil
}

func (c *MemoryDocumentCollection) ListDocuments(ctx context.Context) ([]map[string]interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]map[string]interface{}, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.docs[id])
	}
	return docs, nil
}
