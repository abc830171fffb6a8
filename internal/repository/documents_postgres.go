package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresDocumentCollection keeps schemaless documents in a JSONB column,
// keyed by a store-assigned id.
type PostgresDocumentCollection struct {
	db *sql.DB
}

func NewPostgresDocumentCollection(db *sql.DB) *PostgresDocumentCollection {
	return &PostgresDocumentCollection{db: db}
}

func (c *PostgresDocumentCollection) InsertMany(ctx context.Context, docs []map[string]interface{}) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("InsertMany begin: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return 0, fmt.Errorf("InsertMany marshal: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO batch_documents (id, doc) VALUES ($1, $2)`,
			uuid.New().String(), raw,
		)
		if err != nil {
			return 0, fmt.Errorf("InsertMany: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("InsertMany commit: %w", err)
	}
	return len(docs), nil
}

func (c *PostgresDocumentCollection) DeleteMany(ctx context.Context, ids []string) (int, error) {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM batch_documents WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return 0, fmt.Errorf("DeleteMany: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteMany rows affected: %w", err)
	}
	return int(rows), nil
}

func (c *PostgresDocumentCollection) ListDocuments(ctx context.Context) ([]map[string]interface{}, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, doc FROM batch_documents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListDocuments query: %w", err)
	}
	defer rows.Close()

	docs := []map[string]interface{}{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("ListDocuments scan: %w", err)
		}

		doc := map[string]interface{}{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("ListDocuments unmarshal: %w", err)
		}
		doc["doc_id"] = id
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
