package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/repository"
)

func newImportFixture() (*ImportService, *repository.MemoryDocumentCollection) {
	docs := repository.NewMemoryDocumentCollection()
	return NewImportService(docs, zap.NewNop()), docs
}

func TestImportSingleObjectWrapped(t *testing.T) {
	svc, docs := newImportFixture()

	count, err := svc.Import(context.Background(), `{"name":"Tea","price":30}`)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := docs.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Tea", stored[0]["name"])
	assert.NotEmpty(t, stored[0]["doc_id"])
}

func TestImportArrayOfObjects(t *testing.T) {
	svc, docs := newImportFixture()

	count, err := svc.Import(context.Background(),
		`[{"name":"A","price":1},{"name":"B","tags":["x","y"]},{"nested":{"k":"v"}}]`)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	stored, _ := docs.ListDocuments(context.Background())
	assert.Len(t, stored, 3)
}

func TestImportMalformedJSON(t *testing.T) {
	svc, docs := newImportFixture()

	_, err := svc.Import(context.Background(), `{not json`)
	assert.ErrorIs(t, err, ErrMalformedJSON)
	// The parser's own message is carried to the caller.
	assert.NotEqual(t, ErrMalformedJSON.Error(), err.Error())

	stored, _ := docs.ListDocuments(context.Background())
	assert.Empty(t, stored)
}

func TestImportInvalidShape(t *testing.T) {
	svc, docs := newImportFixture()

	for _, raw := range []string{`5`, `"tea"`, `true`, `null`} {
		_, err := svc.Import(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidShape, "payload %s", raw)
	}

	stored, _ := docs.ListDocuments(context.Background())
	assert.Empty(t, stored)
}

func TestImportInvalidElementIsAllOrNothing(t *testing.T) {
	svc, docs := newImportFixture()

	_, err := svc.Import(context.Background(), `[{"name":"A"}, 5, {"name":"B"}]`)
	assert.ErrorIs(t, err, ErrInvalidElement)

	// No partial insert: the valid elements before and after the bad one
	// must not have landed.
	stored, _ := docs.ListDocuments(context.Background())
	assert.Empty(t, stored)
}

func TestImportEmptyArray(t *testing.T) {
	svc, _ := newImportFixture()

	count, err := svc.Import(context.Background(), `[]`)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteIgnoresInvalidIDs(t *testing.T) {
	svc, docs := newImportFixture()

	_, err := svc.Import(context.Background(), `[{"n":1},{"n":2},{"n":3}]`)
	require.NoError(t, err)

	stored, _ := docs.ListDocuments(context.Background())
	ids := []string{
		stored[0]["doc_id"].(string),
		"not-a-valid-id",
		stored[2]["doc_id"].(string),
		"", // also invalid
	}

	deleted, err := svc.Delete(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, _ := docs.ListDocuments(context.Background())
	require.Len(t, remaining, 1)
	assert.Equal(t, stored[1]["doc_id"], remaining[0]["doc_id"])
}

func TestDeleteUnknownIDsReportsZero(t *testing.T) {
	svc, _ := newImportFixture()

	// Valid uuid format but nothing stored under it.
	deleted, err := svc.Delete(context.Background(),
		[]string{"6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestDeleteAllInvalidIsNoop(t *testing.T) {
	svc, _ := newImportFixture()

	deleted, err := svc.Delete(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
