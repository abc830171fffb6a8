package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const batchWriteLimit = 25

// DynamoDocumentCollection stores arbitrary schemaless documents. Each
// inserted document gets a store-assigned doc_id.
type DynamoDocumentCollection struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDocumentCollection(client *dynamodb.Client, tableName string) *DynamoDocumentCollection {
	return &DynamoDocumentCollection{
		client:    client,
		tableName: tableName,
	}
}

func (c *DynamoDocumentCollection) InsertMany(ctx context.Context, docs []map[string]interface{}) (int, error) {
	writes := make([]types.WriteRequest, 0, len(docs))
	for _, doc := range docs {
		item, err := attributevalue.MarshalMap(doc)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal document: %w", err)
		}
		item["doc_id"] = &types.AttributeValueMemberS{Value: uuid.New().String()}
		writes = append(writes, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	for start := 0; start < len(writes); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(writes) {
			end = len(writes)
		}

		request := map[string][]types.WriteRequest{
			c.tableName: writes[start:end],
		}
		for len(request) > 0 {
			result, err := c.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: request,
			})
			if err != nil {
				return 0, fmt.Errorf("failed to batch write documents: %w", err)
			}
			request = result.UnprocessedItems
		}
	}

	return len(docs), nil
}

// DeleteMany deletes per key with ReturnValues=ALL_OLD; BatchWriteItem does
// not report whether a key existed and the caller needs the exact count of
// documents actually removed.
func (c *DynamoDocumentCollection) DeleteMany(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		result, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(c.tableName),
			Key: map[string]types.AttributeValue{
				"doc_id": &types.AttributeValueMemberS{Value: id},
			},
			ReturnValues: types.ReturnValueAllOld,
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete document %s: %w", id, err)
		}
		if len(result.Attributes) > 0 {
			deleted++
		}
	}
	return deleted, nil
}

func (c *DynamoDocumentCollection) ListDocuments(ctx context.Context) ([]map[string]interface{}, error) {
	docs := []map[string]interface{}{}

	paginator := dynamodb.NewScanPaginator(c.client, &dynamodb.ScanInput{
		TableName: aws.String(c.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan documents: %w", err)
		}

		for _, item := range page.Items {
			doc := map[string]interface{}{}
			if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
				return nil, fmt.Errorf("failed to unmarshal document: %w", err)
			}
			docs = append(docs, doc)
		}
	}

	return docs, nil
}
