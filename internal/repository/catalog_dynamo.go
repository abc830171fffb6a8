package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/anthony-1214/shop-service/internal/domain"
)

const (
	batchGetLimit = 100

	// Retries for the optimistic clamp path when a concurrent decrement
	// moved the stock between our read and our conditional write.
	clampRetries = 8
)

type DynamoCatalogStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDBClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}

func NewDynamoCatalogStore(client *dynamodb.Client, tableName string) *DynamoCatalogStore {
	return &DynamoCatalogStore{
		client:    client,
		tableName: tableName,
	}
}

func (r *DynamoCatalogStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(product_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductExists
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *DynamoCatalogStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

func (r *DynamoCatalogStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}

		var batch []domain.Product
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal products: %w", err)
		}
		products = append(products, batch...)
	}

	// Scan returns items in key order; listings are newest first.
	sortProductsNewestFirst(products)
	return products, nil
}

func (r *DynamoCatalogStore) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	found := make(map[string]domain.Product, len(ids))

	for start := 0; start < len(ids); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"product_id": &types.AttributeValueMemberS{Value: id},
			})
		}

		request := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		}
		for len(request) > 0 {
			result, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get products: %w", err)
			}

			var products []domain.Product
			if err := attributevalue.UnmarshalListOfMaps(result.Responses[r.tableName], &products); err != nil {
				return nil, fmt.Errorf("failed to unmarshal products: %w", err)
			}
			for _, p := range products {
				found[p.ProductID] = p
			}

			request = result.UnprocessedKeys
		}
	}

	return found, nil
}

func (r *DynamoCatalogStore) DecrementStock(ctx context.Context, productID string, qty int, policy domain.StockPolicy) (int, int, error) {
	if policy == domain.StockStrict {
		return r.decrementStrict(ctx, productID, qty)
	}
	return r.decrementClamped(ctx, productID, qty)
}

// decrementStrict subtracts qty in a single conditional update and fails
// with ErrInsufficientStock when the condition does not hold.
func (r *DynamoCatalogStore) decrementStrict(ctx context.Context, productID string, qty int) (int, int, error) {
	update := expression.Set(
		expression.Name("stock"),
		expression.Minus(
			expression.Name("stock"),
			expression.Value(qty),
		),
	).Set(
		expression.Name("updated_at"),
		expression.Value(time.Now()),
	)

	condition := expression.And(
		expression.AttributeExists(expression.Name("product_id")),
		expression.GreaterThanEqual(
			expression.Name("stock"),
			expression.Value(qty),
		),
	)

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return 0, 0, err
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// The condition hides which clause failed; a follow-up read
			// distinguishes a missing product from insufficient stock.
			if _, getErr := r.GetProduct(ctx, productID); getErr != nil {
				return 0, 0, getErr
			}
			return 0, 0, ErrInsufficientStock
		}
		return 0, 0, err
	}

	var updated domain.Product
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return 0, 0, err
	}

	return qty, updated.Stock, nil
}

// decrementClamped reads the current stock, computes max(0, stock-qty) and
// writes it back conditioned on the stock not having moved. Concurrent
// decrements on the same product make the condition fail, in which case the
// read/compute/write cycle is retried.
func (r *DynamoCatalogStore) decrementClamped(ctx context.Context, productID string, qty int) (int, int, error) {
	for attempt := 0; attempt < clampRetries; attempt++ {
		product, err := r.GetProduct(ctx, productID)
		if err != nil {
			return 0, 0, err
		}

		deducted := qty
		if deducted > product.Stock {
			deducted = product.Stock
		}
		newStock := product.Stock - deducted

		update := expression.Set(
			expression.Name("stock"),
			expression.Value(newStock),
		).Set(
			expression.Name("updated_at"),
			expression.Value(time.Now()),
		)
		condition := expression.Equal(
			expression.Name("stock"),
			expression.Value(product.Stock),
		)

		expr, err := expression.NewBuilder().
			WithUpdate(update).
			WithCondition(condition).
			Build()
		if err != nil {
			return 0, 0, err
		}

		_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"product_id": &types.AttributeValueMemberS{Value: productID},
			},
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
		})
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				continue
			}
			return 0, 0, err
		}

		return deducted, newStock, nil
	}

	return 0, 0, fmt.Errorf("stock update contention on product %s", productID)
}
