package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/anthony-1214/shop-service/internal/domain"
)

// DynamoOrderStore writes orders as single documents and bundles the order
// Put with the per-product stock updates into one TransactWriteItems call,
// so the order and its decrements become visible together or not at all.
type DynamoOrderStore struct {
	client       *dynamodb.Client
	orderTable   string
	productTable string
	catalog      *DynamoCatalogStore
}

func NewDynamoOrderStore(client *dynamodb.Client, orderTable, productTable string) *DynamoOrderStore {
	return &DynamoOrderStore{
		client:       client,
		orderTable:   orderTable,
		productTable: productTable,
		catalog:      NewDynamoCatalogStore(client, productTable),
	}
}

func (s *DynamoOrderStore) CreateOrder(ctx context.Context, order *domain.Order, policy domain.StockPolicy) error {
	if policy == domain.StockStrict {
		return s.createStrict(ctx, order)
	}
	return s.createClamped(ctx, order)
}

// createStrict conditions every stock update on stock >= qty, so the whole
// transaction cancels when any line cannot be satisfied.
func (s *DynamoOrderStore) createStrict(ctx context.Context, order *domain.Order) error {
	items := []types.TransactWriteItem{}

	put, err := s.orderPut(order)
	if err != nil {
		return err
	}
	items = append(items, put)

	for _, line := range order.Items {
		update := expression.Set(
			expression.Name("stock"),
			expression.Minus(expression.Name("stock"), expression.Value(line.Qty)),
		).Set(
			expression.Name("updated_at"),
			expression.Value(time.Now()),
		)
		condition := expression.And(
			expression.AttributeExists(expression.Name("product_id")),
			expression.GreaterThanEqual(expression.Name("stock"), expression.Value(line.Qty)),
		)

		expr, err := expression.NewBuilder().
			WithUpdate(update).
			WithCondition(condition).
			Build()
		if err != nil {
			return err
		}

		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(s.productTable),
				Key: map[string]types.AttributeValue{
					"product_id": &types.AttributeValueMemberS{Value: line.ProductID},
				},
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				UpdateExpression:          expr.Update(),
				ConditionExpression:       expr.Condition(),
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return s.mapCancellation(ctx, order, err)
	}
	return nil
}

// createClamped reads current stocks, computes the clamped values, and
// writes them conditioned on the observed stocks. Racing checkouts cancel
// the transaction, in which case the read/compute/write cycle retries with
// fresh values.
func (s *DynamoOrderStore) createClamped(ctx context.Context, order *domain.Order) error {
	ids := make([]string, 0, len(order.Items))
	for _, line := range order.Items {
		ids = append(ids, line.ProductID)
	}

	var err error
	for attempt := 0; attempt < clampRetries; attempt++ {
		var observed map[string]domain.Product
		observed, err = s.catalog.GetMany(ctx, ids)
		if err != nil {
			return err
		}

		items := []types.TransactWriteItem{}
		put, perr := s.orderPut(order)
		if perr != nil {
			return perr
		}
		items = append(items, put)

		for _, line := range order.Items {
			product, ok := observed[line.ProductID]
			if !ok {
				return ErrProductNotFound
			}

			newStock := product.Stock - line.Qty
			if newStock < 0 {
				newStock = 0
			}

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

			expr, berr := expression.NewBuilder().
				WithUpdate(update).
				WithCondition(condition).
				Build()
			if berr != nil {
				return berr
			}

			items = append(items, types.TransactWriteItem{
				Update: &types.Update{
					TableName: aws.String(s.productTable),
					Key: map[string]types.AttributeValue{
						"product_id": &types.AttributeValueMemberS{Value: line.ProductID},
					},
					ExpressionAttributeNames:  expr.Names(),
					ExpressionAttributeValues: expr.Values(),
					UpdateExpression:          expr.Update(),
					ConditionExpression:       expr.Condition(),
				},
			})
		}

		_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items,
		})
		if err == nil {
			return nil
		}

		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			continue
		}
		return fmt.Errorf("CreateOrder transact: %w", err)
	}

	return fmt.Errorf("order %s: stock update contention: %w", order.OrderID, err)
}

func (s *DynamoOrderStore) orderPut(order *domain.Order) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(order)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal order: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.orderTable),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(order_id)"),
		},
	}, nil
}

// mapCancellation turns a strict-mode transaction cancellation into the
// store error for the first line whose condition failed.
func (s *DynamoOrderStore) mapCancellation(ctx context.Context, order *domain.Order, err error) error {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return fmt.Errorf("CreateOrder transact: %w", err)
	}

	for i, reason := range canceled.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		// Entry 0 is the order Put; line i-1 is the failed stock update.
		if i == 0 || i > len(order.Items) {
			continue
		}
		productID := order.Items[i-1].ProductID
		if _, getErr := s.catalog.GetProduct(ctx, productID); getErr != nil {
			return getErr
		}
		return ErrInsufficientStock
	}

	return fmt.Errorf("CreateOrder transact canceled: %w", err)
}

func (s *DynamoOrderStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.orderTable),
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if result.Item == nil {
		return nil, ErrOrderNotFound
	}

	var order domain.Order
	if err := attributevalue.UnmarshalMap(result.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &order, nil
}

func (s *DynamoOrderStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders := []domain.Order{}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.orderTable),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}

		var batch []domain.Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal orders: %w", err)
		}
		orders = append(orders, batch...)
	}

	// Scan returns items in key order; order history is newest first.
	sortOrdersNewestFirst(orders)
	return orders, nil
}
