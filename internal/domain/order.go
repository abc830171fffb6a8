package domain

import (
	"math"
	"time"
)

// OrderItem snapshots name and unit price at purchase time; later catalog
// changes never affect a persisted order.
type OrderItem struct {
	ProductID string  `dynamodbav:"product_id" json:"product_id"`
	Name      string  `dynamodbav:"name"       json:"name"`
	Qty       int     `dynamodbav:"qty"        json:"qty"`
	UnitPrice float64 `dynamodbav:"unit_price" json:"unit_price"`
	Subtotal  float64 `dynamodbav:"subtotal"   json:"subtotal"`
}

// Order is the immutable record of a completed purchase. Only the checkout
// service constructs orders; nothing mutates or deletes them afterwards.
type Order struct {
	OrderID       string      `dynamodbav:"order_id"       json:"order_id"`
	CustomerName  string      `dynamodbav:"customer_name"  json:"customer_name"`
	CustomerEmail string      `dynamodbav:"customer_email" json:"customer_email"`
	Total         float64     `dynamodbav:"total"          json:"total"`
	Items         []OrderItem `dynamodbav:"items"          json:"items"`
	CreatedAt     time.Time   `dynamodbav:"created_at"     json:"created_at"`
}

// MissingLinePolicy controls how checkout treats cart lines whose product
// no longer exists in the catalog.
type MissingLinePolicy int

const (
	// MissingSkip drops unresolvable lines and checks out the rest.
	MissingSkip MissingLinePolicy = iota
	// MissingFail aborts the whole checkout on the first unresolvable line.
	MissingFail
)

type CheckoutRequest struct {
	CustomerName  string `json:"customer_name"  binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
}

type CheckoutResponse struct {
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
}

// RoundMoney normalizes an amount to 2-decimal precision. Prices are stored
// with two decimals; rounding here keeps subtotals and totals on the same
// grid after multiplication.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
