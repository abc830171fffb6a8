package domain

import (
	"time"
)

// DefaultSize is assigned when a product is created without an explicit size.
const DefaultSize = "F"

type Product struct {
	ProductID string    `dynamodbav:"product_id" json:"product_id"`
	Name      string    `dynamodbav:"name"       json:"name"`
	Price     float64   `dynamodbav:"price"      json:"price"`
	Size      string    `dynamodbav:"size"       json:"size"`
	Stock     int       `dynamodbav:"stock"      json:"stock"`
	ImageURL  string    `dynamodbav:"image_url"  json:"image_url,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

type CreateProductRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name"       binding:"required"`
	Price     float64 `json:"price"      binding:"min=0"`
	Size      string  `json:"size"`
	Stock     int     `json:"stock"      binding:"min=0"`
	ImageURL  string  `json:"image_url"`
}

type ProductResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Stock     int     `json:"stock"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// StockPolicy controls what happens when a decrement asks for more units
// than a product has left.
type StockPolicy int

const (
	// StockClamp lowers stock by as much as is available, never below zero.
	StockClamp StockPolicy = iota
	// StockStrict rejects the decrement when stock is insufficient.
	StockStrict
)

type DeductStockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type StockDeductionResponse struct {
	ProductID     string `json:"product_id"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	Deducted      int    `json:"deducted"`
}
