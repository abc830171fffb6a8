package events

import (
	"time"

	"github.com/anthony-1214/shop-service/internal/domain"
)

// OrderCreatedEvent is published after a checkout commits. Downstream
// consumers (fulfillment, mail) must treat it as a notification: the stock
// decrement already happened inside the checkout's atomic unit.
type OrderCreatedEvent struct {
	EventID       string           `json:"event_id"`
	OrderID       string           `json:"order_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	Total         float64          `json:"total"`
	Items         []OrderEventItem `json:"items"`
	Timestamp     time.Time        `json:"timestamp"`
}

type OrderEventItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

func newOrderCreatedEvent(eventID string, order *domain.Order) OrderCreatedEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderEventItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return OrderCreatedEvent{
		EventID:       eventID,
		OrderID:       order.OrderID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Total:         order.Total,
		Items:         items,
		Timestamp:     time.Now(),
	}
}
