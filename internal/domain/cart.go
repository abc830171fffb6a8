package domain

// Cart is the ephemeral per-session mapping of product id to requested
// quantity. It carries no prices and no stock knowledge; validity against
// the catalog is checked only at checkout.
type Cart struct {
	SessionID string         `json:"session_id"`
	Lines     map[string]int `json:"lines"`
}

func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Lines:     make(map[string]int),
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// TotalQty is the sum of all requested quantities, for display only.
func (c *Cart) TotalQty() int {
	total := 0
	for _, qty := range c.Lines {
		total += qty
	}
	return total
}

type CartLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type SetQtyRequest struct {
	Qty int `json:"qty"`
}

type CartResponse struct {
	SessionID string         `json:"session_id"`
	Lines     map[string]int `json:"lines"`
	TotalQty  int            `json:"total_qty"`
}
