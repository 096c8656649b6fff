package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is buying intent, not a reservation. Concurrent carts may jointly
// exceed available stock; the authoritative check happens at order approval.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type Cart struct {
	UserID    uuid.UUID  `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Line returns the index of the line for productID, or -1.
func (c *Cart) Line(productID uuid.UUID) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddLineRequest adds quantity of a product to the cart; if the product is
// already present the quantities are merged.
type AddLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type SetLineQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}
