package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutItem is a client-declared line item. Name and price are only
// honored when the checkout trust policy allows it; quantity below 1 is
// raised to 1 during input resolution.
type CheckoutItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
}

// Checkout carries either an explicit item list or, when Items is
// empty, a request to check out the user's selected cart lines.
type Checkout struct {
	UserID uuid.UUID      `json:"-"`
	Items  []CheckoutItem `json:"items"`
}
