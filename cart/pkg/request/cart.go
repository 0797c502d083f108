package request

import "github.com/google/uuid"

type AddCartItem struct {
	UserID    uuid.UUID `json:"-"`
	ProductID uuid.UUID `json:"productId" validate:"required,uuid4"`
	Quantity  int32     `json:"quantity"`
}

type UpdateCartItem struct {
	UserID    uuid.UUID `json:"-"`
	ProductID uuid.UUID `json:"-"`
	Quantity  int32     `json:"quantity" validate:"required"`
}

type SelectCartItems struct {
	UserID     uuid.UUID   `json:"-"`
	ProductIDs []uuid.UUID `json:"productIds" validate:"required,min=1"`
	Selected   bool        `json:"selected"`
}
