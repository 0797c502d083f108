package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InsertProduct struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int32           `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
	Image       string          `json:"image"`
}

type UpdateProduct struct {
	ID          uuid.UUID       `json:"-"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int32           `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
	Image       string          `json:"image"`
}

// FindProducts carries the catalog query. Search applies fuzzy matching
// over name, description and category; Sort is one of price_asc,
// price_desc, name or newest.
type FindProducts struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
	Sort     string
	Page     int
	PageSize int
}

type InsertComment struct {
	UserID    uuid.UUID `json:"-"`
	ProductID uuid.UUID `json:"-"`
	Content   string    `json:"content" validate:"required,max=500"`
}
