package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopique/storefront/internal/repository"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func NewProduct(p repository.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProducts(products []repository.Product) []Product {
	mapped := make([]Product, 0, len(products))
	for _, product := range products {
		mapped = append(mapped, NewProduct(product))
	}
	return mapped
}

// ProductPage is a sliced catalog page plus the total match count
// before pagination.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewComment(cm repository.Comment) Comment {
	return Comment{
		ID:        cm.ID,
		UserID:    cm.UserID,
		UserName:  cm.UserName,
		UserEmail: cm.UserEmail,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
	}
}

// ProductCounts aggregates a product's engagement: how many distinct
// users bought it and how many commented on it.
type ProductCounts struct {
	ProductID  uuid.UUID `json:"productId"`
	Buyers     int64     `json:"buyers"`
	Commenters int64     `json:"commenters"`
}
