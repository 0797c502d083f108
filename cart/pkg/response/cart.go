package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopique/storefront/internal/repository"
)

type CartLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int32           `json:"quantity"`
	Selected  bool            `json:"selected"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type Cart struct {
	UserID uuid.UUID  `json:"userId"`
	Lines  []CartLine `json:"items"`
}

// NewCart joins raw cart lines with their product snapshots. Lines
// whose product vanished keep zero-value name and price.
func NewCart(
	userID uuid.UUID,
	lines []repository.CartLine,
	products map[uuid.UUID]repository.Product,
) Cart {
	mapped := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		item := CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Selected:  line.Selected,
			UpdatedAt: line.UpdatedAt,
		}
		if product, ok := products[line.ProductID]; ok {
			item.Name = product.Name
			item.Price = product.Price
			item.Image = product.Image
		}
		mapped = append(mapped, item)
	}
	return Cart{UserID: userID, Lines: mapped}
}
