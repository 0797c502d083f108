// Package graphql exposes the cart and checkout operations over a
// GraphQL endpoint backed by the same services as the REST surface.
package graphql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	cartrequest "github.com/shopique/storefront/cart/pkg/request"
	cartresponse "github.com/shopique/storefront/cart/pkg/response"
	"github.com/shopique/storefront/internal/common"
	orderrequest "github.com/shopique/storefront/order/pkg/request"
	orderresponse "github.com/shopique/storefront/order/pkg/response"
)

type CartService interface {
	FindCart(c context.Context, userID uuid.UUID) (cartresponse.Cart, error)
	AddItem(c context.Context, param cartrequest.AddCartItem) (cartresponse.Cart, error)
	UpdateItem(c context.Context, param cartrequest.UpdateCartItem) (cartresponse.Cart, error)
	RemoveItem(c context.Context, userID, productID uuid.UUID) (cartresponse.Cart, error)
	SelectItems(c context.Context, param cartrequest.SelectCartItems) (cartresponse.Cart, error)
	ClearCart(c context.Context, userID uuid.UUID) error
}

type OrderService interface {
	FindOrders(c context.Context, userID uuid.UUID) ([]orderresponse.Order, error)
	CreateOrder(c context.Context, param orderrequest.Checkout) orderresponse.CheckoutResult
}

type Resolver struct {
	carts  CartService
	orders OrderService
}

func NewResolver(carts CartService, orders OrderService) *Resolver {
	return &Resolver{carts: carts, orders: orders}
}

var cartLineType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CartLine",
	Fields: graphql.Fields{
		"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":      &graphql.Field{Type: graphql.String},
		"price":     &graphql.Field{Type: graphql.String},
		"image":     &graphql.Field{Type: graphql.String},
		"quantity":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"selected":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var cartType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Cart",
	Fields: graphql.Fields{
		"userId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"items":  &graphql.Field{Type: graphql.NewList(cartLineType)},
	},
})

var orderItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":      &graphql.Field{Type: graphql.String},
		"price":     &graphql.Field{Type: graphql.String},
		"quantity":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"total":     &graphql.Field{Type: graphql.String},
		"status":    &graphql.Field{Type: graphql.String},
		"items":     &graphql.Field{Type: graphql.NewList(orderItemType)},
		"createdAt": &graphql.Field{Type: graphql.String},
	},
})

var checkoutResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CheckoutResult",
	Fields: graphql.Fields{
		"code":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"message": &graphql.Field{Type: graphql.String},
		"order":   &graphql.Field{Type: orderType},
	},
})

var checkoutItemInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CheckoutItemInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"productId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"name":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"price":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"quantity":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
	},
})

// NewSchema wires the query and mutation roots. Every resolver reads
// the caller's identity from the request context, so the endpoint must
// sit behind the auth middleware.
func NewSchema(resolver *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cart": &graphql.Field{
				Type: cartType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					return resolver.carts.FindCart(p.Context, userID)
				},
			},
			"userOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					return resolver.orders.FindOrders(p.Context, userID)
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addToCart": &graphql.Field{
				Type: cartType,
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"quantity":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					productID, err := uuid.Parse(p.Args["productId"].(string))
					if err != nil {
						return nil, fmt.Errorf("failed parsing productId with error=%w", err)
					}
					quantity, _ := p.Args["quantity"].(int)
					return resolver.carts.AddItem(p.Context, cartrequest.AddCartItem{
						UserID:    userID,
						ProductID: productID,
						Quantity:  int32(quantity),
					})
				},
			},
			"updateCartItem": &graphql.Field{
				Type: cartType,
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"quantity":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					productID, err := uuid.Parse(p.Args["productId"].(string))
					if err != nil {
						return nil, fmt.Errorf("failed parsing productId with error=%w", err)
					}
					quantity := p.Args["quantity"].(int)
					return resolver.carts.UpdateItem(p.Context, cartrequest.UpdateCartItem{
						UserID:    userID,
						ProductID: productID,
						Quantity:  int32(quantity),
					})
				},
			},
			"removeFromCart": &graphql.Field{
				Type: cartType,
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					productID, err := uuid.Parse(p.Args["productId"].(string))
					if err != nil {
						return nil, fmt.Errorf("failed parsing productId with error=%w", err)
					}
					return resolver.carts.RemoveItem(p.Context, userID, productID)
				},
			},
			"toggleSelectItems": &graphql.Field{
				Type: cartType,
				Args: graphql.FieldConfigArgument{
					"productIds": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
					},
					"selected": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Boolean)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					rawIDs := p.Args["productIds"].([]interface{})
					productIDs := make([]uuid.UUID, 0, len(rawIDs))
					for _, raw := range rawIDs {
						id, err := uuid.Parse(raw.(string))
						if err != nil {
							return nil, fmt.Errorf("failed parsing productId with error=%w", err)
						}
						productIDs = append(productIDs, id)
					}
					return resolver.carts.SelectItems(p.Context, cartrequest.SelectCartItems{
						UserID:     userID,
						ProductIDs: productIDs,
						Selected:   p.Args["selected"].(bool),
					})
				},
			},
			"clearCart": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					if err := resolver.carts.ClearCart(p.Context, userID); err != nil {
						return false, err
					}
					return true, nil
				},
			},
			"checkout": &graphql.Field{
				Type: checkoutResultType,
				Args: graphql.FieldConfigArgument{
					"items": &graphql.ArgumentConfig{Type: graphql.NewList(checkoutItemInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, err := common.UserIdFromContext(p.Context)
					if err != nil {
						return nil, err
					}
					param := orderrequest.Checkout{UserID: userID}
					if rawItems, ok := p.Args["items"].([]interface{}); ok {
						for _, rawItem := range rawItems {
							item, err := checkoutItemFromArgs(rawItem)
							if err != nil {
								return nil, err
							}
							param.Items = append(param.Items, item)
						}
					}
					return resolver.orders.CreateOrder(p.Context, param), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func checkoutItemFromArgs(raw interface{}) (orderrequest.CheckoutItem, error) {
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return orderrequest.CheckoutItem{}, fmt.Errorf("invalid checkout item %v", raw)
	}
	productID, err := uuid.Parse(fields["productId"].(string))
	if err != nil {
		return orderrequest.CheckoutItem{}, fmt.Errorf("failed parsing productId with error=%w", err)
	}
	item := orderrequest.CheckoutItem{ProductID: productID}
	if name, ok := fields["name"].(string); ok {
		item.Name = name
	}
	if rawPrice, ok := fields["price"].(string); ok && rawPrice != "" {
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return orderrequest.CheckoutItem{}, fmt.Errorf("failed parsing price with error=%w", err)
		}
		item.Price = price
	}
	if quantity, ok := fields["quantity"].(int); ok {
		item.Quantity = int32(quantity)
	}
	return item, nil
}
