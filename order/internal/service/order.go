package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shopique/storefront/internal/constants"
	"github.com/shopique/storefront/internal/log"
	inOtel "github.com/shopique/storefront/internal/otel"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/order/internal/otel"
	"github.com/shopique/storefront/order/pkg/request"
	"github.com/shopique/storefront/order/pkg/response"
)

type ProductStore interface {
	FindByID(c context.Context, id uuid.UUID) (repository.Product, error)
	DecrementStock(c context.Context, id uuid.UUID, qty int32) (bool, error)
	IncrementStock(c context.Context, id uuid.UUID, qty int32) error
}

type CartStore interface {
	Get(c context.Context, userID uuid.UUID) ([]repository.CartLine, error)
	RemoveMany(c context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
}

type OrderStore interface {
	Create(c context.Context, order repository.Order) (repository.Order, error)
	FindByUser(c context.Context, userID uuid.UUID) ([]repository.Order, error)
}

type ProductCache interface {
	Del(c context.Context, ids ...uuid.UUID) error
}

type OrderService struct {
	products ProductStore
	carts    CartStore
	orders   OrderStore
	cache    ProductCache

	// trustClientItems keeps client-declared name/price on explicit
	// checkout items instead of re-pricing them from the catalog.
	trustClientItems bool
}

func NewOrderService(
	products ProductStore,
	carts CartStore,
	orders OrderStore,
	cache ProductCache,
	trustClientItems bool,
) *OrderService {
	return &OrderService{
		products:         products,
		carts:            carts,
		orders:           orders,
		cache:            cache,
		trustClientItems: trustClientItems,
	}
}

func (s *OrderService) FindOrders(
	c context.Context,
	userID uuid.UUID,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger.Info().Msg("finding orders")
	orders, err := s.orders.FindByUser(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders by userId=%s with error=%w", userID, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("orderCount", len(orders)).Msg("found orders")

	mapped := make([]response.Order, 0, len(orders))
	for _, order := range orders {
		mapped = append(mapped, response.NewOrder(order))
	}
	return mapped, nil
}

// CreateOrder converts an explicit item list, or the user's selected
// cart lines, into a persisted order. Validation completes for every
// line before any stock is touched; reservation is a per-product atomic
// decrement with compensation of earlier lines when a later one loses a
// race. There is no cross-product transaction, so a crash mid-loop can
// leave stock decremented without an order.
func (s *OrderService) CreateOrder(
	c context.Context,
	param request.Checkout,
) response.CheckoutResult {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrder").
		Str(log.KeyUserID, param.UserID.String()).
		Logger()

	if param.UserID == uuid.Nil {
		logger.Error().Str(log.KeyResultCode, string(response.CodeMissingUser)).Msg("missing userId")
		return response.Failure(response.CodeMissingUser, "missing userId")
	}

	logger = logger.With().Str(log.KeyProcess, "resolving order items").Logger()
	logger.Info().Msg("resolving order items")
	span.AddEvent("resolving order items")
	items, result, ok := s.resolveItems(c, param)
	if !ok {
		logger.Info().Str(log.KeyResultCode, string(result.Code)).Msg(result.Message)
		return result
	}
	if len(items) == 0 {
		logger.Info().
			Str(log.KeyResultCode, string(response.CodeNoResolvableItems)).
			Msg("no resolvable items")
		return response.Failure(response.CodeNoResolvableItems, "no items to create an order from")
	}
	logger = logger.With().Int("itemCount", len(items)).Logger()
	logger.Info().Msg("resolved order items")
	span.AddEvent("resolved order items")

	logger = logger.With().Str(log.KeyProcess, "validating stock").Logger()
	logger.Info().Msg("validating stock")
	span.AddEvent("validating stock")
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			logger.Info().
				Str(log.KeyResultCode, string(response.CodeMissingProductReference)).
				Int("itemIndex", i).
				Msg("order item has no product reference")
			return response.Failure(
				response.CodeMissingProductReference,
				"productId missing in order item",
			)
		}
		product, err := s.products.FindByID(c, item.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				logger.Info().
					Str(log.KeyResultCode, string(response.CodeProductNotFound)).
					Str(log.KeyProductID, item.ProductID.String()).
					Msg("product not found")
				return response.Failure(
					response.CodeProductNotFound,
					fmt.Sprintf("product %s not found", item.ProductID),
				)
			}
			err = fmt.Errorf("failed finding product with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Failure(response.CodeSystemError, "storage failure while validating stock")
		}
		if product.Stock < item.Quantity {
			logger.Info().
				Str(log.KeyResultCode, string(response.CodeInsufficientStock)).
				Str(log.KeyProductID, item.ProductID.String()).
				Int32("stock", product.Stock).
				Int32("requested", item.Quantity).
				Msg("insufficient stock")
			return response.Failure(
				response.CodeInsufficientStock,
				fmt.Sprintf("product %q has insufficient stock", product.Name),
			)
		}
		if !s.trustClientItems || len(param.Items) == 0 {
			items[i].Name = product.Name
			items[i].Price = product.Price
		}
	}
	logger.Info().Msg("validated stock")
	span.AddEvent("validated stock")

	logger = logger.With().Str(log.KeyProcess, "reserving stock").Logger()
	logger.Info().Msg("reserving stock")
	span.AddEvent("reserving stock")
	for i, item := range items {
		applied, err := s.products.DecrementStock(c, item.ProductID, item.Quantity)
		if err != nil || !applied {
			s.compensate(c, items[:i])
			if err != nil {
				err = fmt.Errorf("failed decrementing stock with error=%w", err)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return response.Failure(response.CodeSystemError, "storage failure while reserving stock")
			}
			logger.Info().
				Str(log.KeyResultCode, string(response.CodeInsufficientStock)).
				Str(log.KeyProductID, item.ProductID.String()).
				Msg("lost stock reservation race")
			return response.Failure(
				response.CodeInsufficientStock,
				fmt.Sprintf("product %q has insufficient stock", item.Name),
			)
		}
	}
	logger.Info().Msg("reserved stock")
	span.AddEvent("reserved stock")

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	if err := s.cache.Del(c, productIDs...); err != nil {
		logger.Warn().Err(err).Msg("failed evicting product cache after reservation")
	}

	logger = logger.With().Str(log.KeyProcess, "committing order").Logger()
	logger.Info().Msg("committing order")
	span.AddEvent("committing order")
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	order, err := s.orders.Create(c, repository.Order{
		ID:     uuid.New(),
		UserID: param.UserID,
		Total:  total,
		Status: constants.OrderStatusPaid,
		Items:  items,
	})
	if err != nil {
		// Stock already reserved; mirrors the crash-mid-loop gap, the
		// decrement is not compensated here.
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Failure(response.CodeSystemError, "storage failure while creating order")
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("committed order")
	span.AddEvent("committed order")

	logger = logger.With().Str(log.KeyProcess, "reconciling cart").Logger()
	logger.Info().Msg("reconciling cart")
	span.AddEvent("reconciling cart")
	err = s.carts.RemoveMany(c, param.UserID, productIDs)
	if err != nil {
		// The order exists; a reconciliation failure only leaves the
		// ordered lines in the cart.
		err = fmt.Errorf("failed reconciling cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("reconciled cart")
		span.AddEvent("reconciled cart")
	}

	logger.Info().Str(log.KeyResultCode, string(response.CodeOK)).Msg("checkout accepted")
	return response.Success(response.NewOrder(order))
}

// resolveItems builds the order's line-item snapshots. When ok is
// false, result carries the failure to return.
func (s *OrderService) resolveItems(
	c context.Context,
	param request.Checkout,
) (items []repository.OrderItem, result response.CheckoutResult, ok bool) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService resolveItems").
		Logger()

	if len(param.Items) > 0 {
		items = make([]repository.OrderItem, 0, len(param.Items))
		for _, item := range param.Items {
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			items = append(items, repository.OrderItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  qty,
			})
		}
		return items, response.CheckoutResult{}, true
	}

	lines, err := s.carts.Get(c, param.UserID)
	if err != nil {
		err = fmt.Errorf("failed reading cart with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, response.Failure(response.CodeSystemError, "storage failure while reading cart"), false
	}

	selected := []repository.CartLine{}
	for _, line := range lines {
		if line.Selected {
			selected = append(selected, line)
		}
	}
	if len(selected) == 0 {
		return nil, response.Failure(
			response.CodeEmptySelection,
			"no selected items in the cart",
		), false
	}

	items = make([]repository.OrderItem, 0, len(selected))
	for _, line := range selected {
		item := repository.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		product, err := s.products.FindByID(c, line.ProductID)
		if err == nil {
			item.Name = product.Name
			item.Price = product.Price
		} else if !errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed enriching cart line with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, response.Failure(
				response.CodeSystemError,
				"storage failure while resolving cart lines",
			), false
		}
		// A vanished product keeps its zero-value snapshot here; the
		// validation pass rejects it with PRODUCT_NOT_FOUND.
		items = append(items, item)
	}
	return items, response.CheckoutResult{}, true
}

// compensate restores stock for lines already reserved when a later
// line of the same checkout fails.
func (s *OrderService) compensate(c context.Context, items []repository.OrderItem) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService compensate").
		Str(log.KeyProcess, "rolling back stock reservation").
		Logger()

	logger.Info().Int("itemCount", len(items)).Msg("rolling back stock reservation")
	for _, item := range items {
		err := s.products.IncrementStock(c, item.ProductID, item.Quantity)
		if err != nil {
			err = fmt.Errorf("failed rolling back stock reservation with error=%w", err)
			logger.Error().
				Err(err).
				Str(log.KeyProductID, item.ProductID.String()).
				Msg(err.Error())
		}
	}
	logger.Info().Msg("rolled back stock reservation")
}
