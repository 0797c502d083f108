package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/shopique/storefront/cart/internal/otel"
	"github.com/shopique/storefront/cart/pkg/request"
	"github.com/shopique/storefront/cart/pkg/response"
	"github.com/shopique/storefront/internal/log"
	inOtel "github.com/shopique/storefront/internal/otel"
	"github.com/shopique/storefront/internal/repository"
)

type CartStore interface {
	Get(c context.Context, userID uuid.UUID) ([]repository.CartLine, error)
	AddItem(c context.Context, userID, productID uuid.UUID, delta int32) error
	SetQuantity(c context.Context, userID, productID uuid.UUID, quantity int32) error
	Remove(c context.Context, userID, productID uuid.UUID) error
	SetSelected(c context.Context, userID uuid.UUID, productIDs []uuid.UUID, selected bool) error
	Clear(c context.Context, userID uuid.UUID) error
}

type ProductStore interface {
	FindByID(c context.Context, id uuid.UUID) (repository.Product, error)
}

type CartService struct {
	carts    CartStore
	products ProductStore
}

func NewCartService(carts CartStore, products ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// FindCart returns the user's cart; a user without lines gets an empty
// cart, never an error.
func (s *CartService) FindCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FindCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger.Info().Msg("finding cart")
	lines, err := s.carts.Get(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartLines, len(lines)).Msg("found cart")

	products := map[uuid.UUID]repository.Product{}
	for _, line := range lines {
		product, err := s.products.FindByID(c, line.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			err = fmt.Errorf("failed finding product for cart line with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		products[line.ProductID] = product
	}

	return response.NewCart(userID, lines, products), nil
}

// AddItem merges a quantity delta into the line for the product,
// creating the line when absent. The merged quantity never drops below
// one.
func (s *CartService) AddItem(c context.Context, param request.AddCartItem) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, param.UserID.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Int32("quantity", param.Quantity).
		Logger()

	if _, err := s.products.FindByID(c, param.ProductID); err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	delta := param.Quantity
	if delta == 0 {
		delta = 1
	}
	logger.Info().Msg("adding cart item")
	if err := s.carts.AddItem(c, param.UserID, param.ProductID, delta); err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("added cart item")

	return s.FindCart(c, param.UserID)
}

// UpdateItem sets a line's quantity; zero or negative removes the line.
func (s *CartService) UpdateItem(c context.Context, param request.UpdateCartItem) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyUserID, param.UserID.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Int32("quantity", param.Quantity).
		Logger()

	logger.Info().Msg("updating cart item")
	if err := s.carts.SetQuantity(c, param.UserID, param.ProductID, param.Quantity); err != nil {
		err = fmt.Errorf("failed updating cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("updated cart item")

	return s.FindCart(c, param.UserID)
}

func (s *CartService) RemoveItem(c context.Context, userID, productID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	logger.Info().Msg("removing cart item")
	if err := s.carts.Remove(c, userID, productID); err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("removed cart item")

	return s.FindCart(c, userID)
}

func (s *CartService) SelectItems(c context.Context, param request.SelectCartItems) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService SelectItems")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SelectItems").
		Str(log.KeyUserID, param.UserID.String()).
		Bool("selected", param.Selected).
		Logger()

	logger.Info().Msg("selecting cart items")
	if err := s.carts.SetSelected(c, param.UserID, param.ProductIDs, param.Selected); err != nil {
		err = fmt.Errorf("failed selecting cart items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("selected cart items")

	return s.FindCart(c, param.UserID)
}

func (s *CartService) ClearCart(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger.Info().Msg("clearing cart")
	if err := s.carts.Clear(c, userID); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared cart")
	return nil
}
