package cmd

import (
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopique/storefront/cart/internal/controller"
	"github.com/shopique/storefront/cart/internal/service"
	"github.com/shopique/storefront/internal/config"
	"github.com/shopique/storefront/internal/repository"
)

// Attach wires the cart stores, service and routes onto the router and
// returns the service for reuse by other transports.
func Attach(
	router *mux.Router,
	pool *pgxpool.Pool,
	validate *validator.Validate,
	cfg *config.Config,
) *service.CartService {
	carts := repository.NewCartStore(pool)
	products := repository.NewProductStore(pool)
	cartService := service.NewCartService(carts, products)
	controller.AttachCartController(router, cartService, validate, cfg.Application.SecretKey)
	return cartService
}
