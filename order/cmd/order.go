package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shopique/storefront/internal/config"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/order/internal/controller"
	"github.com/shopique/storefront/order/internal/service"
)

// Attach wires the order stores, checkout service and routes onto the
// router and returns the service for reuse by other transports.
func Attach(
	router *mux.Router,
	pool *pgxpool.Pool,
	cache *redis.Client,
	cfg *config.Config,
) *service.OrderService {
	products := repository.NewProductStore(pool)
	carts := repository.NewCartStore(pool)
	orders := repository.NewOrderStore(pool)
	productCache := repository.NewProductCache(cache)
	orderService := service.NewOrderService(
		products,
		carts,
		orders,
		productCache,
		cfg.Checkout.TrustClientItems,
	)
	controller.AttachOrderController(router, orderService, cfg.Application.SecretKey)
	return orderService
}
