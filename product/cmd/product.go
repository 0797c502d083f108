package cmd

import (
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shopique/storefront/internal/config"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/product/internal/controller"
	"github.com/shopique/storefront/product/internal/service"
)

// Attach wires the catalog stores, service and routes onto the router.
func Attach(
	router *mux.Router,
	pool *pgxpool.Pool,
	cache *redis.Client,
	validate *validator.Validate,
	cfg *config.Config,
) *service.ProductService {
	products := repository.NewProductStore(pool)
	productCache := repository.NewProductCache(cache)
	users := repository.NewUserStore(pool)
	comments := repository.NewCommentStore(pool)
	orders := repository.NewOrderStore(pool)
	productService := service.NewProductService(products, productCache, users, comments, orders)
	controller.AttachProductController(router, productService, validate, cfg.Application.SecretKey)
	return productService
}
