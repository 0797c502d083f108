package cmd

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopique/storefront/internal/config"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/user/internal/controller"
	"github.com/shopique/storefront/user/internal/service"
)

// Attach wires the user store, service and routes onto the router.
func Attach(
	router *mux.Router,
	pool *pgxpool.Pool,
	validate *validator.Validate,
	cfg *config.Config,
) *service.UserService {
	users := repository.NewUserStore(pool)
	tokenTTL := time.Duration(cfg.Application.TokenTTL) * time.Minute
	userService := service.NewUserService(users, cfg.Application.SecretKey, tokenTTL)
	controller.AttachUserController(router, userService, validate, cfg.Application.SecretKey)
	return userService
}
