package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	cartcmd "github.com/shopique/storefront/cart/cmd"
	graphqlapi "github.com/shopique/storefront/graphql"
	"github.com/shopique/storefront/internal/config"
	"github.com/shopique/storefront/internal/constants"
	"github.com/shopique/storefront/internal/infra"
	"github.com/shopique/storefront/internal/log"
	"github.com/shopique/storefront/internal/middleware"
	"github.com/shopique/storefront/internal/otel"
	ordercmd "github.com/shopique/storefront/order/cmd"
	productcmd "github.com/shopique/storefront/product/cmd"
	usercmd "github.com/shopique/storefront/user/cmd"
)

// 100 requests per 15 minutes per client IP.
const (
	rateLimitWindow = 15 * time.Minute
	rateLimitCount  = 100
)

func runServer(c context.Context) {
	// The file logger needs the config, so config loading reports
	// through a plain stderr logger.
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Get(bootLogger.WithContext(c), constants.AppMain)

	logger := log.Get(
		fmt.Sprintf("%s/%s.log", cfg.Application.LogDir, constants.AppMain),
		cfg.Application,
	).
		With().
		Str(log.KeyAppName, constants.AppMain).
		Str(log.KeyTag, "main runServer").
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppMain, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	pool := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		pool.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppMain),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.RateLimit(
			rate.Every(rateLimitWindow/rateLimitCount),
			rateLimitCount,
		),
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	validate := validator.New(validator.WithRequiredStructEnabled())
	usercmd.Attach(router, pool, validate, cfg)
	productcmd.Attach(router, pool, cache, validate, cfg)
	cartService := cartcmd.Attach(router, pool, validate, cfg)
	orderService := ordercmd.Attach(router, pool, cache, cfg)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing graphql").Logger()
	logger.Info().Msg("initializing graphql")
	schema, err := graphqlapi.NewSchema(graphqlapi.NewResolver(cartService, orderService))
	if err != nil {
		err = fmt.Errorf("failed initializing graphql schema with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	graphqlRoute := router.PathPrefix("/v1/graphql").Subrouter()
	graphqlRoute.Use(middleware.Auth(cfg.Application.SecretKey))
	graphqlRoute.Handle("", graphqlapi.NewHandler(schema)).Methods(http.MethodPost)
	logger.Info().Msg("initialized graphql")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      otelhttp.NewHandler(router, constants.AppMain),
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interruption signal shutting down")
	if err := httpServer.Shutdown(context.Background()); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
