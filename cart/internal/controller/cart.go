package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopique/storefront/cart/internal/otel"
	"github.com/shopique/storefront/cart/internal/service"
	"github.com/shopique/storefront/cart/pkg/request"
	"github.com/shopique/storefront/internal/common"
	inHttp "github.com/shopique/storefront/internal/http"
	"github.com/shopique/storefront/internal/log"
	"github.com/shopique/storefront/internal/middleware"
	inOtel "github.com/shopique/storefront/internal/otel"
)

type CartController struct {
	service   *service.CartService
	validator *validator.Validate
}

func AttachCartController(
	r *mux.Router,
	service *service.CartService,
	validate *validator.Validate,
	secretKey string,
) {
	controller := CartController{service: service, validator: validate}

	router := r.PathPrefix("/v1/api/carts").Subrouter()
	router.Use(middleware.Auth(secretKey))
	router.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/items/select", controller.SelectItems).Methods(http.MethodPost)
	router.HandleFunc("/items/{productId}", controller.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/items/{productId}", controller.RemoveItem).Methods(http.MethodDelete)
}

func (ctrl *CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController FindCart").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	c = logger.WithContext(c)
	cart, err := ctrl.service.FindCart(c, userID)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding cart",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart found",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ctrl *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController AddItem").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	param := request.AddCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	param.UserID = userID
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	cart, err := ctrl.service.AddItem(c, param)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed adding cart item",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "cart item added",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ctrl *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController UpdateItem").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing productId with error=%w", err))
		return
	}

	param := request.UpdateCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	param.UserID = userID
	param.ProductID = productID

	c = logger.WithContext(c)
	cart, err := ctrl.service.UpdateItem(c, param)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed updating cart item",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart item updated",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ctrl *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController RemoveItem").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing productId with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	cart, err := ctrl.service.RemoveItem(c, userID, productID)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed removing cart item",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart item removed",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ctrl *CartController) SelectItems(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SelectItems")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController SelectItems").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	param := request.SelectCartItems{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	param.UserID = userID
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	cart, err := ctrl.service.SelectItems(c, param)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed selecting cart items",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart items selected",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ctrl *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController ClearCart").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	c = logger.WithContext(c)
	if err := ctrl.service.ClearCart(c, userID); err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed clearing cart",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart cleared",
	})
}

func writeUnauthorized(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	err = fmt.Errorf("failed getting userId from token with error=%w", err)
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": http.StatusUnauthorized,
		"message":    "invalid token",
	})
}

func writeBadRequest(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": http.StatusBadRequest,
		"message":    "invalid request",
	})
}
