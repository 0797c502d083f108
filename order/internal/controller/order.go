package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/shopique/storefront/internal/common"
	inHttp "github.com/shopique/storefront/internal/http"
	"github.com/shopique/storefront/internal/log"
	"github.com/shopique/storefront/internal/middleware"
	inOtel "github.com/shopique/storefront/internal/otel"
	"github.com/shopique/storefront/order/internal/otel"
	"github.com/shopique/storefront/order/internal/service"
	"github.com/shopique/storefront/order/pkg/request"
	"github.com/shopique/storefront/order/pkg/response"
)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(r *mux.Router, service *service.OrderService, secretKey string) {
	controller := OrderController{service: service}

	router := r.PathPrefix("/v1/api/orders").Subrouter()
	router.Use(middleware.Auth(secretKey))
	router.HandleFunc("", controller.FindOrders).Methods(http.MethodGet)
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
}

func (ctrl *OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrders").
		Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    "invalid token",
		})
		return
	}

	c = logger.WithContext(c)
	orders, err := ctrl.service.FindOrders(c, userID)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding orders",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "orders found",
		"data":       map[string]interface{}{"orders": orders},
	})
}

func (ctrl *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Checkout").
		Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    "invalid token",
		})
		return
	}

	param := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "invalid request body",
		})
		return
	}
	param.UserID = userID

	c = logger.WithContext(c)
	result := ctrl.service.CreateOrder(c, param)
	statusCode := statusForCode(result.Code)
	body := map[string]interface{}{
		"status":     statusWord(result.Code),
		"statusCode": statusCode,
		"message":    result.Message,
		"code":       result.Code,
	}
	if result.Order != nil {
		body["data"] = map[string]interface{}{"order": result.Order}
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, body)
}

func statusWord(code response.Code) string {
	if code == response.CodeOK {
		return "success"
	}
	return "failed"
}

func statusForCode(code response.Code) int {
	switch code {
	case response.CodeOK:
		return http.StatusCreated
	case response.CodeMissingUser:
		return http.StatusUnauthorized
	case response.CodeEmptySelection,
		response.CodeNoResolvableItems,
		response.CodeMissingProductReference:
		return http.StatusBadRequest
	case response.CodeProductNotFound:
		return http.StatusNotFound
	case response.CodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
