package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopique/storefront/internal/common"
	"github.com/shopique/storefront/internal/constants"
	inErrors "github.com/shopique/storefront/internal/errors"
	inHttp "github.com/shopique/storefront/internal/http"
	"github.com/shopique/storefront/internal/log"
	"github.com/shopique/storefront/internal/middleware"
	inOtel "github.com/shopique/storefront/internal/otel"
	"github.com/shopique/storefront/product/internal/otel"
	"github.com/shopique/storefront/product/internal/service"
	"github.com/shopique/storefront/product/pkg/request"
)

type ProductController struct {
	service   *service.ProductService
	validator *validator.Validate
}

func AttachProductController(
	r *mux.Router,
	service *service.ProductService,
	validate *validator.Validate,
	secretKey string,
) {
	controller := ProductController{service: service, validator: validate}

	router := r.PathPrefix("/v1/api/products").Subrouter()
	router.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	router.HandleFunc("/categories/{category}", controller.FindByCategory).Methods(http.MethodGet)

	authed := router.NewRoute().Subrouter()
	authed.Use(middleware.Auth(secretKey))
	authed.HandleFunc("/favorites", controller.FindFavorites).Methods(http.MethodGet)
	authed.HandleFunc("/{id}/favorite", controller.ToggleFavorite).Methods(http.MethodPost)
	authed.HandleFunc("/{id}/comments", controller.InsertComment).Methods(http.MethodPost)

	staff := router.NewRoute().Subrouter()
	staff.Use(middleware.Auth(secretKey))
	staff.Use(middleware.AllowRoles(constants.RoleStaff, constants.RoleAdmin))
	staff.HandleFunc("", controller.InsertProduct).Methods(http.MethodPost)
	staff.HandleFunc("/{id}", controller.UpdateProduct).Methods(http.MethodPut)
	staff.HandleFunc("/{id}", controller.DeleteProduct).Methods(http.MethodDelete)

	router.HandleFunc("/{id}", controller.FindProductByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}/comments", controller.FindComments).Methods(http.MethodGet)
	router.HandleFunc("/{id}/counts", controller.FindCounts).Methods(http.MethodGet)
}

func (ctrl *ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController FindProducts").Logger()

	query := r.URL.Query()
	param := request.FindProducts{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		Sort:     query.Get("sort"),
		InStock:  query.Get("inStock") == "true",
	}
	if raw := query.Get("minPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing minPrice with error=%w", err))
			return
		}
		param.MinPrice = &price
	}
	if raw := query.Get("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing maxPrice with error=%w", err))
			return
		}
		param.MaxPrice = &price
	}
	param.Page, _ = strconv.Atoi(query.Get("page"))
	param.PageSize, _ = strconv.Atoi(query.Get("pageSize"))

	c = logger.WithContext(c)
	page, err := ctrl.service.FindProducts(c, param)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding products",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "products found",
		"data":       page,
	})
}

func (ctrl *ProductController) FindProductByID(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductByID")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController FindProductByID").Logger()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing product id with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	product, err := ctrl.service.FindProductByID(c, id)
	if err != nil {
		if errors.Is(err, inErrors.ErrProductNotFound) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusNotFound,
				"message":    "product not found",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding product",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product found",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) FindByCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindByCategory")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController FindByCategory").Logger()

	limit := int32(5)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			writeBadRequest(c, w, span, logger, fmt.Errorf("invalid limit=%s", raw))
			return
		}
		limit = int32(parsed)
	}

	c = logger.WithContext(c)
	products, err := ctrl.service.FindByCategory(c, mux.Vars(r)["category"], limit)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding products by category",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "products found",
		"data":       map[string]interface{}{"products": products},
	})
}

func (ctrl *ProductController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController InsertProduct").Logger()

	param := request.InsertProduct{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	product, err := ctrl.service.InsertProduct(c, param)
	if err != nil {
		if errors.Is(err, inErrors.ErrProductExist) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusConflict,
				"message":    "product already exists",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed inserting product",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "product inserted",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController UpdateProduct").Logger()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing product id with error=%w", err))
		return
	}

	param := request.UpdateProduct{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	param.ID = id
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	product, err := ctrl.service.UpdateProduct(c, param)
	if err != nil {
		if errors.Is(err, inErrors.ErrProductNotFound) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusNotFound,
				"message":    "product not found",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed updating product",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product updated",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController DeleteProduct").Logger()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing product id with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	if err := ctrl.service.DeleteProduct(c, id); err != nil {
		if errors.Is(err, inErrors.ErrProductNotFound) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusNotFound,
				"message":    "product not found",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed deleting product",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product deleted",
	})
}

func (ctrl *ProductController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController ToggleFavorite")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController ToggleFavorite").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing product id with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	isFavorite, err := ctrl.service.ToggleFavorite(c, userID, productID)
	if err != nil {
		if errors.Is(err, inErrors.ErrProductNotFound) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusNotFound,
				"message":    "product not found",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed toggling favorite",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "favorite toggled",
		"data":       map[string]interface{}{"isFavorite": isFavorite},
	})
}

func (ctrl *ProductController) FindFavorites(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindFavorites")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController FindFavorites").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	c = logger.WithContext(c)
	products, err := ctrl.service.FindFavorites(c, userID)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding favorites",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "favorites found",
		"data":       map[string]interface{}{"products": products},
	})
}

func (ctrl *ProductController) InsertComment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController InsertComment")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController InsertComment").Logger()

	userID, err := common.UserIdFromContext(c)
	if err != nil {
		writeUnauthorized(c, w, span, logger, err)
		return
	}

	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing product id with error=%w", err))
		return
	}

	param := request.InsertComment{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	param.UserID = userID
	param.ProductID = productID
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	comment, err := ctrl.service.InsertComment(c, param)
	if err != nil {
		if errors.Is(err, inErrors.ErrProductNotFound) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusNotFound,
				"message":    "product not found",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed inserting comment",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "comment inserted",
		"data":       map[string]interface{}{"comment": comment},
	})
}

func (ctrl *ProductController) FindComments(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindComments")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController FindComments").Logger()

	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing product id with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	comments, err := ctrl.service.FindComments(c, productID)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding comments",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "comments found",
		"data":       map[string]interface{}{"comments": comments},
	})
}

func (ctrl *ProductController) FindCounts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindCounts")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController FindCounts").Logger()

	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed parsing product id with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	counts, err := ctrl.service.FindCounts(c, productID)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding product counts",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product counts found",
		"data":       map[string]interface{}{"counts": counts},
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
