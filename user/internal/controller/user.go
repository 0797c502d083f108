package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopique/storefront/internal/common"
	"github.com/shopique/storefront/internal/constants"
	inErrors "github.com/shopique/storefront/internal/errors"
	inHttp "github.com/shopique/storefront/internal/http"
	"github.com/shopique/storefront/internal/log"
	"github.com/shopique/storefront/internal/middleware"
	inOtel "github.com/shopique/storefront/internal/otel"
	"github.com/shopique/storefront/user/internal/otel"
	"github.com/shopique/storefront/user/internal/service"
	"github.com/shopique/storefront/user/pkg/request"
)

type UserController struct {
	service   *service.UserService
	validator *validator.Validate
}

func AttachUserController(
	r *mux.Router,
	service *service.UserService,
	validate *validator.Validate,
	secretKey string,
) {
	controller := UserController{service: service, validator: validate}

	router := r.PathPrefix("/v1/api/users").Subrouter()
	router.HandleFunc("/register", controller.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	router.HandleFunc("/forgot-password", controller.ForgotPassword).Methods(http.MethodPost)

	authed := router.NewRoute().Subrouter()
	authed.Use(middleware.Auth(secretKey))
	authed.HandleFunc("/account", controller.Account).Methods(http.MethodGet)

	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.Auth(secretKey))
	admin.Use(middleware.AllowRoles(constants.RoleAdmin))
	admin.HandleFunc("", controller.FindUsers).Methods(http.MethodGet)
}

func (ctrl *UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Register").Logger()

	param := request.Register{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	user, err := ctrl.service.Register(c, param)
	if err != nil {
		if errors.Is(err, inErrors.ErrUserExist) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusConflict,
				"message":    "email already registered",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed registering user",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "user registered",
		"data":       map[string]interface{}{"user": user},
	})
}

func (ctrl *UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Login").Logger()

	param := request.Login{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	login, err := ctrl.service.Login(c, param)
	if err != nil {
		if errors.Is(err, inErrors.ErrUserNotFound) || errors.Is(err, inErrors.ErrPasswordMismatch) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusUnauthorized,
				"message":    "invalid email or password",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed logging in",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "logged in",
		"data":       login,
	})
}

func (ctrl *UserController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController ForgotPassword")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController ForgotPassword").Logger()

	param := request.ForgotPassword{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed decoding request body with error=%w", err))
		return
	}
	if err := ctrl.validator.StructCtx(c, param); err != nil {
		writeBadRequest(c, w, span, logger, fmt.Errorf("failed validating request body with error=%w", err))
		return
	}

	c = logger.WithContext(c)
	if err := ctrl.service.ForgotPassword(c, param); err != nil {
		if errors.Is(err, inErrors.ErrUserNotFound) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusNotFound,
				"message":    "user not found",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed resetting password",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "password reset",
	})
}

func (ctrl *UserController) Account(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Account")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Account").Logger()

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
	user, err := ctrl.service.FindUserByID(c, userID)
	if err != nil {
		if errors.Is(err, inErrors.ErrUserNotFound) {
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusNotFound,
				"message":    "user not found",
			})
			return
		}
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding user",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "user found",
		"data":       map[string]interface{}{"user": user},
	})
}

func (ctrl *UserController) FindUsers(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController FindUsers")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController FindUsers").Logger()

	c = logger.WithContext(c)
	users, err := ctrl.service.FindUsers(c)
	if err != nil {
		inOtel.RecordError(err, span)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed finding users",
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "users found",
		"data":       map[string]interface{}{"users": users},
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
