package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopique/storefront/internal/common"
	"github.com/shopique/storefront/internal/constants"
	inErrors "github.com/shopique/storefront/internal/errors"
	"github.com/shopique/storefront/internal/log"
	inOtel "github.com/shopique/storefront/internal/otel"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/user/internal/otel"
	"github.com/shopique/storefront/user/pkg/request"
	"github.com/shopique/storefront/user/pkg/response"
)

type UserStore interface {
	Insert(c context.Context, u repository.User) (repository.User, error)
	FindByEmail(c context.Context, email string) (repository.User, error)
	FindByID(c context.Context, id uuid.UUID) (repository.User, error)
	FindAll(c context.Context) ([]repository.User, error)
	UpdatePassword(c context.Context, id uuid.UUID, password string) error
}

type UserService struct {
	users     UserStore
	secretKey string
	tokenTTL  time.Duration
}

func NewUserService(users UserStore, secretKey string, tokenTTL time.Duration) *UserService {
	return &UserService{users: users, secretKey: secretKey, tokenTTL: tokenTTL}
}

func (s *UserService) Register(
	c context.Context,
	param request.Register,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Object("request", param).
		Logger()

	logger.Info().Msg("checking email uniqueness")
	_, err := s.users.FindByEmail(c, param.Email)
	if err == nil {
		err = fmt.Errorf("email=%s already registered with error=%w", param.Email, inErrors.ErrUserExist)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, inErrors.ErrUserExist
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("checked email uniqueness")

	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("hashed password")

	logger.Info().Msg("inserting user")
	user, err := s.users.Insert(c, repository.User{
		ID:       uuid.New(),
		Name:     param.Name,
		Email:    param.Email,
		Password: string(hashed),
		Role:     constants.RoleUser,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("inserted user")

	return response.NewUser(user), nil
}

func (s *UserService) Login(
	c context.Context,
	param request.Login,
) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Object("request", param).
		Logger()

	logger.Info().Msg("finding user by email")
	user, err := s.users.FindByEmail(c, param.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("user not found")
			return response.Login{}, inErrors.ErrUserNotFound
		}
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("found user by email")

	logger.Info().Msg("comparing password")
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password))
	if err != nil {
		logger.Info().Msg("password mismatch")
		return response.Login{}, inErrors.ErrPasswordMismatch
	}
	logger.Info().Msg("compared password")

	logger.Info().Msg("creating token")
	token, err := s.createToken(user)
	if err != nil {
		err = fmt.Errorf("failed creating token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("created token")

	return response.Login{Token: token, User: response.NewUser(user)}, nil
}

func (s *UserService) createToken(user repository.User) (string, error) {
	now := time.Now()
	claims := common.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppUserService,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secretKey))
}

// ForgotPassword resets the password for the account registered with
// the email. It intentionally requires no proof of ownership besides
// the email itself, matching the storefront's self-service reset.
func (s *UserService) ForgotPassword(
	c context.Context,
	param request.ForgotPassword,
) error {
	c, span := otel.Tracer.Start(c, "UserService ForgotPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService ForgotPassword").
		Object("request", param).
		Logger()

	logger.Info().Msg("finding user by email")
	user, err := s.users.FindByEmail(c, param.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("user not found")
			return inErrors.ErrUserNotFound
		}
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("found user by email")

	logger.Info().Msg("hashing new password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing new password with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("hashed new password")

	logger.Info().Msg("updating password")
	if err := s.users.UpdatePassword(c, user.ID, string(hashed)); err != nil {
		err = fmt.Errorf("failed updating password with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated password")

	return nil
}

func (s *UserService) FindUsers(c context.Context) ([]response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService FindUsers")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService FindUsers").
		Logger()

	logger.Info().Msg("finding users")
	users, err := s.users.FindAll(c)
	if err != nil {
		err = fmt.Errorf("failed finding users with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("userCount", len(users)).Msg("found users")

	mapped := make([]response.User, 0, len(users))
	for _, user := range users {
		mapped = append(mapped, response.NewUser(user))
	}
	return mapped, nil
}

func (s *UserService) FindUserByID(c context.Context, id uuid.UUID) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService FindUserByID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService FindUserByID").
		Str(log.KeyUserID, id.String()).
		Logger()

	logger.Info().Msg("finding user")
	user, err := s.users.FindByID(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("user not found")
			return response.User{}, inErrors.ErrUserNotFound
		}
		err = fmt.Errorf("failed finding user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("found user")

	return response.NewUser(user), nil
}
