package common

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shopique/storefront/internal/constants"
	inErrors "github.com/shopique/storefront/internal/errors"
)

type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (c Claims) UserID() (uuid.UUID, error) {
	if c.Subject == "" {
		return uuid.Nil, inErrors.ErrEmptySubject
	}
	return uuid.Parse(c.Subject)
}

func ParseToken(token string, secretKey string) (Claims, error) {
	claims := Claims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AudienceUser),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppUserService),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("failed parsing with claims with error=%w", err)
	}
	if !jwtToken.Valid {
		return Claims{}, inErrors.ErrTokenInvalid
	}
	return claims, nil
}

type claimsKey struct{}

func AttachClaimsToContext(c context.Context, claims Claims) context.Context {
	return context.WithValue(c, claimsKey{}, claims)
}

func ClaimsFromContext(c context.Context) (Claims, error) {
	claims, ok := c.Value(claimsKey{}).(Claims)
	if !ok {
		return Claims{}, inErrors.ErrEmptyAuth
	}
	return claims, nil
}

func UserIdFromContext(c context.Context) (uuid.UUID, error) {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}
