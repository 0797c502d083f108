package common

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopique/storefront/internal/constants"
)

func signedToken(t *testing.T, secretKey string, mutate func(*Claims)) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppUserService,
			Subject:   uuid.NewString(),
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:  "Lan Pham",
		Email: "lan@example.com",
		Role:  constants.RoleUser,
	}
	if mutate != nil {
		mutate(&claims)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	require.NoError(t, err)
	return token
}

func TestParseTokenRoundTrip(t *testing.T) {
	token := signedToken(t, "secret", nil)

	claims, err := ParseToken(token, "secret")

	require.NoError(t, err)
	assert.Equal(t, "lan@example.com", claims.Email)
	assert.Equal(t, constants.RoleUser, claims.Role)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, userID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token := signedToken(t, "secret", nil)

	_, err := ParseToken(token, "other-secret")

	assert.Error(t, err)
}

func TestParseTokenWrongAudience(t *testing.T) {
	token := signedToken(t, "secret", func(c *Claims) {
		c.Audience = jwt.ClaimStrings{"someone-else"}
	})

	_, err := ParseToken(token, "secret")

	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token := signedToken(t, "secret", func(c *Claims) {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	})

	_, err := ParseToken(token, "secret")

	assert.Error(t, err)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}

	c := AttachClaimsToContext(context.Background(), claims)
	got, err := ClaimsFromContext(c)

	require.NoError(t, err)
	assert.Equal(t, claims.Subject, got.Subject)
}

func TestClaimsFromContextMissing(t *testing.T) {
	_, err := ClaimsFromContext(context.Background())

	assert.Error(t, err)
}
