package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shopique/storefront/internal/common"
	inErrors "github.com/shopique/storefront/internal/errors"
	inHttp "github.com/shopique/storefront/internal/http"
	"github.com/shopique/storefront/internal/log"
)

// Auth parses the bearer token and installs the verified claims into
// the request context. Handlers behind it read the user id and role
// through common.ClaimsFromContext.
func Auth(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware Auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				logger.Error().
					Err(inErrors.ErrEmptyAuth).
					Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := strings.TrimPrefix(strings.TrimPrefix(authorization, "Bearer "), "bearer ")
			claims, err := common.ParseToken(token, secretKey)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = common.AttachClaimsToContext(c, claims)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
