package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/zerolog"

	"github.com/shopique/storefront/internal/common"
	inErrors "github.com/shopique/storefront/internal/errors"
	inHttp "github.com/shopique/storefront/internal/http"
	"github.com/shopique/storefront/internal/log"
)

// AllowRoles gates a handler to requests whose token carries one of the
// given roles. Must sit behind Auth.
func AllowRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware AllowRoles").
				Logger()
			c := logger.WithContext(r.Context())

			claims, err := common.ClaimsFromContext(c)
			if err != nil || !slices.Contains(roles, claims.Role) {
				logger.Error().
					Err(inErrors.ErrForbidden).
					Str("role", claims.Role).
					Msg(inErrors.ErrForbidden.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusForbidden,
					"message":    inErrors.ErrForbidden.Error(),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
