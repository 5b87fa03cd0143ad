// Package middleware holds the gin middleware of the HTTP interface layer.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/airops/internal/config"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// ClaimsKey is the gin context key holding the verified token claims.
const ClaimsKey = "auth_claims"

func extractBearer(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireJWT protects mutating routes with an HMAC-signed bearer token. The
// signing key and expected issuer come from configuration.
func RequireJWT(cfg *config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractBearer(c.Request.Header.Get("Authorization"))
		if tokenStr == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SigningKey), nil
		}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			log.Warn(c.Request.Context(), "token verification failed", logger.Error(err))
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errors.ToErrorResponse(errors.ErrUnauthorized(message)))
}
