package middleware

import (
	"net/http"

	"khoomi-api-io/storefront/internal/auth"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/gin-gonic/gin"
)

// Auth rejects requests without a valid access token.
func Auth(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		claim, err := a.ValidateToken(c.Request.Context(), token)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		auth.SetClaim(c, claim)
		c.Next()
	}
}

// OptionalAuth records the claim when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := auth.ExtractBearerToken(c.GetHeader("Authorization")); err == nil {
			if claim, err := a.ValidateToken(c.Request.Context(), token); err == nil {
				auth.SetClaim(c, claim)
			}
		}
		c.Next()
	}
}
