package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const loginKey = "login"

// Claims carried in a bearer token. Login is the caller identity recorded
// on transaction rows.
type Claims struct {
	Login string `json:"login"`
	jwt.RegisteredClaims
}

// IdentityMiddleware extracts the caller's login from a bearer token when
// one is present and valid. It never rejects the request: an absent or
// invalid token leaves the request anonymous, and the service substitutes
// the system account for anonymous callers. Enforcement lives in the
// write policy, not here.
func IdentityMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil || !token.Valid || claims.Login == "" {
			c.Next()
			return
		}

		c.Set(loginKey, claims.Login)
		c.Next()
	}
}

// GetUserLogin returns the authenticated caller's login, or "" when the
// request is anonymous.
func GetUserLogin(c *gin.Context) string {
	login, exists := c.Get(loginKey)
	if !exists {
		return ""
	}
	return login.(string)
}
