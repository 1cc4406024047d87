package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const accountKey = "account"

// AuthMiddleware validates JWT tokens and protects routes
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Expected: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			log.Printf("[Auth] Token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(accountKey, claims.Account)
		c.Next()
	}
}

// AdminMiddleware lets only accounts accepted by isAdmin through. It must run
// after AuthMiddleware.
func AdminMiddleware(isAdmin func(account string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := GetAccount(c)
		if !ok || !isAdmin(account) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
				"code":  "InsufficientPermission",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAccount retrieves the authenticated account from the context
func GetAccount(c *gin.Context) (string, bool) {
	value, exists := c.Get(accountKey)
	if !exists {
		return "", false
	}
	account, ok := value.(string)
	return account, ok
}
