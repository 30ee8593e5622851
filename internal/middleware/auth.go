package middleware

import (
	"net/http"
	"strings"

	"github.com/01moynul/farinez-golang/internal/auth"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxUsername = "username"
	CtxUserRole = "userRole"
)

// AuthMiddleware rejects requests without a valid Bearer token and stores the
// token's username and role in the context.
func AuthMiddleware(iss *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Se requiere iniciar sesión"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Formato de token inválido (debe ser Bearer)"})
			return
		}

		claims, err := iss.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
			return
		}

		c.Set(CtxUsername, claims.Username())
		c.Set(CtxUserRole, claims.Tipo)
		c.Next()
	}
}

// RoleMiddleware must run after AuthMiddleware. It lets through only the
// listed roles.
func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxUserRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Se requiere iniciar sesión"})
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso denegado para este tipo de usuario"})
	}
}
