package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"shoptill/internal/core/apperror"
	appctx "shoptill/internal/core/context"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.OperatorContext, error)
}

// Auth middleware validates session tokens and populates operator
// context for the domain layer.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		op, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithOperator(c.Request.Context(), op)
		c.Request = c.Request.WithContext(ctx)
		c.Set("operator_id", op.OperatorID)

		c.Next()
	}
}

// RequireManager restricts a route to manager operators. Settling and
// voiding bills are manager actions.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		op := appctx.GetOperator(c.Request.Context())
		if op == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !op.IsManager {
			_ = c.Error(apperror.NewUnauthorized("manager access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
