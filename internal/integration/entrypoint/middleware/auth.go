// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

// UserIDKey holds the authenticated user's ID; every ledger query is scoped to it.
const UserIDKey ContextKey = "user_id"

const bearerPrefix = "Bearer "

// AuthMiddleware validates bearer tokens issued by the auth service.
type AuthMiddleware struct {
	tokenService adapter.TokenService
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(tokenService adapter.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate rejects requests without a valid access token and stores the
// token's user ID on the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, message := bearerToken(c.GetHeader("Authorization"))
		if code != "" {
			unauthorized(c, code, message)
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(c.Request.Context(), token)
		switch {
		case errors.Is(err, domainerror.ErrExpiredToken):
			unauthorized(c, domainerror.ErrCodeExpiredToken, "Token has expired")
			return
		case err != nil:
			unauthorized(c, domainerror.ErrCodeInvalidToken, "Invalid token")
			return
		}

		c.Set(string(UserIDKey), claims.UserID)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header, or returns the
// error code and message the request is rejected with.
func bearerToken(header string) (string, domainerror.AuthErrorCode, string) {
	if header == "" {
		return "", domainerror.ErrCodeMissingToken, "Authorization header is required"
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", domainerror.ErrCodeInvalidToken, "Invalid authorization header format"
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", domainerror.ErrCodeMissingToken, "Token is required"
	}
	return token, "", ""
}

func unauthorized(c *gin.Context, code domainerror.AuthErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: message,
		Code:  string(code),
	})
}

// GetUserIDFromContext extracts the user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}
