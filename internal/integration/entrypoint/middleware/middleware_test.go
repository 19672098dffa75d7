package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
)

type stubTokenService struct {
	claims map[string]*adapter.TokenClaims
	errs   map[string]error
}

func (s *stubTokenService) GenerateAccessToken(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	return "", nil
}

func (s *stubTokenService) ValidateAccessToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	if err, ok := s.errs[token]; ok {
		return nil, err
	}
	if claims, ok := s.claims[token]; ok {
		return claims, nil
	}
	return nil, domainerror.ErrInvalidToken
}

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	tokens := &stubTokenService{
		claims: map[string]*adapter.TokenClaims{
			"good": {UserID: userID, Email: "ana@example.com", ExpiresAt: time.Now().Add(time.Hour)},
		},
		errs: map[string]error{
			"old": domainerror.ErrExpiredToken,
		},
	}

	engine := gin.New()
	engine.Use(NewAuthMiddleware(tokens).Authenticate())
	engine.GET("/me", func(c *gin.Context) {
		id, ok := GetUserIDFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", http.StatusUnauthorized, string(domainerror.ErrCodeMissingToken)},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, string(domainerror.ErrCodeInvalidToken)},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized, string(domainerror.ErrCodeMissingToken)},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, string(domainerror.ErrCodeInvalidToken)},
		{"expired token", "Bearer old", http.StatusUnauthorized, string(domainerror.ErrCodeExpiredToken)},
		{"valid token", "Bearer good", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
				return
			}

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, userID.String(), body["user_id"])
		})
	}
}

func TestRateLimiter(t *testing.T) {
	newEngine := func(rl *RateLimiter) *gin.Engine {
		engine := gin.New()
		engine.Use(func(c *gin.Context) {
			if id := c.GetHeader("X-User"); id != "" {
				c.Set(string(UserIDKey), uuid.MustParse(id))
			}
			c.Next()
		})
		engine.POST("/write", rl.Middleware(), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return engine
	}

	send := func(engine *gin.Engine, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	t.Run("limits each user separately", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(2, time.Minute)
		engine := newEngine(rl)
		alice, bob := uuid.NewString(), uuid.NewString()

		assert.Equal(t, http.StatusNoContent, send(engine, alice).Code)
		assert.Equal(t, http.StatusNoContent, send(engine, alice).Code)

		rec := send(engine, alice)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, string(domainerror.ErrCodeRateLimited), decodeError(t, rec).Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusNoContent, send(engine, bob).Code)
	})

	t.Run("window reset allows requests again", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(1, time.Minute)
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }
		engine := newEngine(rl)
		user := uuid.NewString()

		assert.Equal(t, http.StatusNoContent, send(engine, user).Code)
		assert.Equal(t, http.StatusTooManyRequests, send(engine, user).Code)

		now = now.Add(61 * time.Second)
		assert.Equal(t, http.StatusNoContent, send(engine, user).Code)
	})

	t.Run("falls back to client ip", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(1, time.Minute)
		engine := newEngine(rl)

		assert.Equal(t, http.StatusNoContent, send(engine, "").Code)
		assert.Equal(t, http.StatusTooManyRequests, send(engine, "").Code)
	})

	t.Run("zero limit disables limiting", func(t *testing.T) {
		engine := newEngine(NewRateLimiterWithConfig(0, time.Minute))
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusNoContent, send(engine, "").Code)
		}
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(1, time.Minute)
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }

		_, ok := rl.allow("user:a")
		require.True(t, ok)
		now = now.Add(2 * time.Minute)
		rl.Cleanup()

		assert.Empty(t, rl.entries)
	})
}
