package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

func TestCloudinaryUploader(t *testing.T) {
	file := &entity.ImageFile{Name: "receipt.png", ContentType: "image/png", Data: []byte("png-bytes")}

	t.Run("sends the file through the unsigned preset and returns secure_url", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "unsigned", r.FormValue("upload_preset"))
			assert.Equal(t, entity.ImageFolderTransactions, r.FormValue("folder"))

			f, _, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "png-bytes", string(data))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"secure_url":"https://res.example/demo/transactions/receipt.png"}`))
		}))
		defer server.Close()

		uploader := NewCloudinaryUploader(CloudinaryConfig{CloudName: "demo", UploadPreset: "unsigned", BaseURL: server.URL})
		url, err := uploader.Upload(context.Background(), file, entity.ImageFolderTransactions)
		require.NoError(t, err)
		assert.Equal(t, "https://res.example/demo/transactions/receipt.png", url)
		assert.Equal(t, 1, calls)
	})

	t.Run("rejected upload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
		}))
		defer server.Close()

		uploader := NewCloudinaryUploader(CloudinaryConfig{CloudName: "demo", UploadPreset: "missing", BaseURL: server.URL})
		url, err := uploader.Upload(context.Background(), file, entity.ImageFolderWallets)
		assert.ErrorContains(t, err, "upload")
		assert.Empty(t, url)
	})

	t.Run("not configured", func(t *testing.T) {
		uploader := NewCloudinaryUploader(CloudinaryConfig{})
		_, err := uploader.Upload(context.Background(), file, entity.ImageFolderWallets)
		assert.ErrorContains(t, err, "not configured")
	})

	t.Run("empty file", func(t *testing.T) {
		uploader := NewCloudinaryUploader(CloudinaryConfig{CloudName: "demo", UploadPreset: "unsigned"})
		_, err := uploader.Upload(context.Background(), &entity.ImageFile{}, entity.ImageFolderWallets)
		assert.Error(t, err)
	})
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisWalletLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("lock and unlock", func(t *testing.T) {
		mr, client := newRedis(t)
		locker := NewRedisWalletLocker(client, time.Second, 200*time.Millisecond)
		a, b := uuid.New(), uuid.New()

		unlock, err := locker.Lock(ctx, a, b, a)
		require.NoError(t, err)
		assert.True(t, mr.Exists(walletLockPrefix+a.String()))
		assert.True(t, mr.Exists(walletLockPrefix+b.String()))
		assert.Len(t, mr.Keys(), 2)

		unlock()
		assert.Empty(t, mr.Keys())
	})

	t.Run("held lock times out as wallet busy", func(t *testing.T) {
		mr, client := newRedis(t)
		locker := NewRedisWalletLocker(client, time.Second, 150*time.Millisecond)
		a, b := uuid.New(), uuid.New()

		unlock, err := locker.Lock(ctx, b)
		require.NoError(t, err)
		defer unlock()

		_, err = locker.Lock(ctx, a, b)
		assert.ErrorIs(t, err, domainerror.ErrWalletBusy)
		assert.False(t, mr.Exists(walletLockPrefix+a.String()), "partially acquired locks are released")
	})

	t.Run("waiter acquires after release", func(t *testing.T) {
		_, client := newRedis(t)
		locker := NewRedisWalletLocker(client, time.Second, 2*time.Second)
		a := uuid.New()

		unlock, err := locker.Lock(ctx, a)
		require.NoError(t, err)

		acquired := make(chan error, 1)
		go func() {
			second, err := locker.Lock(ctx, a)
			if err == nil {
				second()
			}
			acquired <- err
		}()

		time.Sleep(100 * time.Millisecond)
		unlock()

		select {
		case err := <-acquired:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("waiter never acquired the lock")
		}
	})

	t.Run("expired lock is not released by its old owner", func(t *testing.T) {
		mr, client := newRedis(t)
		locker := NewRedisWalletLocker(client, time.Second, 100*time.Millisecond)
		a := uuid.New()

		unlock, err := locker.Lock(ctx, a)
		require.NoError(t, err)
		mr.FastForward(2 * time.Second)

		other, err := locker.Lock(ctx, a)
		require.NoError(t, err)
		defer other()

		unlock()
		assert.True(t, mr.Exists(walletLockPrefix+a.String()))
	})
}

func TestNoopWalletLocker(t *testing.T) {
	unlock, err := NewNoopWalletLocker().Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewNoopWalletLocker().Lock(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenService(t *testing.T) {
	ctx := context.Background()
	service := NewTokenService("test-secret", time.Minute)
	userID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		token, err := service.GenerateAccessToken(ctx, userID, "user@example.com")
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenService("other-secret", time.Minute).GenerateAccessToken(ctx, userID, "")
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		claims := CustomClaims{
			UserID:    userID.String(),
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(past),
				Issuer:    tokenIssuer,
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, domainerror.ErrExpiredToken)
	})

	t.Run("refresh token is refused", func(t *testing.T) {
		claims := CustomClaims{
			UserID:    userID.String(),
			TokenType: "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    tokenIssuer,
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.ValidateAccessToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})
}
