package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/wallet-ledger/config"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	"github.com/finance-tracker/wallet-ledger/internal/infra/dependency"
	"github.com/finance-tracker/wallet-ledger/internal/integration/adapters"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/wallet-ledger/internal/testutil"
)

const testSecret = "test-secret"

type stubUploader struct {
	url     string
	err     error
	folders []string
}

func (u *stubUploader) Upload(_ context.Context, _ *entity.ImageFile, folder string) (string, error) {
	u.folders = append(u.folders, folder)
	return u.url, u.err
}

type api struct {
	engine   *gin.Engine
	injector *dependency.Injector
	uploader *stubUploader
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT:    config.JWTConfig{Secret: testSecret, AccessTokenExpiry: time.Hour},
		Ledger: config.LedgerConfig{
			CascadeBatchSize: 5,
			LockTTL:          time.Second,
			LockWait:         time.Second,
			StatsTimezone:    "UTC",
		},
	}

	uploader := &stubUploader{url: "https://img.example/receipt.png"}
	injector := dependency.NewInjectorWithOptions(cfg, testutil.NewDB(t), nil, dependency.Options{
		ImageUploader: uploader,
	})

	return &api{
		engine:   injector.Router.Setup(cfg.Server.Environment),
		injector: injector,
		uploader: uploader,
	}
}

func token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := adapters.NewTokenService(testSecret, time.Hour).
		GenerateAccessToken(context.Background(), userID, "user@example.com")
	require.NoError(t, err)
	return tok
}

func (a *api) do(t *testing.T, userID uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, userID))

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *api) createWallet(t *testing.T, userID uuid.UUID, name string) dto.WalletResponse {
	t.Helper()
	rec := a.do(t, userID, http.MethodPost, "/api/v1/wallets", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.WalletResponse](t, rec)
}

func (a *api) getWallet(t *testing.T, userID uuid.UUID, id string) dto.WalletResponse {
	t.Helper()
	rec := a.do(t, userID, http.MethodGet, "/api/v1/wallets/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[dto.WalletResponse](t, rec)
}

func assertBalance(t *testing.T, got dto.BalanceResponse, amount, income, expenses string) {
	t.Helper()
	assert.Equal(t, dto.BalanceResponse{Amount: amount, TotalIncome: income, TotalExpenses: expenses}, got)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestAPI_RequiresToken(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH-030003", decode[dto.ErrorResponse](t, rec).Code)
}

func TestAPI_WalkThrough(t *testing.T) {
	a := newAPI(t)
	userID := uuid.New()
	wallet := a.createWallet(t, userID, "Cash")
	assertBalance(t, wallet.BalanceResponse, "0.00", "0.00", "0.00")

	rec := a.do(t, userID, http.MethodPost, "/api/v1/transactions", map[string]any{
		"wallet_id": wallet.ID,
		"type":      "income",
		"amount":    100,
		"category":  "Salary",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assertBalance(t, a.getWallet(t, userID, wallet.ID).BalanceResponse, "100.00", "100.00", "0.00")

	rec = a.do(t, userID, http.MethodPost, "/api/v1/transactions", map[string]any{
		"wallet_id":   wallet.ID,
		"type":        "expense",
		"amount":      "30",
		"category":    "Food",
		"description": "Groceries",
		"date":        "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	expense := decode[dto.TransactionResponse](t, rec)
	assert.Equal(t, "30.00", expense.Amount)
	assert.Equal(t, "2024-03-01T00:00:00Z", expense.Date)
	assertBalance(t, a.getWallet(t, userID, wallet.ID).BalanceResponse, "70.00", "100.00", "30.00")

	rec = a.do(t, userID, http.MethodPatch, "/api/v1/transactions/"+expense.ID, map[string]any{
		"wallet_id": wallet.ID,
		"type":      "expense",
		"amount":    "40",
		"category":  "Food",
		"date":      "2024-03-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "40.00", decode[dto.TransactionResponse](t, rec).Amount)
	assertBalance(t, a.getWallet(t, userID, wallet.ID).BalanceResponse, "60.00", "100.00", "40.00")

	rec = a.do(t, userID, http.MethodDelete, "/api/v1/transactions/"+expense.ID+"?wallet_id="+wallet.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	deleted := decode[dto.DeleteTransactionResponse](t, rec)
	assert.Equal(t, expense.ID, deleted.TransactionID)
	assertBalance(t, deleted.Balance, "100.00", "100.00", "0.00")

	rec = a.do(t, userID, http.MethodGet, "/api/v1/transactions/"+expense.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ErrorMapping(t *testing.T) {
	a := newAPI(t)
	userID := uuid.New()
	wallet := a.createWallet(t, userID, "Cash")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "insufficient balance",
			body:       map[string]any{"wallet_id": wallet.ID, "type": "expense", "amount": 500, "category": "Rent"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "TXN-030001",
		},
		{
			name:       "invalid type",
			body:       map[string]any{"wallet_id": wallet.ID, "type": "transfer", "amount": 5},
			wantStatus: http.StatusBadRequest,
			wantCode:   "TXN-010001",
		},
		{
			name:       "missing category",
			body:       map[string]any{"wallet_id": wallet.ID, "type": "expense", "amount": 5},
			wantStatus: http.StatusBadRequest,
			wantCode:   "TXN-010005",
		},
		{
			name:       "amount below a cent",
			body:       map[string]any{"wallet_id": wallet.ID, "type": "income", "amount": "0.005"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "TXN-010008",
		},
		{
			name:       "category too long",
			body:       map[string]any{"wallet_id": wallet.ID, "type": "expense", "amount": 5, "category": strings.Repeat("c", 51)},
			wantStatus: http.StatusBadRequest,
			wantCode:   "TXN-010009",
		},
		{
			name:       "invalid date",
			body:       map[string]any{"wallet_id": wallet.ID, "type": "income", "amount": 5, "date": "yesterday"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "TXN-010002",
		},
		{
			name:       "unknown wallet",
			body:       map[string]any{"wallet_id": uuid.NewString(), "type": "income", "amount": 5},
			wantStatus: http.StatusNotFound,
			wantCode:   "TXN-020002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, userID, http.MethodPost, "/api/v1/transactions", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decode[dto.ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}

	assertBalance(t, a.getWallet(t, userID, wallet.ID).BalanceResponse, "0.00", "0.00", "0.00")
}

func TestAPI_Ownership(t *testing.T) {
	a := newAPI(t)
	owner, other := uuid.New(), uuid.New()
	wallet := a.createWallet(t, owner, "Savings")

	rec := a.do(t, other, http.MethodGet, "/api/v1/wallets/"+wallet.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, other, http.MethodPatch, "/api/v1/wallets/"+wallet.ID, map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "WLT-020002", decode[dto.ErrorResponse](t, rec).Code)

	rec = a.do(t, other, http.MethodGet, "/api/v1/wallets/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WLT-010003", decode[dto.ErrorResponse](t, rec).Code)

	rec = a.do(t, other, http.MethodGet, "/api/v1/wallets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.WalletListResponse](t, rec).Wallets)
}

func TestAPI_WalletUpdateAndSummary(t *testing.T) {
	a := newAPI(t)
	userID := uuid.New()
	cash := a.createWallet(t, userID, "Cash")
	bank := a.createWallet(t, userID, "Bank")

	for _, w := range []dto.WalletResponse{cash, bank} {
		rec := a.do(t, userID, http.MethodPost, "/api/v1/transactions", map[string]any{
			"wallet_id": w.ID, "type": "income", "amount": "25.50",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := a.do(t, userID, http.MethodPatch, "/api/v1/wallets/"+cash.ID, map[string]any{
		"name":     "  Pocket  ",
		"icon_url": "https://img.example/pocket.png",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[dto.WalletResponse](t, rec)
	assert.Equal(t, "Pocket", updated.Name)
	require.NotNil(t, updated.Icon)
	assert.Equal(t, "https://img.example/pocket.png", *updated.Icon)
	assertBalance(t, updated.BalanceResponse, "25.50", "25.50", "0.00")

	rec = a.do(t, userID, http.MethodGet, "/api/v1/wallets/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[dto.WalletSummaryResponse](t, rec)
	assert.Equal(t, 2, summary.WalletCount)
	assertBalance(t, summary.BalanceResponse, "51.00", "51.00", "0.00")

	rec = a.do(t, userID, http.MethodPost, "/api/v1/wallets", map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WLT-010001", decode[dto.ErrorResponse](t, rec).Code)
}

func multipartRequest(t *testing.T, userID uuid.UUID, path string, fields map[string]string, fileField string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile(fileField, "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, userID))
	return req
}

func TestAPI_MultipartReceipt(t *testing.T) {
	a := newAPI(t)
	userID := uuid.New()
	wallet := a.createWallet(t, userID, "Cash")

	fields := map[string]string{
		"wallet_id": wallet.ID,
		"type":      "income",
		"amount":    "12.30",
		"category":  "Refund",
	}

	t.Run("uploads the receipt", func(t *testing.T) {
		rec := httptest.NewRecorder()
		a.engine.ServeHTTP(rec, multipartRequest(t, userID, "/api/v1/transactions", fields, "receipt"))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		txn := decode[dto.TransactionResponse](t, rec)
		require.NotNil(t, txn.Receipt)
		assert.Equal(t, "https://img.example/receipt.png", *txn.Receipt)
		assert.Equal(t, "12.30", txn.Amount)
		assert.Equal(t, []string{entity.ImageFolderTransactions}, a.uploader.folders)
	})

	t.Run("upload failure maps to bad gateway", func(t *testing.T) {
		a.uploader.err = errors.New("asset host down")
		defer func() { a.uploader.err = nil }()

		rec := httptest.NewRecorder()
		a.engine.ServeHTTP(rec, multipartRequest(t, userID, "/api/v1/transactions", fields, "receipt"))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "TXN-040001", decode[dto.ErrorResponse](t, rec).Code)
	})
}

func TestAPI_ListTransactions(t *testing.T) {
	a := newAPI(t)
	userID := uuid.New()
	cash := a.createWallet(t, userID, "Cash")
	bank := a.createWallet(t, userID, "Bank")

	post := func(walletID, category, date string) {
		rec := a.do(t, userID, http.MethodPost, "/api/v1/transactions", map[string]any{
			"wallet_id": walletID, "type": "income", "amount": 10, "category": category, "date": date,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	post(cash.ID, "Salary", "2024-01-01")
	post(cash.ID, "Gift", "2024-02-01")
	post(bank.ID, "Salary", "2024-03-01")

	rec := a.do(t, userID, http.MethodGet, "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[dto.TransactionListResponse](t, rec)
	require.Equal(t, 3, all.Count)
	assert.Equal(t, "2024-03-01T00:00:00Z", all.Transactions[0].Date)

	rec = a.do(t, userID, http.MethodGet, "/api/v1/transactions?wallet_id="+cash.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[dto.TransactionListResponse](t, rec).Count)

	rec = a.do(t, userID, http.MethodGet, "/api/v1/transactions?search=sal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[dto.TransactionListResponse](t, rec).Count)

	rec = a.do(t, userID, http.MethodGet, "/api/v1/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[dto.TransactionListResponse](t, rec).Count)

	rec = a.do(t, userID, http.MethodGet, "/api/v1/transactions?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_DeleteWalletCascades(t *testing.T) {
	a := newAPI(t)
	userID := uuid.New()
	wallet := a.createWallet(t, userID, "Old")

	for i := 0; i < 12; i++ {
		rec := a.do(t, userID, http.MethodPost, "/api/v1/transactions", map[string]any{
			"wallet_id": wallet.ID, "type": "income", "amount": 1,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := a.do(t, userID, http.MethodDelete, "/api/v1/wallets/"+wallet.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	a.injector.DeleteWallet.Wait()

	rec = a.do(t, userID, http.MethodGet, "/api/v1/transactions?wallet_id="+wallet.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[dto.TransactionListResponse](t, rec).Count)

	rec = a.do(t, userID, http.MethodGet, "/api/v1/wallets/"+wallet.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Statistics(t *testing.T) {
	a := newAPI(t)
	userID := uuid.New()
	wallet := a.createWallet(t, userID, "Cash")

	rec := a.do(t, userID, http.MethodPost, "/api/v1/transactions", map[string]any{
		"wallet_id": wallet.ID, "type": "income", "amount": 80,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, userID, http.MethodGet, "/api/v1/statistics/Weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[dto.StatisticsResponse](t, rec)
	assert.Equal(t, "weekly", stats.Window)
	require.Len(t, stats.Buckets, 7)
	require.Len(t, stats.Stats, 14)
	assert.Equal(t, "80.00", stats.Buckets[6].Income)
	assert.Equal(t, "income", stats.Stats[12].Type)
	assert.Equal(t, "80.00", stats.Stats[12].Value)
	assert.Len(t, stats.Transactions, 1)

	rec = a.do(t, userID, http.MethodGet, "/api/v1/statistics/daily", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[dto.ErrorResponse](t, rec)
	assert.Equal(t, "STS-010001", resp.Code)
	assert.True(t, strings.Contains(resp.Error, "weekly"))
}
