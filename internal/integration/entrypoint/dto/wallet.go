package dto

import (
	"time"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// UpsertWalletRequest represents the body of wallet creation and update.
// It is bound from JSON or multipart form data; an uploaded icon file
// takes precedence over IconURL.
type UpsertWalletRequest struct {
	Name    *string `json:"name" form:"name"`
	IconURL *string `json:"icon_url" form:"icon_url"`
}

// BalanceResponse represents the running totals of a wallet.
type BalanceResponse struct {
	Amount        string `json:"amount"`
	TotalIncome   string `json:"total_income"`
	TotalExpenses string `json:"total_expenses"`
}

// WalletResponse represents a single wallet in API responses.
type WalletResponse struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Icon   *string `json:"icon"`

	BalanceResponse

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletListResponse represents the response for listing wallets.
type WalletListResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

// WalletSummaryResponse represents the totals across all wallets of a user.
type WalletSummaryResponse struct {
	WalletCount int `json:"wallet_count"`

	BalanceResponse
}

// ToBalanceResponse converts a balance to its response form.
func ToBalanceResponse(b entity.Balance) BalanceResponse {
	return BalanceResponse{
		Amount:        b.Amount.StringFixed(2),
		TotalIncome:   b.TotalIncome.StringFixed(2),
		TotalExpenses: b.TotalExpenses.StringFixed(2),
	}
}

// ToWalletResponse converts a domain Wallet entity to a WalletResponse DTO.
func ToWalletResponse(w *entity.Wallet) WalletResponse {
	return WalletResponse{
		ID:              w.ID.String(),
		UserID:          w.UserID.String(),
		Name:            w.Name,
		Icon:            w.Icon,
		BalanceResponse: ToBalanceResponse(w.Balance),
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

// ToWalletListResponse converts a slice of wallets to a WalletListResponse DTO.
func ToWalletListResponse(wallets []*entity.Wallet) WalletListResponse {
	resp := WalletListResponse{Wallets: make([]WalletResponse, 0, len(wallets))}
	for _, w := range wallets {
		resp.Wallets = append(resp.Wallets, ToWalletResponse(w))
	}
	return resp
}

// ToWalletSummaryResponse converts a wallet summary to its response form.
func ToWalletSummaryResponse(s *entity.WalletSummary) WalletSummaryResponse {
	return WalletSummaryResponse{
		WalletCount:     s.WalletCount,
		BalanceResponse: ToBalanceResponse(s.Balance),
	}
}
