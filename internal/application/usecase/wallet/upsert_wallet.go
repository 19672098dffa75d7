// Package wallet contains wallet-related use cases.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/image"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

// MaxWalletNameLength is the maximum allowed length for wallet names.
const MaxWalletNameLength = 100

// UpsertWalletInput represents the input for creating or editing a wallet.
// A nil ID creates a new wallet; nil fields are left untouched on edit.
type UpsertWalletInput struct {
	ID     *uuid.UUID
	UserID uuid.UUID
	Name   *string
	Icon   *entity.ImageInput
}

// UpsertWalletOutput represents the output of a wallet upsert.
type UpsertWalletOutput struct {
	Wallet  *entity.Wallet
	Created bool
}

// UpsertWalletUseCase handles wallet creation and editing.
type UpsertWalletUseCase struct {
	walletRepo    adapter.WalletRepository
	imageResolver *image.ResolveImageUseCase
}

// NewUpsertWalletUseCase creates a new UpsertWalletUseCase instance.
func NewUpsertWalletUseCase(
	walletRepo adapter.WalletRepository,
	imageResolver *image.ResolveImageUseCase,
) *UpsertWalletUseCase {
	return &UpsertWalletUseCase{
		walletRepo:    walletRepo,
		imageResolver: imageResolver,
	}
}

// Execute creates the wallet when no ID is given, otherwise merges the supplied fields.
func (uc *UpsertWalletUseCase) Execute(ctx context.Context, input UpsertWalletInput) (*UpsertWalletOutput, error) {
	name, err := validateName(input.Name, input.ID == nil)
	if err != nil {
		return nil, err
	}

	if input.ID != nil {
		if _, err := loadOwnedWallet(ctx, uc.walletRepo, *input.ID, input.UserID); err != nil {
			return nil, err
		}
	}

	icon, err := uc.imageResolver.Execute(ctx, input.Icon, entity.ImageFolderWallets)
	if err != nil {
		return nil, domainerror.NewWalletError(
			domainerror.ErrCodeIconUploadFailed,
			"failed to upload wallet icon",
			fmt.Errorf("%w: %w", domainerror.ErrWalletIconUploadFailed, err),
		)
	}

	if input.ID == nil {
		wallet := entity.NewWallet(input.UserID, *name, icon)
		if err := uc.walletRepo.Create(ctx, wallet); err != nil {
			return nil, persistenceError("failed to create wallet", err)
		}
		return &UpsertWalletOutput{Wallet: wallet, Created: true}, nil
	}

	wallet, err := uc.walletRepo.Update(ctx, *input.ID, adapter.WalletFields{
		Name: name,
		Icon: icon,
	})
	if err != nil {
		return nil, walletLookupError("failed to update wallet", err)
	}

	return &UpsertWalletOutput{Wallet: wallet}, nil
}

// validateName trims the name and checks it. A name is mandatory on create only.
func validateName(name *string, required bool) (*string, error) {
	if name == nil {
		if required {
			return nil, domainerror.NewWalletError(
				domainerror.ErrCodeMissingWalletName,
				"wallet name is required",
				domainerror.ErrMissingWalletName,
			)
		}
		return nil, nil
	}

	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, domainerror.NewWalletError(
			domainerror.ErrCodeMissingWalletName,
			"wallet name is required",
			domainerror.ErrMissingWalletName,
		)
	}
	if utf8.RuneCountInString(trimmed) > MaxWalletNameLength {
		return nil, domainerror.NewWalletError(
			domainerror.ErrCodeWalletNameTooLong,
			fmt.Sprintf("wallet name must not exceed %d characters", MaxWalletNameLength),
			domainerror.ErrWalletNameTooLong,
		)
	}

	return &trimmed, nil
}

// loadOwnedWallet loads a wallet and verifies it belongs to the user.
func loadOwnedWallet(ctx context.Context, repo adapter.WalletRepository, id, userID uuid.UUID) (*entity.Wallet, error) {
	wallet, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, walletLookupError("failed to load wallet", err)
	}

	if wallet.UserID != userID {
		return nil, domainerror.NewWalletError(
			domainerror.ErrCodeNotAuthorizedWallet,
			"not authorized to modify this wallet",
			domainerror.ErrNotAuthorizedToModifyWallet,
		)
	}

	return wallet, nil
}

func walletLookupError(message string, err error) error {
	if errors.Is(err, domainerror.ErrWalletNotFound) {
		return domainerror.NewWalletError(
			domainerror.ErrCodeWalletNotFound,
			"wallet not found",
			err,
		)
	}
	return persistenceError(message, err)
}

func persistenceError(message string, err error) error {
	return domainerror.NewWalletError(domainerror.ErrCodeWalletPersistence, message, err)
}
