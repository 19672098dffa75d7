package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/wallet"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
)

// WalletController handles wallet endpoints.
type WalletController struct {
	listUseCase    *wallet.ListWalletsUseCase
	getUseCase     *wallet.GetWalletUseCase
	summaryUseCase *wallet.WalletSummaryUseCase
	upsertUseCase  *wallet.UpsertWalletUseCase
	deleteUseCase  *wallet.DeleteWalletUseCase
}

// NewWalletController creates a new wallet controller instance.
func NewWalletController(
	listUseCase *wallet.ListWalletsUseCase,
	getUseCase *wallet.GetWalletUseCase,
	summaryUseCase *wallet.WalletSummaryUseCase,
	upsertUseCase *wallet.UpsertWalletUseCase,
	deleteUseCase *wallet.DeleteWalletUseCase,
) *WalletController {
	return &WalletController{
		listUseCase:    listUseCase,
		getUseCase:     getUseCase,
		summaryUseCase: summaryUseCase,
		upsertUseCase:  upsertUseCase,
		deleteUseCase:  deleteUseCase,
	}
}

// List handles GET /wallets requests.
func (c *WalletController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), wallet.ListWalletsInput{UserID: userID})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToWalletListResponse(output.Wallets))
}

// Summary handles GET /wallets/summary requests.
func (c *WalletController) Summary(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	summary, err := c.summaryUseCase.Execute(ctx.Request.Context(), wallet.WalletSummaryInput{UserID: userID})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToWalletSummaryResponse(summary))
}

// Get handles GET /wallets/:id requests.
func (c *WalletController) Get(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	walletID, ok := c.parseWalletID(ctx)
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), wallet.GetWalletInput{
		ID:     walletID,
		UserID: userID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToWalletResponse(output.Wallet))
}

// Create handles POST /wallets requests.
func (c *WalletController) Create(ctx *gin.Context) {
	c.upsert(ctx, nil)
}

// Update handles PATCH /wallets/:id requests.
func (c *WalletController) Update(ctx *gin.Context) {
	walletID, ok := c.parseWalletID(ctx)
	if !ok {
		return
	}
	c.upsert(ctx, &walletID)
}

func (c *WalletController) upsert(ctx *gin.Context, walletID *uuid.UUID) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.UpsertWalletRequest
	if err := bindBody(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	icon, err := imageFromRequest(ctx, "icon", req.IconURL)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid icon: " + err.Error(),
		})
		return
	}

	output, err := c.upsertUseCase.Execute(ctx.Request.Context(), wallet.UpsertWalletInput{
		ID:     walletID,
		UserID: userID,
		Name:   req.Name,
		Icon:   icon,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	status := http.StatusOK
	if output.Created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.ToWalletResponse(output.Wallet))
}

// Delete handles DELETE /wallets/:id requests.
// Transactions of the wallet are removed in the background after the response.
func (c *WalletController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	walletID, ok := c.parseWalletID(ctx)
	if !ok {
		return
	}

	if _, err := c.deleteUseCase.Execute(ctx.Request.Context(), wallet.DeleteWalletInput{
		ID:     walletID,
		UserID: userID,
	}); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *WalletController) parseWalletID(ctx *gin.Context) (uuid.UUID, bool) {
	walletID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid wallet ID format",
			Code:  string(domainerror.ErrCodeInvalidWalletID),
		})
		return uuid.Nil, false
	}
	return walletID, true
}
