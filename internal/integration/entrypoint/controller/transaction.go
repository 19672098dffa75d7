package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/transaction"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
)

// TransactionController handles transaction endpoints.
type TransactionController struct {
	listUseCase   *transaction.ListTransactionsUseCase
	getUseCase    *transaction.GetTransactionUseCase
	submitUseCase *transaction.SubmitTransactionUseCase
	deleteUseCase *transaction.DeleteTransactionUseCase
}

// NewTransactionController creates a new transaction controller instance.
func NewTransactionController(
	listUseCase *transaction.ListTransactionsUseCase,
	getUseCase *transaction.GetTransactionUseCase,
	submitUseCase *transaction.SubmitTransactionUseCase,
	deleteUseCase *transaction.DeleteTransactionUseCase,
) *TransactionController {
	return &TransactionController{
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
		submitUseCase: submitUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// List handles GET /transactions requests.
func (c *TransactionController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var query dto.ListTransactionsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid query parameters: " + err.Error(),
		})
		return
	}

	input := transaction.ListTransactionsInput{
		UserID: userID,
		Search: query.Search,
		Limit:  query.Limit,
	}

	if query.WalletID != "" {
		walletID, err := uuid.Parse(query.WalletID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid wallet ID format",
				Code:  string(domainerror.ErrCodeMissingTransactionWallet),
			})
			return
		}
		input.WalletID = &walletID
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransactionListResponse(output.Transactions))
}

// Get handles GET /transactions/:id requests.
func (c *TransactionController) Get(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	transactionID, ok := c.parseTransactionID(ctx)
	if !ok {
		return
	}

	txn, err := c.getUseCase.Execute(ctx.Request.Context(), transaction.GetTransactionInput{
		ID:     transactionID,
		UserID: userID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// Create handles POST /transactions requests.
func (c *TransactionController) Create(ctx *gin.Context) {
	c.submit(ctx, nil)
}

// Update handles PATCH /transactions/:id requests.
func (c *TransactionController) Update(ctx *gin.Context) {
	transactionID, ok := c.parseTransactionID(ctx)
	if !ok {
		return
	}
	c.submit(ctx, &transactionID)
}

func (c *TransactionController) submit(ctx *gin.Context, transactionID *uuid.UUID) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.SubmitTransactionRequest
	if err := bindBody(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	input := transaction.SubmitTransactionInput{
		ID:          transactionID,
		UserID:      userID,
		Type:        entity.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}

	if req.WalletID != "" {
		walletID, err := uuid.Parse(req.WalletID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid wallet ID format",
				Code:  string(domainerror.ErrCodeMissingTransactionWallet),
			})
			return
		}
		input.WalletID = walletID
	}

	if req.Date != nil && *req.Date != "" {
		date, err := dto.ParseDate(*req.Date)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid date format. Use YYYY-MM-DD or RFC3339",
				Code:  string(domainerror.ErrCodeInvalidTransactionDate),
			})
			return
		}
		input.Date = &date
	}

	receipt, err := imageFromRequest(ctx, "receipt", req.ReceiptURL)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid receipt: " + err.Error(),
		})
		return
	}
	input.Receipt = receipt

	output, err := c.submitUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	status := http.StatusOK
	if output.Created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.ToTransactionResponse(output.Transaction))
}

// Delete handles DELETE /transactions/:id requests.
// The optional wallet_id query parameter must match the transaction's wallet.
func (c *TransactionController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	transactionID, ok := c.parseTransactionID(ctx)
	if !ok {
		return
	}

	input := transaction.DeleteTransactionInput{
		TransactionID: transactionID,
		UserID:        userID,
	}

	if walletIDStr := ctx.Query("wallet_id"); walletIDStr != "" {
		walletID, err := uuid.Parse(walletIDStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid wallet ID format",
				Code:  string(domainerror.ErrCodeMissingTransactionWallet),
			})
			return
		}
		input.WalletID = &walletID
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDeleteTransactionResponse(output))
}

func (c *TransactionController) parseTransactionID(ctx *gin.Context) (uuid.UUID, bool) {
	transactionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid transaction ID format",
		})
		return uuid.Nil, false
	}
	return transactionID, true
}
