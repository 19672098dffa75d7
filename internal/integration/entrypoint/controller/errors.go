package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
)

// statusCodeForError maps a domain error kind to an HTTP status code.
func statusCodeForError(err error) int {
	switch {
	case errors.Is(err, domainerror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainerror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerror.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domainerror.ErrInsufficientBalance),
		errors.Is(err, domainerror.ErrIrreversibleDelete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerror.ErrWalletBusy):
		return http.StatusConflict
	case errors.Is(err, domainerror.ErrImageUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the error response for a failed use case.
// Internal errors are logged and answered with a generic message.
func handleError(ctx *gin.Context, err error) {
	status := statusCodeForError(err)
	code := domainerror.CodeOf(err)

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"code", code,
			"error", err,
		)
		ctx.JSON(status, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  code,
		})
		return
	}

	ctx.JSON(status, dto.ErrorResponse{
		Error: domainerror.MessageOf(err),
		Code:  code,
	})
}
