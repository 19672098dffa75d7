package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/middleware"
)

// maxImageSize is the largest image accepted in a multipart upload.
const maxImageSize = 10 << 20

var errImageTooLarge = errors.New("image exceeds 10MB")

// requireUser returns the authenticated user ID or writes a 401 response.
func requireUser(ctx *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return uuid.Nil, false
	}
	return userID, true
}

// isMultipart reports whether the request carries multipart form data.
func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.ContentType(), gin.MIMEMultipartPOSTForm)
}

// bindBody binds a JSON or multipart body into req.
func bindBody(ctx *gin.Context, req any) error {
	if isMultipart(ctx) {
		return ctx.ShouldBind(req)
	}
	if ctx.Request.ContentLength == 0 {
		return nil
	}
	return ctx.ShouldBindJSON(req)
}

// imageFromRequest builds the image input of a write request. An uploaded
// file in field wins over url; neither yields nil.
func imageFromRequest(ctx *gin.Context, field string, url *string) (*entity.ImageInput, error) {
	if isMultipart(ctx) {
		header, err := ctx.FormFile(field)
		switch {
		case err == nil:
			if header.Size > maxImageSize {
				return nil, errImageTooLarge
			}
			file, err := header.Open()
			if err != nil {
				return nil, err
			}
			defer file.Close()

			data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
			if err != nil {
				return nil, err
			}
			if len(data) > maxImageSize {
				return nil, errImageTooLarge
			}

			return &entity.ImageInput{File: &entity.ImageFile{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			}}, nil
		case !errors.Is(err, http.ErrMissingFile):
			return nil, err
		}
	}

	if url != nil && strings.TrimSpace(*url) != "" {
		return &entity.ImageInput{URL: strings.TrimSpace(*url)}, nil
	}
	return nil, nil
}
