// Package image contains the image reference resolution use case.
package image

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// ResolveImageUseCase turns an image payload into a stored image reference.
type ResolveImageUseCase struct {
	uploader adapter.ImageUploader
}

// NewResolveImageUseCase creates a new ResolveImageUseCase instance.
func NewResolveImageUseCase(uploader adapter.ImageUploader) *ResolveImageUseCase {
	return &ResolveImageUseCase{
		uploader: uploader,
	}
}

// Execute returns nil for an empty payload, the URL unchanged when the image is
// already stored, and the uploaded URL for a local file.
func (uc *ResolveImageUseCase) Execute(ctx context.Context, input *entity.ImageInput, folder string) (*string, error) {
	if input.IsEmpty() {
		return nil, nil
	}

	if input.URL != "" {
		url := input.URL
		return &url, nil
	}

	url, err := uc.uploader.Upload(ctx, input.File, folder)
	if err != nil {
		slog.Warn("Image upload failed",
			"folder", folder,
			"file", input.File.Name,
			"error", err,
		)
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &url, nil
}
