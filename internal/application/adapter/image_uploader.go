package adapter

import (
	"context"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// ImageUploader stores images on the asset host.
type ImageUploader interface {
	// Upload stores the file under the given folder and returns its public URL.
	Upload(ctx context.Context, file *entity.ImageFile, folder string) (string, error)
}
