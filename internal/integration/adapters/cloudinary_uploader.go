// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

const (
	defaultCloudinaryBaseURL = "https://api.cloudinary.com"
	defaultUploadTimeout     = 30 * time.Second
	imageResourceType        = "image"
)

// CloudinaryConfig holds the settings of an unsigned Cloudinary upload preset.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	BaseURL      string
	Timeout      time.Duration
}

// CloudinaryUploader implements the adapter.ImageUploader interface using the Cloudinary SDK.
type CloudinaryUploader struct {
	cld          *cloudinary.Cloudinary
	uploadPreset string
	timeout      time.Duration
	initErr      error
}

// NewCloudinaryUploader creates a new image uploader for the given cloud.
// A missing cloud name or preset is reported on the first upload.
func NewCloudinaryUploader(cfg CloudinaryConfig) adapter.ImageUploader {
	u := &CloudinaryUploader{
		uploadPreset: cfg.UploadPreset,
		timeout:      cfg.Timeout,
	}
	if u.timeout <= 0 {
		u.timeout = defaultUploadTimeout
	}

	if cfg.CloudName == "" || cfg.UploadPreset == "" {
		u.initErr = fmt.Errorf("image upload is not configured")
		return u
	}

	u.cld, u.initErr = newCloudinary(cfg)
	return u
}

func newCloudinary(cfg CloudinaryConfig) (*cloudinary.Cloudinary, error) {
	// Unsigned presets need no API key or secret.
	conf, err := cldconfig.NewFromParams(cfg.CloudName, "", "")
	if err != nil {
		return nil, fmt.Errorf("invalid cloudinary configuration: %w", err)
	}

	conf.API.UploadPrefix = defaultCloudinaryBaseURL
	if cfg.BaseURL != "" {
		conf.API.UploadPrefix = cfg.BaseURL
	}

	cld, err := cloudinary.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return cld, nil
}

// Upload sends the file through the unsigned preset and returns its secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, file *entity.ImageFile, folder string) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", fmt.Errorf("no image data to upload")
	}
	if u.initErr != nil {
		return "", u.initErr
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	result, err := u.cld.Upload.UnsignedUpload(ctx, bytes.NewReader(file.Data), u.uploadPreset, uploader.UploadParams{
		Folder:       folder,
		ResourceType: imageResourceType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("upload rejected: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}

	return result.SecureURL, nil
}
