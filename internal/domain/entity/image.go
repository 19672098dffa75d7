package entity

// Image folders on the asset host.
const (
	ImageFolderWallets      = "wallets"
	ImageFolderTransactions = "transactions"
)

// ImageFile is a local image that still needs to be uploaded.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ImageInput is either an already stored image reference or a file awaiting upload.
// A nil *ImageInput, or one with neither field set, means "no image".
type ImageInput struct {
	URL  string
	File *ImageFile
}

// IsEmpty reports whether the input carries neither a reference nor a file.
func (i *ImageInput) IsEmpty() bool {
	return i == nil || (i.URL == "" && (i.File == nil || len(i.File.Data) == 0))
}
