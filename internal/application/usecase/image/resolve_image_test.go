package image

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

type fakeUploader struct {
	url    string
	err    error
	calls  int
	folder string
}

func (f *fakeUploader) Upload(_ context.Context, _ *entity.ImageFile, folder string) (string, error) {
	f.calls++
	f.folder = folder
	return f.url, f.err
}

func TestResolveImageUseCase(t *testing.T) {
	ctx := context.Background()
	file := &entity.ImageFile{Name: "r.png", ContentType: "image/png", Data: []byte{1, 2, 3}}

	t.Run("empty input resolves to nil", func(t *testing.T) {
		uploader := &fakeUploader{}
		uc := NewResolveImageUseCase(uploader)

		for _, input := range []*entity.ImageInput{nil, {}, {File: &entity.ImageFile{}}} {
			url, err := uc.Execute(ctx, input, entity.ImageFolderWallets)
			require.NoError(t, err)
			assert.Nil(t, url)
		}
		assert.Zero(t, uploader.calls)
	})

	t.Run("stored reference passes through", func(t *testing.T) {
		uploader := &fakeUploader{}
		uc := NewResolveImageUseCase(uploader)

		url, err := uc.Execute(ctx, &entity.ImageInput{URL: "https://img.example/a.png"}, entity.ImageFolderWallets)
		require.NoError(t, err)
		require.NotNil(t, url)
		assert.Equal(t, "https://img.example/a.png", *url)
		assert.Zero(t, uploader.calls)
	})

	t.Run("file is uploaded to the folder", func(t *testing.T) {
		uploader := &fakeUploader{url: "https://img.example/transactions/r.png"}
		uc := NewResolveImageUseCase(uploader)

		url, err := uc.Execute(ctx, &entity.ImageInput{File: file}, entity.ImageFolderTransactions)
		require.NoError(t, err)
		require.NotNil(t, url)
		assert.Equal(t, "https://img.example/transactions/r.png", *url)
		assert.Equal(t, entity.ImageFolderTransactions, uploader.folder)
	})

	t.Run("upload failure", func(t *testing.T) {
		boom := errors.New("host unavailable")
		uc := NewResolveImageUseCase(&fakeUploader{err: boom})

		url, err := uc.Execute(ctx, &entity.ImageInput{File: file}, entity.ImageFolderTransactions)
		assert.Nil(t, url)
		assert.ErrorIs(t, err, boom)
	})
}
