package usecase

import (
	"context"
	"fmt"

	"github.com/vidyaa00/REMS/services/estate-service/internal/storage"
)

// MaxImagesPerUpload bounds a single listing image upload.
const MaxImagesPerUpload = 10

type UploadUsecase interface {
	// UploadImages stores listing images and returns their URLs in input order.
	// Files already stored stay in place when a later one fails.
	UploadImages(ctx context.Context, files []File) ([]string, error)
}

type uploadUsecase struct {
	store storage.Store
}

func NewUploadUsecase(store storage.Store) UploadUsecase {
	return &uploadUsecase{store: store}
}

func (u *uploadUsecase) UploadImages(ctx context.Context, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, invalid("images", "No files uploaded")
	}
	if len(files) > MaxImagesPerUpload {
		return nil, invalid("images", fmt.Sprintf("At most %d images can be uploaded at once", MaxImagesPerUpload))
	}
	for _, f := range files {
		if !f.isImage() {
			return nil, invalid("images", "Only image files are allowed")
		}
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := u.store.Save(ctx, storage.PropertyImageKey(f.Name), f.ContentType, f.Body)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, nil
}
