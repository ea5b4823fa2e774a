package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/repository"
	"github.com/vidyaa00/REMS/services/estate-service/internal/storage"
)

// File is an uploaded file as received from a client.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

func (f File) isImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

type ProfileUsecase interface {
	UpdateName(ctx context.Context, userID, name string) (*model.User, error)
	// UploadPhoto stores an image and makes it the user's profile picture.
	UploadPhoto(ctx context.Context, userID string, file File) (string, error)
}

type profileUsecase struct {
	userRepo repository.UserRepository
	store    storage.Store
	now      func() time.Time
}

func NewProfileUsecase(userRepo repository.UserRepository, store storage.Store) ProfileUsecase {
	return &profileUsecase{userRepo: userRepo, store: store, now: time.Now}
}

func (u *profileUsecase) UpdateName(ctx context.Context, userID, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}

	user, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{Name: &name})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *profileUsecase) UploadPhoto(ctx context.Context, userID string, file File) (string, error) {
	if !file.isImage() {
		return "", invalid("profilePhoto", "Only image files are allowed")
	}

	url, err := u.store.Save(ctx, storage.ProfilePhotoKey(file.Name, u.now()), file.ContentType, file.Body)
	if err != nil {
		return "", err
	}

	if _, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{ProfilePicture: &url}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return url, nil
}
