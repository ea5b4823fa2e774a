package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/repository"
)

type memStore struct {
	files map[string]string
	err   error
}

func (s *memStore) Save(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		s.files = map[string]string{}
	}
	s.files[key] = string(data)
	return "/" + key, nil
}

func image(name string) File {
	return File{Name: name, ContentType: "image/jpeg", Body: strings.NewReader("data-" + name)}
}

func TestUploadImages(t *testing.T) {
	store := &memStore{}
	uc := NewUploadUsecase(store)

	urls, err := uc.UploadImages(context.Background(), []File{image("a.jpg"), image("b.JPG")})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	for _, url := range urls {
		assert.True(t, strings.HasPrefix(url, "/uploads/"), url)
		assert.True(t, strings.HasSuffix(url, ".jpg"), url)
	}
	assert.Len(t, store.files, 2)
}

func TestUploadImages_Rejections(t *testing.T) {
	uc := NewUploadUsecase(&memStore{})

	tooMany := make([]File, MaxImagesPerUpload+1)
	for i := range tooMany {
		tooMany[i] = image("x.jpg")
	}

	for name, files := range map[string][]File{
		"none":      nil,
		"too many":  tooMany,
		"not image": {image("a.jpg"), {Name: "a.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.UploadImages(context.Background(), files)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "images", ve.Field)
		})
	}
}

func TestUploadImages_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	uc := NewUploadUsecase(&memStore{err: boom})

	_, err := uc.UploadImages(context.Background(), []File{image("a.jpg")})
	assert.ErrorIs(t, err, boom)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryStore().Users()
	store := &memStore{}
	uc := NewProfileUsecase(users, store)

	u, err := users.CreateUser(ctx, &model.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	updated, err := uc.UpdateName(ctx, u.ID.Hex(), "  Ada Lovelace ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	_, err = uc.UpdateName(ctx, u.ID.Hex(), " ")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Name is required", ve.Message)

	url, err := uc.UploadPhoto(ctx, u.ID.Hex(), image("me.jpg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/images/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, "-me.jpg"), url)

	got, err := users.GetUser(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, url, got.ProfilePicture)

	_, err = uc.UploadPhoto(ctx, u.ID.Hex(), File{Name: "x.txt", ContentType: "text/plain", Body: strings.NewReader("x")})
	require.ErrorAs(t, err, &ve)
}
