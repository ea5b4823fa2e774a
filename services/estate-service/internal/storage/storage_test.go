package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	key := PropertyImageKey("Front View.JPG")
	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	now := time.UnixMilli(1717000000123)
	assert.Equal(t, "images/uploads/1717000000123-me.png", ProfilePhotoKey("me.png", now))
	assert.Equal(t, "images/uploads/1717000000123-passwd", ProfilePhotoKey("../../etc/passwd", now))
	assert.Equal(t, "images/uploads/1717000000123-my-photo.png", ProfilePhotoKey(`C:\Users\me\my photo.png`, now))
}

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	url, err := store.Save(context.Background(), "uploads/a.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = store.Save(context.Background(), "uploads/a.jpg", "image/jpeg", strings.NewReader("again"))
	assert.Error(t, err, "existing files are never overwritten")
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Save(context.Background(), "../outside.jpg", "image/jpeg", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestS3Store_Save(t *testing.T) {
	var (
		mu          sync.Mutex
		gotMethod   string
		gotPath     string
		gotBody     string
		gotMimeType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod, gotPath, gotBody, gotMimeType = r.Method, r.URL.Path, string(body), r.Header.Get("Content-Type")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	store := NewS3Store(client, S3Options{Bucket: "listings", Region: "us-east-1", PublicBaseURL: "https://cdn.example.com/"})

	url, err := store.Save(context.Background(), "uploads/b.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/b.png", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/listings/uploads/b.png", gotPath)
	assert.Contains(t, gotBody, "png-bytes")
	assert.Equal(t, "image/png", gotMimeType)
}

func TestNewS3Store_DefaultBaseURL(t *testing.T) {
	store := NewS3Store(nil, S3Options{Bucket: "listings", Region: "eu-west-1"})
	assert.Equal(t, "https://listings.s3.eu-west-1.amazonaws.com", store.baseURL)
}
