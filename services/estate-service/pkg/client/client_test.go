package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyaa00/REMS/services/estate-service/internal/handler"
	"github.com/vidyaa00/REMS/services/estate-service/internal/middleware"
	"github.com/vidyaa00/REMS/services/estate-service/internal/repository"
	"github.com/vidyaa00/REMS/services/estate-service/internal/storage"
	"github.com/vidyaa00/REMS/services/estate-service/internal/token"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
	"github.com/vidyaa00/REMS/shared/auth"
	"github.com/vidyaa00/REMS/shared/validation"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	v, err := validation.New()
	require.NoError(t, err)

	mem := repository.NewMemoryStore()
	users := mem.Users()
	tokens := token.NewService(auth.NewJWTAuthenticator("estate", "estate", []byte("test-secret")), time.Hour, time.Hour)
	files := storage.NewLocalStore(t.TempDir())
	authUC := usecase.NewAuthUsecase(&logger, users, tokens, nil, usecase.AuthOptions{AllowAdminRegistration: true})

	h := handler.NewHandler(handler.Deps{
		Logger:     &logger,
		Validator:  v,
		Auth:       authUC,
		Profile:    usecase.NewProfileUsecase(users, files),
		Properties: usecase.NewPropertyUsecase(&logger, mem.Properties(), users, nil, v),
		Uploads:    usecase.NewUploadUsecase(files),
		Store:      users,
	})

	srv := httptest.NewServer(handler.NewRouter(&logger, h, handler.RouterOptions{
		Gate: middleware.NewAuthGate(&logger, authUC),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func villa(title string, price float64) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "Sea view",
		"price":       price,
		"location":    "Algarve",
		"type":        "villa",
		"status":      "for-sale",
		"bedrooms":    4,
		"bathrooms":   3,
		"area":        240,
		"address":     map[string]string{"city": "Faro"},
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	tokenPath := filepath.Join(t.TempDir(), "session", "token.json")

	c := New(srv.URL)
	s := NewSession(c, NewFileTokenStore(tokenPath))

	require.NoError(t, s.Init(ctx))
	_, ok := s.User()
	assert.False(t, ok)

	user, err := s.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1", Role: "agent"})
	require.NoError(t, err)
	assert.Equal(t, "agent", user.Role)
	assert.NotEmpty(t, c.Token())

	// a fresh process picks the persisted token up again
	c2 := New(srv.URL)
	s2 := NewSession(c2, NewFileTokenStore(tokenPath))
	require.NoError(t, s2.Init(ctx))
	restored, ok := s2.User()
	require.True(t, ok)
	assert.Equal(t, user.ID, restored.ID)
	assert.Equal(t, "ada@example.com", restored.Email)

	require.NoError(t, s2.Logout())
	_, ok = s2.User()
	assert.False(t, ok)
	assert.Empty(t, c2.Token())

	_, err = c2.Me(ctx)
	assert.True(t, IsUnauthorized(err))

	_, err = s2.Login(ctx, "ada@example.com", "nope!!")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	_, err = s2.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	_, ok = s2.User()
	assert.True(t, ok)
}

func TestSessionInitClearsRejectedToken(t *testing.T) {
	srv := newServer(t)
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save("not-a-token"))

	c := New(srv.URL)
	s := NewSession(c, store)
	require.NoError(t, s.Init(context.Background()))

	_, ok := s.User()
	assert.False(t, ok)
	assert.Empty(t, c.Token())

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestPropertyCalls(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c := New(srv.URL)
	s := NewSession(c, NewFileTokenStore(filepath.Join(t.TempDir(), "token.json")))
	me, err := s.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	cheap, err := c.CreateProperty(ctx, villa("Cheap", 100000))
	require.NoError(t, err)
	_, err = c.CreateProperty(ctx, villa("Dear", 900000))
	require.NoError(t, err)

	list, err := c.ListProperties(ctx, url.Values{"sortBy": {"price:desc"}, "limit": {"1"}})
	require.NoError(t, err)
	require.Len(t, list.Properties, 1)
	assert.Equal(t, "Dear", list.Properties[0].Title)
	assert.Equal(t, 2, list.Pagination.Pages)
	require.NotNil(t, list.Properties[0].Agent)
	assert.Equal(t, "Ada", list.Properties[0].Agent.Name)

	got, err := c.GetProperty(ctx, cheap.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)

	updated, err := c.UpdateProperty(ctx, cheap.ID, map[string]any{"price": 120000})
	require.NoError(t, err)
	assert.Equal(t, 120000.0, updated.Price)
	require.NotNil(t, updated.Owner)
	assert.Equal(t, me.ID, updated.Owner.ID)

	owned, err := c.PropertiesByOwner(ctx, me.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	visited, err := c.VisitedProperties(ctx, []string{cheap.ID})
	require.NoError(t, err)
	require.Len(t, visited, 1)
	assert.Equal(t, "Cheap", visited[0].Title)

	require.NoError(t, c.DeleteProperty(ctx, cheap.ID))
	_, err = c.GetProperty(ctx, cheap.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	m, err := c.Mortgage(ctx, 300000, 20, 6, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1438.92, m.MonthlyPayment, 0.001)
}
