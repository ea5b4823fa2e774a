package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/token"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
)

type stubAuth map[string]*model.User

func (s stubAuth) Authenticate(_ context.Context, tok string) (*model.User, error) {
	switch tok {
	case "ghost":
		return nil, usecase.ErrUserNotFound
	case "broken":
		return nil, errors.New("db down")
	}
	if u, ok := s[tok]; ok {
		return u, nil
	}
	return nil, token.ErrInvalidToken
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

func TestAuthGate(t *testing.T) {
	logger := zerolog.Nop()
	user := &model.User{ID: bson.NewObjectID(), Name: "Ada", Role: model.RoleAgent}
	gate := NewAuthGate(&logger, stubAuth{"good": user})

	var seen *model.User
	h := gate.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "No token, authorization denied"},
		{"invalid", "Bearer nope", http.StatusUnauthorized, "Token is not valid"},
		{"unknown user", "Bearer ghost", http.StatusUnauthorized, "User not found"},
		{"store failure", "Bearer broken", http.StatusInternalServerError, "Server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, message(t, rec))
		})
	}

	for _, header := range []string{"Bearer good", "bearer good", "good"} {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, header)
		assert.Same(t, user, seen, header)
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001").Code)

	rec := do("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests, please try again later", message(t, rec))

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code, "buckets are per client")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1003").Code, "bucket refills")

	now = now.Add(time.Hour)
	rl.evict(time.Minute)
	assert.Empty(t, rl.visitors)
}
