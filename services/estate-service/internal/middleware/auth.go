// Package middleware holds the HTTP pipeline stages shared by the routes.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/token"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
	"github.com/vidyaa00/REMS/shared/utilities"
)

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
	msgUserNotFound = "User not found"
)

type contextKey struct{}

var userKey = contextKey{}

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
}

// AuthGate rejects requests without a valid session and puts the caller in
// the request context.
type AuthGate struct {
	logger *zerolog.Logger
	auth   Authenticator
}

func NewAuthGate(logger *zerolog.Logger, auth Authenticator) *AuthGate {
	return &AuthGate{logger: logger, auth: auth}
}

func (g *AuthGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := BearerToken(r)
		if tokenString == "" {
			utilities.WriteMessage(w, http.StatusUnauthorized, msgNoToken)
			return
		}

		user, err := g.auth.Authenticate(r.Context(), tokenString)
		switch {
		case err == nil:
		case errors.Is(err, token.ErrInvalidToken):
			utilities.WriteMessage(w, http.StatusUnauthorized, msgInvalidToken)
			return
		case errors.Is(err, usecase.ErrUserNotFound):
			utilities.WriteMessage(w, http.StatusUnauthorized, msgUserNotFound)
			return
		default:
			g.logger.Error().Err(err).Msg("failed to authenticate request")
			utilities.WriteMessage(w, http.StatusInternalServerError, "Server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// BearerToken returns the Authorization header value without its Bearer
// scheme. A bare token is accepted as well.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by AuthGate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}
