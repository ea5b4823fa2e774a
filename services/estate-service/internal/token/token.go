// Package token issues and verifies the stateless session and password reset
// tokens. Tokens are never stored server side and cannot be revoked before
// they expire.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/pkg/types"
	"github.com/vidyaa00/REMS/shared/auth"
)

// ErrInvalidToken covers malformed, unsigned, expired and wrong-purpose tokens.
var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified session token asserts.
type Identity struct {
	UserID string
	Role   model.Role
}

// Service mints and checks tokens.
type Service struct {
	jwtAuth    *auth.JWTAuthenticator
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewService creates a token Service.
func NewService(jwtAuth *auth.JWTAuthenticator, sessionTTL, resetTTL time.Duration) *Service {
	return &Service{
		jwtAuth:    jwtAuth,
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// Issue returns a session token for the user.
func (s *Service) Issue(userID string, role model.Role) (string, error) {
	return s.sign(userID, string(role), types.PurposeSession, s.sessionTTL)
}

// Verify checks a session token.
func (s *Service) Verify(tokenString string) (Identity, error) {
	claims, err := s.parse(tokenString, types.PurposeSession)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: claims.UserID, Role: model.Role(claims.Role)}, nil
}

// IssuePasswordReset returns a password reset token for the user.
func (s *Service) IssuePasswordReset(userID string) (string, error) {
	return s.sign(userID, "", types.PurposePasswordReset, s.resetTTL)
}

// VerifyPasswordReset checks a password reset token and returns its user id.
func (s *Service) VerifyPasswordReset(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, types.PurposePasswordReset)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}

func (s *Service) sign(userID, role string, purpose types.TokenPurpose, ttl time.Duration) (string, error) {
	claims := types.JWTClaims{
		UserID:           userID,
		Role:             role,
		Purpose:          purpose,
		RegisteredClaims: s.jwtAuth.RegisteredClaims(userID, ttl),
	}

	tokenStr, err := s.jwtAuth.GenerateToken(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}

	return tokenStr, nil
}

func (s *Service) parse(tokenString string, purpose types.TokenPurpose) (*types.JWTClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &types.JWTClaims{}
	if _, err := s.jwtAuth.ValidateTokenWithClaims(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Purpose != purpose || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
