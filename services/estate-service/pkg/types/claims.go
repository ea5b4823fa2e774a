package types

import "github.com/golang-jwt/jwt/v5"

// TokenPurpose separates session tokens from password reset tokens so one
// cannot be replayed as the other.
type TokenPurpose string

const (
	PurposeSession       TokenPurpose = "session"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// JWTClaims is the payload of every token issued by the estate service.
type JWTClaims struct {
	UserID  string       `json:"userId"`
	Role    string       `json:"role,omitempty"`
	Purpose TokenPurpose `json:"purpose"`
	jwt.RegisteredClaims
}
