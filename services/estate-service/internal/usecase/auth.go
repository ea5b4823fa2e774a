package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/repository"
	"github.com/vidyaa00/REMS/services/estate-service/internal/token"
	"github.com/vidyaa00/REMS/shared/security"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	// Authenticate resolves a session token to its user, without the password hash.
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
	// RequestPasswordReset issues a reset token and mails a reset link when
	// mail is configured. The token is also returned to the caller.
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, tokenString, newPassword string) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token string
	User  *model.User
}

// Mailer sends HTML mail. *mailer.Mailer satisfies it.
type Mailer interface {
	Enabled() bool
	SendHTML(to []string, subject, htmlBody string) error
}

// AuthOptions holds the tunable parts of AuthUsecase.
type AuthOptions struct {
	AllowAdminRegistration bool
	PasswordResetURL       string
	PasswordResetTTL       time.Duration
}

type authUsecase struct {
	logger   *zerolog.Logger
	userRepo repository.UserRepository
	tokens   *token.Service
	mailer   Mailer
	opts     AuthOptions
}

func NewAuthUsecase(
	logger *zerolog.Logger,
	userRepo repository.UserRepository,
	tokens *token.Service,
	mailer Mailer,
	opts AuthOptions,
) AuthUsecase {
	return &authUsecase{
		logger:   logger,
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		opts:     opts,
	}
}

// NormalizeEmail trims and lowercases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	role := model.RoleUser
	if params.Role != "" {
		role = model.Role(params.Role)
	}
	if !role.Valid() {
		return nil, invalid("role", "Invalid role")
	}
	if role == model.RoleAdmin && !u.opts.AllowAdminRegistration {
		return nil, invalid("role", "Admin registration is disabled")
	}
	if len(params.Password) < MinPasswordLength {
		return nil, invalid("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	email := NormalizeEmail(params.Email)

	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:     strings.TrimSpace(params.Name),
		Email:    email,
		Password: passwordHash,
		Phone:    strings.TrimSpace(params.Phone),
		Role:     role,
	})
	if err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}
	user.Password = ""

	return u.session(user)
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.Password); err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("unreadable password hash")
		return nil, ErrInvalidCredentials
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if security.NeedsRehash(user.Password) {
		u.upgradeHash(ctx, user.ID.Hex(), params.Password)
	}
	user.Password = ""

	return u.session(user)
}

// upgradeHash replaces a legacy bcrypt hash. Failure leaves the old hash usable.
func (u *authUsecase) upgradeHash(ctx context.Context, userID, password string) {
	passwordHash, err := security.HashPassword(password)
	if err == nil {
		_, err = u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{PasswordHash: &passwordHash})
	}
	if err != nil {
		u.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to rehash legacy password")
	}
}

func (u *authUsecase) session(user *model.User) (*AuthResult, error) {
	tokenStr, err := u.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: tokenStr, User: user}, nil
}

func (u *authUsecase) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	identity, err := u.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetUser(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *authUsecase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}

		return "", err
	}

	tokenStr, err := u.tokens.IssuePasswordReset(user.ID.Hex())
	if err != nil {
		return "", err
	}

	if u.mailer != nil && u.mailer.Enabled() {
		if err := u.sendResetMail(user, tokenStr); err != nil {
			u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send password reset email")
		}
	}

	return tokenStr, nil
}

func (u *authUsecase) sendResetMail(user *model.User, tokenStr string) error {
	resetLink := u.opts.PasswordResetURL + "?token=" + url.QueryEscape(tokenStr)
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to choose a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s.</p>
		<p>If you did not request a password reset, you can ignore this email.</p>
	`, user.Name, resetLink, resetLink, u.opts.PasswordResetTTL)

	return u.mailer.SendHTML([]string{user.Email}, "Password Reset Request", htmlBody)
}

func (u *authUsecase) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	userID, err := u.tokens.VerifyPasswordReset(tokenString)
	if err != nil {
		return ErrInvalidResetToken
	}

	if len(newPassword) < MinPasswordLength {
		return invalid("newPassword", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}

		return err
	}

	return nil
}
