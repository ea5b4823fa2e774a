package payload

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"     validate:"omitempty,oneof=user agent admin"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// UserProfile is the full self view returned by register and /me.
type UserProfile struct {
	ID                bson.ObjectID   `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              model.Role      `json:"role"`
	Phone             string          `json:"phone,omitempty"`
	ProfilePicture    string          `json:"profilePicture,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	VisitedProperties []bson.ObjectID `json:"visitedProperties"`
	SavedProperties   []bson.ObjectID `json:"savedProperties"`
}

func NewUserProfile(u *model.User) UserProfile {
	p := UserProfile{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		Phone:             u.Phone,
		ProfilePicture:    u.ProfilePicture,
		CreatedAt:         u.CreatedAt,
		VisitedProperties: u.VisitedProperties,
		SavedProperties:   u.SavedProperties,
	}
	if p.VisitedProperties == nil {
		p.VisitedProperties = []bson.ObjectID{}
	}
	if p.SavedProperties == nil {
		p.SavedProperties = []bson.ObjectID{}
	}
	return p
}

// LoginUser is the short identity returned on login.
type LoginUser struct {
	ID    bson.ObjectID `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  model.Role    `json:"role"`
}

type RegisterResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    LoginUser `json:"user"`
}

type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

type UploadProfilePhotoResponse struct {
	URL string `json:"url"`
}

type UpdateProfileResponse struct {
	Name string `json:"name"`
}
