package handler

import (
	"errors"
	"net/http"

	"github.com/vidyaa00/REMS/services/estate-service/internal/middleware"
	"github.com/vidyaa00/REMS/services/estate-service/internal/payload"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
	"github.com/vidyaa00/REMS/shared/utilities"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.bind(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		h.writeError(w, err, "Error registering user")
		return
	}

	utilities.WriteJSON(w, http.StatusCreated, payload.RegisterResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    payload.NewUserProfile(result.User),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.bind(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, err, "Error logging in")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.LoginResponse{
		Message: "Login successful",
		Token:   result.Token,
		User: payload.LoginUser{
			ID:    result.User.ID,
			Name:  result.User.Name,
			Email: result.User.Email,
			Role:  result.User.Role,
		},
	})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.bind(w, r, &req) {
		return
	}

	resetToken, err := h.auth.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			utilities.WriteMessage(w, http.StatusNotFound, "No user found with that email.")
			return
		}
		h.writeError(w, err, "Error processing request")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.ForgotPasswordResponse{
		Message:    "Password reset link sent to email (mock).",
		ResetToken: resetToken,
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeError(w, err, "Error resetting password")
		return
	}

	utilities.WriteMessage(w, http.StatusOK, "Password reset successful")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	utilities.WriteJSON(w, http.StatusOK, payload.NewUserProfile(user))
}

func (h *Handler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if !h.parseMultipart(w, r) {
		return
	}

	file, header, err := r.FormFile("profilePhoto")
	if err != nil {
		utilities.WriteMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	url, err := h.profile.UploadPhoto(r.Context(), user.ID.Hex(), usecase.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.writeError(w, err, "Error uploading profile photo")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.UploadProfilePhotoResponse{URL: url})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req payload.UpdateProfileRequest
	if !h.bind(w, r, &req) {
		return
	}

	updated, err := h.profile.UpdateName(r.Context(), user.ID.Hex(), req.Name)
	if err != nil {
		h.writeError(w, err, "Error updating profile")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.UpdateProfileResponse{Name: updated.Name})
}
