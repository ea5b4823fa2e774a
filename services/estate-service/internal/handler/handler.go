// Package handler exposes the estate service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vidyaa00/REMS/services/estate-service/internal/query"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
	"github.com/vidyaa00/REMS/shared/utilities"
	"github.com/vidyaa00/REMS/shared/validation"
)

const defaultMaxUploadBytes = 10 << 20

// Handler serves the REST API.
type Handler struct {
	logger         *zerolog.Logger
	validator      *validation.Validator
	auth           usecase.AuthUsecase
	profile        usecase.ProfileUsecase
	properties     usecase.PropertyUsecase
	uploads        usecase.UploadUsecase
	store          utilities.Pinger
	maxUploadBytes int64
}

// Deps lists the collaborators of a Handler.
type Deps struct {
	Logger     *zerolog.Logger
	Validator  *validation.Validator
	Auth       usecase.AuthUsecase
	Profile    usecase.ProfileUsecase
	Properties usecase.PropertyUsecase
	Uploads    usecase.UploadUsecase
	// Store is pinged by GET /health.
	Store          utilities.Pinger
	MaxUploadBytes int64
}

func NewHandler(deps Deps) *Handler {
	maxUploadBytes := deps.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}

	return &Handler{
		logger:         deps.Logger,
		validator:      deps.Validator,
		auth:           deps.Auth,
		profile:        deps.Profile,
		properties:     deps.Properties,
		uploads:        deps.Uploads,
		store:          deps.Store,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("health check failed")
			utilities.WriteMessage(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}

	utilities.WriteMessage(w, http.StatusOK, "ok")
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// bind decodes and validates a request body, writing a 400 on failure.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decode(r, v); err != nil {
		utilities.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(v); err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			utilities.WriteMessage(w, http.StatusBadRequest, fe.Message)
			return false
		}

		h.logger.Error().Err(err).Msg("failed to validate request")
		utilities.WriteMessage(w, http.StatusInternalServerError, "Server error")
		return false
	}

	return true
}

// writeError maps usecase failures to a status and a client-safe message.
// Anything unexpected is logged and reported as fallback with a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	var ve *usecase.ValidationError
	var pe *query.ParamError

	switch {
	case errors.As(err, &ve):
		utilities.WriteMessage(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &pe):
		utilities.WriteMessage(w, http.StatusBadRequest, pe.Message)
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		utilities.WriteMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		utilities.WriteMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, usecase.ErrInvalidResetToken):
		utilities.WriteMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, usecase.ErrForbidden):
		utilities.WriteMessage(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, usecase.ErrPropertyNotFound):
		utilities.WriteMessage(w, http.StatusNotFound, "Property not found")
	case errors.Is(err, usecase.ErrUserNotFound):
		utilities.WriteMessage(w, http.StatusNotFound, "User not found")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		utilities.WriteMessage(w, http.StatusInternalServerError, fallback)
	}
}
