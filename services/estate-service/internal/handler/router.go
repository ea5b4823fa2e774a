package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/vidyaa00/REMS/services/estate-service/internal/middleware"
)

// RouterOptions configures the HTTP surface around a Handler.
type RouterOptions struct {
	AllowedOrigins []string
	Gate           *middleware.AuthGate
	// Limiter guards the unauthenticated auth endpoints. Nil disables it.
	Limiter *middleware.RateLimiter
	// StaticDir, when set, is served under /uploads and /images/uploads.
	StaticDir string
}

func NewRouter(logger *zerolog.Logger, h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(hlog.NewHandler(*logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("request")
	}))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	if opts.StaticDir != "" {
		files := noListing(http.FileServer(http.Dir(opts.StaticDir)))
		r.Handle("/uploads/*", files)
		r.Handle("/images/uploads/*", files)
	}

	requireAuth := opts.Gate.Require

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if opts.Limiter != nil {
					r.Use(opts.Limiter.Limit)
				}
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
				r.Post("/forgot-password", h.ForgotPassword)
				r.Post("/reset-password", h.ResetPassword)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", h.Me)
				r.Post("/upload-profile-photo", h.UploadProfilePhoto)
				r.Put("/update-profile", h.UpdateProfile)
			})
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", h.ListProperties)
			r.Get("/featured", h.FeaturedProperties)
			r.Get("/agent/{agentId}", h.PropertiesByAgent)
			r.Get("/owner/{ownerId}", h.PropertiesByOwner)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", h.CreateProperty)
				r.Post("/visited", h.VisitedProperties)
				r.Get("/{id}", h.GetProperty)
				r.Put("/{id}", h.UpdateProperty)
				r.Delete("/{id}", h.DeleteProperty)
			})
		})

		r.With(requireAuth).Post("/upload", h.UploadImages)
		r.Post("/tools/mortgage", h.Mortgage)
	})

	return r
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
