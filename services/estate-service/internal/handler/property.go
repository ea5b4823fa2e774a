package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidyaa00/REMS/services/estate-service/internal/middleware"
	"github.com/vidyaa00/REMS/services/estate-service/internal/payload"
	"github.com/vidyaa00/REMS/services/estate-service/internal/query"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
	"github.com/vidyaa00/REMS/shared/utilities"
)

func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	filter, err := query.ParsePropertyFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, err, "Error fetching properties")
		return
	}

	page, err := h.properties.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err, "Error fetching properties")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.PropertyListResponse{
		Properties: page.Properties,
		Pagination: payload.Pagination{
			Total: page.Total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.Pages,
		},
	})
}

func (h *Handler) FeaturedProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.Featured(r.Context())
	if err != nil {
		h.writeError(w, err, "Error fetching featured properties")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, properties)
}

func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	property, err := h.properties.Get(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		h.writeError(w, err, "Error fetching property")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, property)
}

func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var input usecase.PropertyInput
	if err := decode(r, &input); err != nil {
		utilities.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	property, err := h.properties.Create(r.Context(), input, user)
	if err != nil {
		h.writeError(w, err, "Error creating property")
		return
	}

	utilities.WriteJSON(w, http.StatusCreated, property)
}

func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var patch usecase.PropertyPatch
	if err := decode(r, &patch); err != nil {
		utilities.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	property, err := h.properties.Update(r.Context(), chi.URLParam(r, "id"), patch, user)
	if err != nil {
		h.writeError(w, err, "Error updating property")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, property)
}

func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.properties.Delete(r.Context(), chi.URLParam(r, "id"), user); err != nil {
		h.writeError(w, err, "Error deleting property")
		return
	}

	utilities.WriteMessage(w, http.StatusOK, "Property deleted successfully")
}

func (h *Handler) PropertiesByAgent(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.ListByAgent(r.Context(), chi.URLParam(r, "agentId"))
	if err != nil {
		h.writeError(w, err, "Error fetching agent properties")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, properties)
}

func (h *Handler) PropertiesByOwner(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.ListByOwner(r.Context(), chi.URLParam(r, "ownerId"))
	if err != nil {
		h.writeError(w, err, "Error fetching owner properties")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, properties)
}

func (h *Handler) VisitedProperties(w http.ResponseWriter, r *http.Request) {
	var req payload.VisitedRequest
	if err := decode(r, &req); err != nil || req.IDs == nil {
		utilities.WriteMessage(w, http.StatusBadRequest, "Invalid property IDs")
		return
	}

	summaries, err := h.properties.ListVisited(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, err, "Error fetching visited properties")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, summaries)
}
