// Package httpapi serves rendered stat sheets and single-bar displays over
// HTTP. It is read-mostly and carries no authentication.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/petstats/internal/sheet"
	"github.com/mesh-intelligence/petstats/internal/statbar"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	sheets *sheet.Service
	logger *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(sheets *sheet.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sheets: sheets, logger: logger}
}

// DisplayRequest is the body of POST /api/v1/display.
type DisplayRequest struct {
	Pet   string `json:"pet,omitempty"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Style string `json:"style,omitempty"`
}

// HealthCheck returns service health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "petstats",
	})
}

// PetSheet renders the stat sheet of a stored pet.
func (h *Handler) PetSheet(w http.ResponseWriter, r *http.Request) {
	style, err := statbar.ParseStyle(r.URL.Query().Get("style"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sh, err := h.sheets.WithStyle(style).ForPet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sh)
}

// Display computes one bar from a raw value and range.
func (h *Handler) Display(w http.ResponseWriter, r *http.Request) {
	var req DisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Label == "" {
		respondError(w, http.StatusBadRequest, "label is required")
		return
	}
	style, err := statbar.ParseStyle(req.Style)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sheets.Refresh(); err != nil {
		h.respondDomainError(w, err)
		return
	}
	res, err := h.sheets.Engine.Compute(req.Pet,
		types.StatObservation{Label: req.Label, Value: req.Value},
		types.StatDefinition{Name: req.Label, Min: req.Min, Max: req.Max}, style)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Breed returns the resolved ranges of a breed. Unknown breeds resolve to
// the default ranges.
func (h *Handler) Breed(w http.ResponseWriter, r *http.Request) {
	if err := h.sheets.Refresh(); err != nil {
		h.respondDomainError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	respondJSON(w, http.StatusOK, map[string]any{
		"known":  h.sheets.Breeds.Known(name),
		"config": h.sheets.Breeds.Lookup(name),
	})
}

// respondDomainError maps store and engine errors to status codes.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrInvalidRange), errors.Is(err, types.ErrUnknownPattern):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, types.ErrInvalidID):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
