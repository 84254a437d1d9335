package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lughati/lughati/internal/textgen/prompt"
)

// ModeInfo is the public description of a processing mode. The system prompt
// itself is not exposed.
type ModeInfo struct {
	Slug        string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ModesResponse lists the available processing modes.
type ModesResponse struct {
	Modes []ModeInfo `json:"modes"`
}

// ModesHandler serves GET /api/modes from the supplied registry.
type ModesHandler struct {
	registry prompt.Registry
}

// NewModesHandler creates the mode listing handler.
func NewModesHandler(registry prompt.Registry) *ModesHandler {
	return &ModesHandler{registry: registry}
}

func (h *ModesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	modes := h.registry.List()

	resp := ModesResponse{Modes: make([]ModeInfo, 0, len(modes))}
	for _, m := range modes {
		resp.Modes = append(resp.Modes, ModeInfo{
			Slug:        m.Config.Slug,
			Name:        m.Config.Name,
			Description: m.Config.Description,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
