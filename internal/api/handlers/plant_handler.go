package handlers

import (
	"net/http"

	"github.com/zatekoja/wastenutrient/internal/domain/repositories"
)

// PlantHandler serves the plant requirement catalog
type PlantHandler struct {
	plants repositories.PlantRepository
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(plants repositories.PlantRepository) *PlantHandler {
	return &PlantHandler{plants: plants}
}

// ListPlants handles GET /api/plants
func (h *PlantHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	profiles := h.plants.List()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"plants": profiles,
		"count":  len(profiles),
	})
}

// GetPlant handles GET /api/plants/{name}
func (h *PlantHandler) GetPlant(w http.ResponseWriter, r *http.Request) {
	profile, err := h.plants.Lookup(r.PathValue("name"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}
