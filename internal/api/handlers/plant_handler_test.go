package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wastenutrient/internal/adapters/plants"
	"github.com/zatekoja/wastenutrient/internal/api/handlers"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
)

func TestPlantHandler_ListPlants(t *testing.T) {
	handler := handlers.NewPlantHandler(plants.DefaultCatalog())
	w := httptest.NewRecorder()

	handler.ListPlants(w, httptest.NewRequest(http.MethodGet, "/api/plants", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Plants []entities.PlantProfile `json:"plants"`
		Count  int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 5, body.Count)
	assert.Equal(t, entities.PlantTomatoes, body.Plants[0].Name)
}

func TestPlantHandler_GetPlant(t *testing.T) {
	handler := handlers.NewPlantHandler(plants.DefaultCatalog())

	t.Run("known plant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/plants/leafy-greens", nil)
		req.SetPathValue("name", "leafy-greens")
		w := httptest.NewRecorder()

		handler.GetPlant(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var profile entities.PlantProfile
		require.NoError(t, json.NewDecoder(w.Body).Decode(&profile))
		assert.Equal(t, entities.PlantLeafyGreens, profile.Name)
		assert.Len(t, profile.NutrientRanges, 3)
	})

	t.Run("unknown plant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/plants/Cactus", nil)
		req.SetPathValue("name", "Cactus")
		w := httptest.NewRecorder()

		handler.GetPlant(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
