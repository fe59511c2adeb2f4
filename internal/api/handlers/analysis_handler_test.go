package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wastenutrient/internal/adapters/ingest"
	"github.com/zatekoja/wastenutrient/internal/adapters/plants"
	"github.com/zatekoja/wastenutrient/internal/api/handlers"
	"github.com/zatekoja/wastenutrient/internal/api/routes"
	"github.com/zatekoja/wastenutrient/internal/application/services"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
)

const foodJSON = `{"waste_type":"Food","moisture_content":60,"ph_level":6.5,"carbon_content":45.2,"particle_size_mm":5,"age_days":30,"degradation_rate":1.2}`

func newTestServer(t *testing.T, maxUploadBytes int64) http.Handler {
	t.Helper()
	catalog := plants.DefaultCatalog()
	svc := services.NewAnalysisService(
		services.NewNutrientPredictor(5, 0.5),
		services.NewRecommendationEngine(catalog, 0.2),
		catalog,
		nil,
		nil,
		services.AnalysisOptions{
			SyntheticSeed: 42,
			NoiseFraction: 0.1,
			Holdout:       services.HoldoutOptions{TestFraction: 0.2, Seed: 42},
		},
	)
	router := routes.NewRouter(
		handlers.NewAnalysisHandler(svc, ingest.NewCSVReader(1000), maxUploadBytes),
		handlers.NewPlantHandler(catalog),
		[]string{"*"},
		nil,
	)
	return router.SetupRoutes()
}

// wasteCSV renders n rows without nutrient columns.
func wasteCSV(n int) string {
	types := []string{"Food", "Garden", "Paper", "Mixed", "Agricultural"}
	var b strings.Builder
	b.WriteString("Waste_Type,Moisture_Content,pH_Level,Carbon_Content,Particle_Size_mm,Age_Days,Degradation_Rate\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s,%d,%.1f,%d,%d,%d,%.2f\n",
			types[i%5], 20+(i*7)%60, 5.5+float64(i%6)*0.4, 25+(i*11)%30, 2+(i*3)%20, 5+(i*13)%120, 0.3+float64(i%5)*0.35)
	}
	return b.String()
}

func do(h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	w := do(newTestServer(t, 1<<20), http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestAnalysisHandler_Flow(t *testing.T) {
	h := newTestServer(t, 1<<20)

	w := do(h, http.MethodPost, "/api/predictions", "application/json", foodJSON)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(h, http.MethodPost, "/api/datasets", "text/csv", wasteCSV(20))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ds := decode(t, w)
	assert.Equal(t, float64(20), ds["rows"])
	assert.Equal(t, float64(20), ds["synthetic_rows"])
	assert.Equal(t, true, ds["nutrients_synthetic"])

	w = do(h, http.MethodGet, "/api/models/current", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(h, http.MethodPost, "/api/models", "", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	report := decode(t, w)
	assert.Equal(t, true, report["holdout_evaluated"])
	assert.Equal(t, true, report["nutrients_synthetic"])

	w = do(h, http.MethodPost, "/api/predictions", "application/json", foodJSON)
	require.Equal(t, http.StatusOK, w.Code)
	var pred entities.PredictionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&pred))
	assert.Equal(t, report["model_id"], pred.ModelID)
	assert.True(t, pred.Synthetic)
	assert.GreaterOrEqual(t, pred.NitrogenPct, 0.0)
	assert.LessOrEqual(t, pred.NitrogenPct, 100.0)

	w = do(h, http.MethodPost, "/api/recommendations", "application/json", `{"sample":`+foodJSON+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result entities.AnalysisResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Len(t, result.Recommendations, 5)
	assert.NotEmpty(t, result.General.Message)

	w = do(h, http.MethodPost, "/api/recommendations", "application/json", `{"sample":`+foodJSON+`,"plant":"Cactus"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "UNKNOWN_PLANT", body["type"])
	assert.NotNil(t, body["prediction"])
}

func TestAnalysisHandler_UploadErrors(t *testing.T) {
	t.Run("schema error names the column", func(t *testing.T) {
		h := newTestServer(t, 1<<20)
		csv := "Waste_Type,Moisture_Content\nFood,60\n"

		w := do(h, http.MethodPost, "/api/datasets", "text/csv", csv)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "SCHEMA", body["type"])
		assert.Equal(t, "pH_Level", body["field"])
	})

	t.Run("empty body", func(t *testing.T) {
		w := do(newTestServer(t, 1<<20), http.MethodPost, "/api/datasets", "text/csv", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		w := do(newTestServer(t, 64), http.MethodPost, "/api/datasets", "text/csv", wasteCSV(20))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("insufficient rows", func(t *testing.T) {
		h := newTestServer(t, 1<<20)
		w := do(h, http.MethodPost, "/api/datasets", "text/csv", wasteCSV(4))
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(h, http.MethodPost, "/api/models", "application/json", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INSUFFICIENT_DATA", decode(t, w)["type"])
	})
}

func TestAnalysisHandler_MultipartUpload(t *testing.T) {
	h := newTestServer(t, 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "waste.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(wasteCSV(8)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := do(h, http.MethodPost, "/api/datasets", mw.FormDataContentType(), buf.String())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(8), decode(t, w)["rows"])

	w = do(h, http.MethodGet, "/api/datasets/current", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalysisHandler_TrainOptions(t *testing.T) {
	h := newTestServer(t, 1<<20)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/api/datasets", "text/csv", wasteCSV(20)).Code)

	w := do(h, http.MethodPost, "/api/models", "application/json", `{"test_fraction":1.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPost, "/api/models", "application/json", `{"test_fraction":0.25,"seed":7}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(5), decode(t, w)["holdout_rows"])

	w = do(h, http.MethodPost, "/api/models", "application/json", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisHandler_PredictInvalidSample(t *testing.T) {
	h := newTestServer(t, 1<<20)
	sample := strings.Replace(foodJSON, `"ph_level":6.5`, `"ph_level":15`, 1)

	w := do(h, http.MethodPost, "/api/predictions", "application/json", sample)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "pH_Level", decode(t, w)["field"])
}
