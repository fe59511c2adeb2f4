package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/wastenutrient/internal/adapters/ingest"
	"github.com/zatekoja/wastenutrient/internal/application/services"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

const (
	minTestFraction = 0.1
	maxTestFraction = 0.5
)

// AnalysisHandler handles dataset, model, prediction and recommendation requests
type AnalysisHandler struct {
	service        *services.AnalysisService
	reader         *ingest.CSVReader
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, reader *ingest.CSVReader, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		reader:         reader,
		maxUploadBytes: maxUploadBytes,
	}
}

type datasetResponse struct {
	ID                 string    `json:"id"`
	Rows               int       `json:"rows"`
	MissingColumns     []string  `json:"missing_columns"`
	SyntheticRows      int       `json:"synthetic_rows"`
	NutrientsSynthetic bool      `json:"nutrients_synthetic"`
	CreatedAt          time.Time `json:"created_at"`
}

func newDatasetResponse(ds *entities.Dataset) datasetResponse {
	missing := ds.MissingColumns
	if missing == nil {
		missing = []string{}
	}
	return datasetResponse{
		ID:                 ds.ID,
		Rows:               ds.Len(),
		MissingColumns:     missing,
		SyntheticRows:      ds.SyntheticRows,
		NutrientsSynthetic: ds.NutrientsSynthetic(),
		CreatedAt:          ds.CreatedAt,
	}
}

type modelResponse struct {
	ID                 string    `json:"id"`
	TrainedAt          time.Time `json:"trained_at"`
	Rows               int       `json:"rows"`
	NutrientsSynthetic bool      `json:"nutrients_synthetic"`
}

type trainRequest struct {
	TestFraction *float64 `json:"test_fraction"`
	Seed         *uint64  `json:"seed"`
}

type recommendRequest struct {
	Sample entities.WasteSample `json:"sample"`
	Plant  string               `json:"plant"`
}

type recommendErrorResponse struct {
	errorResponse
	Prediction entities.PredictionResult `json:"prediction"`
}

// UploadDataset handles POST /api/datasets with a text/csv body or a
// multipart form carrying a "file" field.
func (h *AnalysisHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	data, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := h.reader.Read(r.Context(), bytes.NewReader(data))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	ds, err := h.service.LoadDataset(r.Context(), table)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newDatasetResponse(ds))
}

// GetDataset handles GET /api/datasets/current
func (h *AnalysisHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.service.Dataset()
	if !ok {
		respondWithAppError(w, r, apperrors.NewNotFoundError("no dataset loaded"))
		return
	}
	respondWithJSON(w, http.StatusOK, newDatasetResponse(ds))
}

// TrainModel handles POST /api/models. The body is optional.
func (h *AnalysisHandler) TrainModel(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	opts, err := h.holdoutOptions(req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	report, err := h.service.Train(r.Context(), opts)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, report)
}

// GetModel handles GET /api/models/current
func (h *AnalysisHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	model, ok := h.service.Model()
	if !ok {
		respondWithAppError(w, r, apperrors.NewNotFoundError("no model trained"))
		return
	}
	respondWithJSON(w, http.StatusOK, modelResponse{
		ID:                 model.ID,
		TrainedAt:          model.TrainedAt,
		Rows:               model.RowCount,
		NutrientsSynthetic: model.Synthetic,
	})
}

// Predict handles POST /api/predictions
func (h *AnalysisHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var sample entities.WasteSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pred, err := h.service.Predict(r.Context(), sample)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pred)
}

// Recommend handles POST /api/recommendations. Without a plant every
// catalog plant is scored.
func (h *AnalysisHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Recommend(r.Context(), req.Sample, strings.TrimSpace(req.Plant))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeUnknownPlant) && result != nil {
			appErr, _ := apperrors.As(err)
			respondWithJSON(w, http.StatusNotFound, recommendErrorResponse{
				errorResponse: errorResponse{Error: appErr.Message, Type: string(appErr.Type)},
				Prediction:    result.Prediction,
			})
			return
		}
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *AnalysisHandler) readUpload(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("multipart field \"file\" is required")
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

func (h *AnalysisHandler) holdoutOptions(req trainRequest) (*services.HoldoutOptions, error) {
	if req.TestFraction == nil && req.Seed == nil {
		return nil, nil
	}

	opts := h.service.HoldoutDefaults()
	if req.TestFraction != nil {
		if *req.TestFraction < minTestFraction || *req.TestFraction > maxTestFraction {
			return nil, apperrors.NewValidationError(fmt.Sprintf("test_fraction must be within [%v, %v]", minTestFraction, maxTestFraction))
		}
		opts.TestFraction = *req.TestFraction
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	return &opts, nil
}
