package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	"github.com/zatekoja/wastenutrient/internal/domain/providers"
	"github.com/zatekoja/wastenutrient/internal/domain/repositories"
	"github.com/zatekoja/wastenutrient/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// AnalysisOptions configures an AnalysisService.
type AnalysisOptions struct {
	SyntheticSeed   uint64
	NoiseFraction   float64
	Holdout         HoldoutOptions
	CacheTTLSeconds int
}

// AnalysisService is the single-operator session: it owns the current
// dataset and model and runs the validate, synthesize, train, predict and
// recommend flow.
type AnalysisService struct {
	validator *SchemaValidator
	predictor *NutrientPredictor
	engine    *RecommendationEngine
	plants    repositories.PlantRepository
	cache     providers.CacheProvider
	metrics   *observability.Metrics
	opts      AnalysisOptions

	mu      sync.RWMutex
	dataset *entities.Dataset
	model   *TrainedModel
}

// NewAnalysisService creates a new analysis service. cache and metrics may be nil.
func NewAnalysisService(
	predictor *NutrientPredictor,
	engine *RecommendationEngine,
	plants repositories.PlantRepository,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	opts AnalysisOptions,
) *AnalysisService {
	return &AnalysisService{
		validator: NewSchemaValidator(),
		predictor: predictor,
		engine:    engine,
		plants:    plants,
		cache:     cache,
		metrics:   metrics,
		opts:      opts,
	}
}

// LoadDataset validates a table and, when nutrient labels are missing,
// fills them synthetically. On error the current dataset is left in place.
func (s *AnalysisService) LoadDataset(ctx context.Context, table entities.Table) (*entities.Dataset, error) {
	ctx, span := observability.StartSpan(ctx, "AnalysisService.LoadDataset")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	ds, err := s.validator.Validate(table)
	if err != nil {
		observability.RecordError(span, err)
		logger.Warn().Err(err).Int("rows", len(table.Rows)).Msg("dataset rejected")
		return nil, err
	}

	if ds.NeedsSynthesis() {
		// A fresh source per load keeps synthesis reproducible for the same input.
		gen := NewSyntheticLabelGenerator(NewSeededNoise(s.opts.SyntheticSeed), s.opts.NoiseFraction)
		ds = gen.Fill(ds)
		logger.Warn().
			Str("dataset_id", ds.ID).
			Int("synthetic_rows", ds.SyntheticRows).
			Strs("missing_columns", ds.MissingColumns).
			Msg("nutrient labels synthesized, predictions will be illustrative only")
	}

	observability.SetSpanAttributes(span,
		attribute.String("dataset.id", ds.ID),
		attribute.Int("dataset.rows", ds.Len()),
		attribute.Int("dataset.synthetic_rows", ds.SyntheticRows),
	)

	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	logger.Info().Str("dataset_id", ds.ID).Int("rows", ds.Len()).Msg("dataset loaded")
	return ds, nil
}

// Dataset returns the current dataset, if any.
func (s *AnalysisService) Dataset() (*entities.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.dataset != nil
}

// Train fits a new model on the current dataset. opts overrides the
// configured holdout settings when non-nil. A failed run keeps the previous model.
func (s *AnalysisService) Train(ctx context.Context, opts *HoldoutOptions) (*entities.TrainingReport, error) {
	ctx, span := observability.StartSpan(ctx, "AnalysisService.Train")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	ds, ok := s.Dataset()
	if !ok {
		return nil, apperrors.NewConflictError("no dataset loaded")
	}

	holdout := s.opts.Holdout
	if opts != nil {
		holdout = *opts
	}

	start := time.Now()
	model, report, err := s.predictor.Train(ctx, ds, holdout)
	observability.RecordTrainingMetric(ctx, s.metrics, ds.Len(), ds.NutrientsSynthetic(), err == nil, time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Str("dataset_id", ds.ID).Msg("training failed")
		return nil, err
	}

	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	event := logger.Info().
		Str("model_id", model.ID).
		Str("dataset_id", ds.ID).
		Int("rows", report.Rows).
		Bool("synthetic", report.Synthetic).
		Dur("duration", report.Duration)
	for n, m := range report.Metrics {
		event = event.Float64(fmt.Sprintf("r2_%s", n), m.R2)
	}
	event.Msg("model trained")

	observability.SetSpanAttributes(span, attribute.String("model.id", model.ID))
	return report, nil
}

// HoldoutDefaults returns the configured holdout settings.
func (s *AnalysisService) HoldoutDefaults() HoldoutOptions {
	return s.opts.Holdout
}

// Model returns the current model, if any.
func (s *AnalysisService) Model() (*TrainedModel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.model != nil
}

// Predict estimates nutrients for one sample with the current model.
func (s *AnalysisService) Predict(ctx context.Context, sample entities.WasteSample) (entities.PredictionResult, error) {
	ctx, span := observability.StartSpan(ctx, "AnalysisService.Predict")
	defer span.End()

	if err := s.validator.ValidateSample(sample); err != nil {
		observability.RecordError(span, err)
		return entities.PredictionResult{}, err
	}

	model, ok := s.Model()
	if !ok {
		return entities.PredictionResult{}, apperrors.NewConflictError("no model trained")
	}

	query := sample.WithoutNutrients()
	key := predictionKey(model.ID, query)

	if pred, hit := s.cachedPrediction(ctx, key); hit {
		observability.RecordPredictionMetric(ctx, s.metrics, pred.Synthetic, true)
		return pred, nil
	}

	pred := s.predictor.Predict(model, query)
	s.storePrediction(ctx, key, pred)
	observability.RecordPredictionMetric(ctx, s.metrics, pred.Synthetic, false)

	observability.SetSpanAttributes(span,
		attribute.String("model.id", model.ID),
		attribute.Bool("prediction.synthetic", pred.Synthetic),
	)
	return pred, nil
}

// Recommend predicts nutrients and scores them for one plant, or for every
// catalog plant when plant is empty. For an unknown plant the result still
// carries the prediction alongside the error.
func (s *AnalysisService) Recommend(ctx context.Context, sample entities.WasteSample, plant string) (*entities.AnalysisResult, error) {
	ctx, span := observability.StartSpan(ctx, "AnalysisService.Recommend")
	defer span.End()

	pred, err := s.Predict(ctx, sample)
	if err != nil {
		return nil, err
	}

	result := &entities.AnalysisResult{
		Prediction: pred,
		General:    s.engine.GeneralAssessment(sample, pred),
	}

	if plant == "" {
		result.Recommendations = s.engine.RecommendAll(sample, pred)
		return result, nil
	}

	rec, err := s.engine.RecommendFor(sample, pred, plant)
	if err != nil {
		observability.RecordError(span, err)
		result.Recommendations = []entities.Recommendation{}
		return result, err
	}
	result.Recommendations = []entities.Recommendation{rec}
	return result, nil
}

// Plants lists the catalog.
func (s *AnalysisService) Plants() []entities.PlantProfile {
	return s.plants.List()
}

// Plant looks one profile up by name.
func (s *AnalysisService) Plant(name string) (entities.PlantProfile, error) {
	return s.plants.Lookup(name)
}

func (s *AnalysisService) cachedPrediction(ctx context.Context, key string) (entities.PredictionResult, bool) {
	if s.cache == nil {
		return entities.PredictionResult{}, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("prediction cache read failed")
		}
		observability.RecordCacheLookup(ctx, s.metrics, false)
		return entities.PredictionResult{}, false
	}

	var pred entities.PredictionResult
	if err := json.Unmarshal(data, &pred); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("discarding unreadable cached prediction")
		observability.RecordCacheLookup(ctx, s.metrics, false)
		return entities.PredictionResult{}, false
	}

	observability.RecordCacheLookup(ctx, s.metrics, true)
	return pred, true
}

func (s *AnalysisService) storePrediction(ctx context.Context, key string, pred entities.PredictionResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(pred)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("prediction cache write failed")
	}
}

// predictionKey scopes a sample fingerprint to one model, so retraining
// never serves a stale prediction.
func predictionKey(modelID string, s entities.WasteSample) string {
	raw := fmt.Sprintf("%s|%g|%g|%g|%g|%d|%g",
		s.WasteType, s.MoistureContent, s.PHLevel, s.CarbonContent, s.ParticleSizeMM, s.AgeDays, s.DegradationRate)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("prediction:%s:%s", modelID, hex.EncodeToString(sum[:16]))
}
