package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wastenutrient/internal/application/services"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

// labelledSamples builds n varied samples labelled with the noise-free baseline.
func labelledSamples(n int) []entities.WasteSample {
	types := entities.WasteTypes()
	out := make([]entities.WasteSample, n)
	for i := range out {
		s := entities.WasteSample{
			WasteType:       types[i%5],
			MoistureContent: 20 + float64((i*7)%60),
			PHLevel:         5.5 + float64(i%6)*0.4,
			CarbonContent:   25 + float64((i*11)%30),
			ParticleSizeMM:  2 + float64((i*3)%20),
			AgeDays:         5 + (i*13)%120,
			DegradationRate: 0.3 + float64(i%5)*0.35,
		}
		labels := services.Baseline(s)
		s.NitrogenPct = &labels.Nitrogen
		s.PhosphorusPct = &labels.Phosphorus
		s.PotassiumPct = &labels.Potassium
		out[i] = s
	}
	return out
}

func labelledDataset(n int) *entities.Dataset {
	return &entities.Dataset{ID: "ds-test", Samples: labelledSamples(n)}
}

func TestNutrientPredictor_MinimumRows(t *testing.T) {
	p := services.NewNutrientPredictor(5, 0.5)

	t.Run("four rows fail", func(t *testing.T) {
		model, err := p.Fit(context.Background(), labelledSamples(4))

		assert.Nil(t, model)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientData))
	})

	t.Run("five rows succeed", func(t *testing.T) {
		model, err := p.Fit(context.Background(), labelledSamples(5))

		require.NoError(t, err)
		assert.NotEmpty(t, model.ID)
		assert.Equal(t, 5, model.RowCount)
	})

	t.Run("floor cannot be lowered", func(t *testing.T) {
		low := services.NewNutrientPredictor(2, 0.5)

		assert.Equal(t, 5, low.MinRows())
		_, err := low.Fit(context.Background(), labelledSamples(3))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientData))
	})
}

func TestNutrientPredictor_RejectsUnlabelledRows(t *testing.T) {
	p := services.NewNutrientPredictor(5, 0.5)
	samples := labelledSamples(6)
	samples[2] = samples[2].WithoutNutrients()

	_, err := p.Fit(context.Background(), samples)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestNutrientPredictor_FitsTrainingData(t *testing.T) {
	p := services.NewNutrientPredictor(5, 0.01)
	samples := labelledSamples(60)

	model, err := p.Fit(context.Background(), samples)
	require.NoError(t, err)

	var mean float64
	for _, s := range samples {
		mean += *s.NitrogenPct
	}
	mean /= float64(len(samples))

	var ssRes, ssTot float64
	for _, s := range samples {
		pred := p.Predict(model, s)
		d := pred.NitrogenPct - *s.NitrogenPct
		ssRes += d * d
		ssTot += (*s.NitrogenPct - mean) * (*s.NitrogenPct - mean)
	}
	assert.Less(t, ssRes, 0.5*ssTot)
	assert.Len(t, model.Coefficients(entities.NutrientNitrogen), 13)
}

func TestNutrientPredictor_PredictionsClamped(t *testing.T) {
	p := services.NewNutrientPredictor(5, 0.5)
	model, err := p.Fit(context.Background(), labelledSamples(20))
	require.NoError(t, err)

	extremes := []entities.WasteSample{
		{WasteType: entities.WasteTypeFood, MoistureContent: 100, PHLevel: 14, CarbonContent: 100, ParticleSizeMM: 1e6, AgeDays: 1e6, DegradationRate: 1e6},
		{WasteType: entities.WasteTypePaper, MoistureContent: 0, PHLevel: 0, CarbonContent: 0, ParticleSizeMM: 1e-6, AgeDays: 0, DegradationRate: 0},
		{WasteType: "Sawdust", MoistureContent: 50, PHLevel: 7, CarbonContent: 40, ParticleSizeMM: 5, AgeDays: 30, DegradationRate: 1},
	}

	for _, s := range extremes {
		pred := p.Predict(model, s)
		for _, n := range entities.PrimaryNutrients() {
			v := pred.Value(n)
			assert.GreaterOrEqual(t, v, 0.0, "%s for %s", n, s.WasteType)
			assert.LessOrEqual(t, v, 100.0, "%s for %s", n, s.WasteType)
		}
		assert.Equal(t, model.ID, pred.ModelID)
	}
}

func TestNutrientPredictor_FitReturnsFreshModel(t *testing.T) {
	p := services.NewNutrientPredictor(5, 0.5)
	samples := labelledSamples(10)

	first, err := p.Fit(context.Background(), samples)
	require.NoError(t, err)
	second, err := p.Fit(context.Background(), samples)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Coefficients(entities.NutrientPotassium), second.Coefficients(entities.NutrientPotassium))
}

func TestNutrientPredictor_CancelledContext(t *testing.T) {
	p := services.NewNutrientPredictor(5, 0.5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model, err := p.Fit(ctx, labelledSamples(10))

	assert.Nil(t, model)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNutrientPredictor_Train(t *testing.T) {
	p := services.NewNutrientPredictor(5, 0.5)

	t.Run("reports holdout metrics", func(t *testing.T) {
		model, report, err := p.Train(context.Background(), labelledDataset(20), services.HoldoutOptions{TestFraction: 0.2, Seed: 42})

		require.NoError(t, err)
		assert.Equal(t, model.ID, report.ModelID)
		assert.Equal(t, "ds-test", report.DatasetID)
		assert.Equal(t, 20, report.Rows)
		assert.Equal(t, 20, model.RowCount)
		assert.True(t, report.HoldoutEvaluated)
		assert.Equal(t, 4, report.HoldoutRows)
		assert.Len(t, report.Metrics, 3)
		assert.GreaterOrEqual(t, report.Metrics[entities.NutrientNitrogen].RMSE, 0.0)
	})

	t.Run("skips holdout on small datasets", func(t *testing.T) {
		model, report, err := p.Train(context.Background(), labelledDataset(5), services.HoldoutOptions{TestFraction: 0.2, Seed: 42})

		require.NoError(t, err)
		assert.NotNil(t, model)
		assert.False(t, report.HoldoutEvaluated)
		assert.Empty(t, report.Metrics)
	})

	t.Run("marks synthetic models", func(t *testing.T) {
		ds := labelledDataset(8)
		ds.SyntheticRows = 8

		model, report, err := p.Train(context.Background(), ds, services.HoldoutOptions{TestFraction: 0.2, Seed: 1})

		require.NoError(t, err)
		assert.True(t, model.Synthetic)
		assert.True(t, report.Synthetic)
		assert.True(t, p.Predict(model, foodSample()).Synthetic)
	})

	t.Run("insufficient data", func(t *testing.T) {
		_, _, err := p.Train(context.Background(), labelledDataset(4), services.HoldoutOptions{TestFraction: 0.2, Seed: 1})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientData))
	})
}
