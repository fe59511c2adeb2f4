package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wastenutrient/internal/application/services"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
)

// constantNoise always returns the same draw.
type constantNoise float64

func (c constantNoise) Float64() float64 { return float64(c) }

func TestSyntheticLabelGenerator_SeededDeterminism(t *testing.T) {
	samples := []entities.WasteSample{foodSample(), gardenSample(), paperSample()}

	first := services.NewSyntheticLabelGenerator(services.NewSeededNoise(7), 0.1)
	second := services.NewSyntheticLabelGenerator(services.NewSeededNoise(7), 0.1)

	for _, s := range samples {
		assert.Equal(t, first.Synthesize(s), second.Synthesize(s))
	}
}

func TestSyntheticLabelGenerator_DifferentSeedsDiffer(t *testing.T) {
	a := services.NewSyntheticLabelGenerator(services.NewSeededNoise(1), 0.1)
	b := services.NewSyntheticLabelGenerator(services.NewSeededNoise(2), 0.1)

	assert.NotEqual(t, a.Synthesize(foodSample()), b.Synthesize(foodSample()))
}

func TestSyntheticLabelGenerator_FoodScenarioWithinBands(t *testing.T) {
	gen := services.NewSyntheticLabelGenerator(services.NewSeededNoise(42), 0.1)

	for i := 0; i < 200; i++ {
		labels := gen.Synthesize(foodSample())

		assert.True(t, services.NitrogenBand.Contains(labels.Nitrogen), "nitrogen %v", labels.Nitrogen)
		assert.True(t, services.PhosphorusBand.Contains(labels.Phosphorus), "phosphorus %v", labels.Phosphorus)
		assert.True(t, services.PotassiumBand.Contains(labels.Potassium), "potassium %v", labels.Potassium)
	}
}

func TestSyntheticLabelGenerator_NoiseIsBounded(t *testing.T) {
	base := services.Baseline(gardenSample())

	low := services.NewSyntheticLabelGenerator(constantNoise(0), 0.1).Synthesize(gardenSample())
	mid := services.NewSyntheticLabelGenerator(constantNoise(0.5), 0.1).Synthesize(gardenSample())

	assert.InDelta(t, base.Nitrogen*0.9, low.Nitrogen, 1e-9)
	assert.InDelta(t, base.Phosphorus*0.9, low.Phosphorus, 1e-9)
	assert.Equal(t, base, mid)
}

func TestBaseline_FoodRicherThanPaper(t *testing.T) {
	food := foodSample()
	paper := food
	paper.WasteType = entities.WasteTypePaper

	f := services.Baseline(food)
	p := services.Baseline(paper)

	assert.Greater(t, f.Nitrogen, p.Nitrogen)
	assert.Greater(t, f.Phosphorus, p.Phosphorus)
	assert.Greater(t, f.Potassium, p.Potassium)
}

func TestBaseline_ClampsExtremes(t *testing.T) {
	s := foodSample()
	s.CarbonContent = 100
	s.ParticleSizeMM = 500

	labels := services.Baseline(s)

	assert.Equal(t, services.PhosphorusBand.Max, labels.Phosphorus)
}

func TestSyntheticLabelGenerator_Fill(t *testing.T) {
	n, p, k := 2.0, 0.5, 1.5
	measured := foodSample()
	measured.NitrogenPct, measured.PhosphorusPct, measured.PotassiumPct = &n, &p, &k

	partial := gardenSample()
	partial.PhosphorusPct = &p

	ds := &entities.Dataset{ID: "ds-1", Samples: []entities.WasteSample{measured, partial, paperSample()}}
	gen := services.NewSyntheticLabelGenerator(services.NewSeededNoise(3), 0.1)

	filled := gen.Fill(ds)

	require.NotSame(t, ds, filled)
	assert.Equal(t, 2, filled.SyntheticRows)
	assert.True(t, filled.NutrientsSynthetic())
	assert.False(t, filled.NeedsSynthesis())

	assert.Same(t, &n, filled.Samples[0].NitrogenPct)
	assert.Equal(t, 0.5, *filled.Samples[1].PhosphorusPct)
	assert.NotNil(t, filled.Samples[1].NitrogenPct)

	// Input is untouched.
	assert.Nil(t, ds.Samples[1].NitrogenPct)
	assert.Equal(t, 0, ds.SyntheticRows)
}

func gardenSample() entities.WasteSample {
	return entities.WasteSample{
		WasteType:       entities.WasteTypeGarden,
		MoistureContent: 40,
		PHLevel:         7.0,
		CarbonContent:   38,
		ParticleSizeMM:  12,
		AgeDays:         90,
		DegradationRate: 0.8,
	}
}

func paperSample() entities.WasteSample {
	return entities.WasteSample{
		WasteType:       entities.WasteTypePaper,
		MoistureContent: 15,
		PHLevel:         6.8,
		CarbonContent:   55,
		ParticleSizeMM:  20,
		AgeDays:         10,
		DegradationRate: 0.3,
	}
}
