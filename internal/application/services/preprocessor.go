package services

import (
	"math"

	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var numericColumns = []string{
	entities.ColumnMoisture,
	entities.ColumnPH,
	entities.ColumnCarbon,
	entities.ColumnParticleSize,
	entities.ColumnAgeDays,
	entities.ColumnDegradationRate,
}

// FeatureMatrix is the numeric design matrix fed to the predictor.
type FeatureMatrix struct {
	Data    *mat.Dense
	Columns []string
}

// FittedPreprocessor holds the encoding parameters learned from a training
// set. It is immutable after Fit and travels with the trained model.
type FittedPreprocessor struct {
	Seen  map[entities.WasteType]bool
	Means []float64
	Stds  []float64
}

// FitPreprocessor learns category membership and per-column mean and
// standard deviation from the training samples.
func FitPreprocessor(samples []entities.WasteSample) *FittedPreprocessor {
	p := &FittedPreprocessor{
		Seen:  make(map[entities.WasteType]bool),
		Means: make([]float64, len(numericColumns)),
		Stds:  make([]float64, len(numericColumns)),
	}

	for _, s := range samples {
		if wt, ok := entities.ParseWasteType(string(s.WasteType)); ok {
			p.Seen[wt] = true
		}
	}

	col := make([]float64, len(samples))
	for j := range numericColumns {
		for i, s := range samples {
			col[i] = numericValues(s)[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		if math.IsNaN(mean) {
			mean = 0
		}
		p.Means[j] = mean
		p.Stds[j] = std
	}

	return p
}

// Columns returns the encoded column names: one per waste category followed
// by the scaled numeric columns.
func (p *FittedPreprocessor) Columns() []string {
	cols := make([]string, 0, len(entities.WasteTypes())+len(numericColumns))
	for _, wt := range entities.WasteTypes() {
		cols = append(cols, entities.ColumnWasteType+"="+string(wt))
	}
	return append(cols, numericColumns...)
}

// Transform encodes samples with the fitted parameters. Categories unknown
// or unseen at fit time are encoded as Other.
func (p *FittedPreprocessor) Transform(samples []entities.WasteSample) *FeatureMatrix {
	if len(samples) == 0 {
		// gonum has no zero-row matrices.
		return &FeatureMatrix{Data: &mat.Dense{}, Columns: p.Columns()}
	}

	types := entities.WasteTypes()
	data := mat.NewDense(len(samples), len(types)+len(numericColumns), nil)

	for i, s := range samples {
		data.Set(i, p.categoryIndex(s.WasteType), 1)
		for j, v := range numericValues(s) {
			data.Set(i, len(types)+j, stat.StdScore(v, p.Means[j], p.Stds[j]))
		}
	}

	return &FeatureMatrix{Data: data, Columns: p.Columns()}
}

// TransformOne encodes a single query sample.
func (p *FittedPreprocessor) TransformOne(s entities.WasteSample) []float64 {
	return p.Transform([]entities.WasteSample{s}).Data.RawRowView(0)
}

func (p *FittedPreprocessor) categoryIndex(label entities.WasteType) int {
	types := entities.WasteTypes()
	wt, ok := entities.ParseWasteType(string(label))
	if !ok || !p.Seen[wt] {
		wt = entities.WasteTypeOther
	}
	for i, t := range types {
		if t == wt {
			return i
		}
	}
	return len(types) - 1
}

func numericValues(s entities.WasteSample) []float64 {
	return []float64{
		s.MoistureContent,
		s.PHLevel,
		s.CarbonContent,
		s.ParticleSizeMM,
		float64(s.AgeDays),
		s.DegradationRate,
	}
}
