package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	"github.com/zatekoja/wastenutrient/internal/evaluation"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const (
	minPrediction = 0.0
	maxPrediction = 100.0
)

// TrainedModel is an immutable fitted predictor. A new one is produced by
// every Fit; nothing mutates an existing model.
type TrainedModel struct {
	ID        string
	TrainedAt time.Time
	RowCount  int
	Synthetic bool

	preprocessor *FittedPreprocessor
	// coefficients per target; index 0 is the intercept.
	coefficients map[entities.Nutrient][]float64
}

// Coefficients returns a copy of the fitted weights for one target.
func (m *TrainedModel) Coefficients(n entities.Nutrient) []float64 {
	return append([]float64(nil), m.coefficients[n]...)
}

// HoldoutOptions controls the train/test split used for reporting.
type HoldoutOptions struct {
	TestFraction float64
	Seed         uint64
}

// NutrientPredictor fits one ridge regression per nutrient target.
type NutrientPredictor struct {
	minRows int
	lambda  float64
	now     func() time.Time
}

// NewNutrientPredictor creates a predictor. minRows below the hard floor of
// five is raised to five.
func NewNutrientPredictor(minRows int, lambda float64) *NutrientPredictor {
	if minRows < 5 {
		minRows = 5
	}
	return &NutrientPredictor{
		minRows: minRows,
		lambda:  lambda,
		now:     time.Now,
	}
}

// MinRows returns the smallest training set Fit accepts.
func (p *NutrientPredictor) MinRows() int {
	return p.minRows
}

// Fit trains a model on fully labelled samples.
func (p *NutrientPredictor) Fit(ctx context.Context, samples []entities.WasteSample) (*TrainedModel, error) {
	if len(samples) < p.minRows {
		return nil, apperrors.NewInsufficientDataError(len(samples), p.minRows)
	}
	for i, s := range samples {
		if !s.HasNutrients() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("sample %d has no nutrient labels", i+1))
		}
	}

	pre := FitPreprocessor(samples)
	design := withIntercept(pre.Transform(samples).Data)

	targets := make(map[entities.Nutrient]*mat.VecDense, 3)
	for _, n := range entities.PrimaryNutrients() {
		targets[n] = mat.NewVecDense(len(samples), nil)
	}
	for i, s := range samples {
		v := s.Nutrients()
		targets[entities.NutrientNitrogen].SetVec(i, v.Nitrogen)
		targets[entities.NutrientPhosphorus].SetVec(i, v.Phosphorus)
		targets[entities.NutrientPotassium].SetVec(i, v.Potassium)
	}

	// The Gram matrix is shared read-only by the three solves.
	gram := ridgeGram(design, p.lambda)

	coefficients := make([][]float64, len(entities.PrimaryNutrients()))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range entities.PrimaryNutrients() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			beta, err := solveRidge(gram, design, targets[n])
			if err != nil {
				return apperrors.NewInternalError(fmt.Sprintf("failed to fit %s", n), err)
			}
			coefficients[i] = beta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	model := &TrainedModel{
		ID:           uuid.New().String(),
		TrainedAt:    p.now().UTC(),
		RowCount:     len(samples),
		preprocessor: pre,
		coefficients: make(map[entities.Nutrient][]float64, len(coefficients)),
	}
	for i, n := range entities.PrimaryNutrients() {
		model.coefficients[n] = coefficients[i]
	}
	return model, nil
}

// Train fits the final model on the whole dataset and, when the split leaves
// enough rows on both sides, reports holdout metrics from a separate fit on
// the training part.
func (p *NutrientPredictor) Train(ctx context.Context, ds *entities.Dataset, opts HoldoutOptions) (*TrainedModel, *entities.TrainingReport, error) {
	start := p.now()

	if ds.Len() < p.minRows {
		return nil, nil, apperrors.NewInsufficientDataError(ds.Len(), p.minRows)
	}

	report := &entities.TrainingReport{
		DatasetID: ds.ID,
		Rows:      ds.Len(),
		Synthetic: ds.NutrientsSynthetic(),
	}

	split := evaluation.TrainTestSplit(ds.Len(), opts.TestFraction, opts.Seed)
	guard := evaluation.NewGuardrails(evaluation.GuardrailConfig{MinTrainRows: p.minRows, MinTestRows: 2})
	if guard.ShouldEvaluate(split) {
		metrics, err := p.holdout(ctx, ds.Samples, split)
		if err != nil {
			return nil, nil, err
		}
		report.HoldoutEvaluated = true
		report.HoldoutRows = len(split.Test)
		report.Metrics = metrics
	}

	model, err := p.Fit(ctx, ds.Samples)
	if err != nil {
		return nil, nil, err
	}
	model.Synthetic = ds.NutrientsSynthetic()

	report.ModelID = model.ID
	report.TrainedAt = model.TrainedAt
	report.Duration = p.now().Sub(start)

	return model, report, nil
}

// Predict estimates N, P and K for one sample. Results are clamped to [0, 100].
func (p *NutrientPredictor) Predict(model *TrainedModel, sample entities.WasteSample) entities.PredictionResult {
	x := model.preprocessor.TransformOne(sample)

	return entities.PredictionResult{
		NitrogenPct:   clampPrediction(linear(model.coefficients[entities.NutrientNitrogen], x)),
		PhosphorusPct: clampPrediction(linear(model.coefficients[entities.NutrientPhosphorus], x)),
		PotassiumPct:  clampPrediction(linear(model.coefficients[entities.NutrientPotassium], x)),
		ModelID:       model.ID,
		Synthetic:     model.Synthetic,
	}
}

func (p *NutrientPredictor) holdout(ctx context.Context, samples []entities.WasteSample, split evaluation.Split) (map[entities.Nutrient]entities.FitMetrics, error) {
	train := pick(samples, split.Train)
	test := pick(samples, split.Test)

	model, err := p.Fit(ctx, train)
	if err != nil {
		return nil, err
	}

	actual := make(map[entities.Nutrient][]float64, 3)
	predicted := make(map[entities.Nutrient][]float64, 3)
	for _, s := range test {
		pred := p.Predict(model, s)
		truth := s.Nutrients()
		for _, n := range entities.PrimaryNutrients() {
			predicted[n] = append(predicted[n], pred.Value(n))
		}
		actual[entities.NutrientNitrogen] = append(actual[entities.NutrientNitrogen], truth.Nitrogen)
		actual[entities.NutrientPhosphorus] = append(actual[entities.NutrientPhosphorus], truth.Phosphorus)
		actual[entities.NutrientPotassium] = append(actual[entities.NutrientPotassium], truth.Potassium)
	}

	metrics := make(map[entities.Nutrient]entities.FitMetrics, 3)
	for _, n := range entities.PrimaryNutrients() {
		s := evaluation.Score(actual[n], predicted[n])
		metrics[n] = entities.FitMetrics{R2: s.R2, RMSE: s.RMSE, MAE: s.MAE}
	}
	return metrics, nil
}

// withIntercept prepends a column of ones.
func withIntercept(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out
}

// ridgeGram returns AᵀA + λD where D is the identity with the intercept
// entry zeroed.
func ridgeGram(a *mat.Dense, lambda float64) *mat.Dense {
	_, c := a.Dims()
	var gram mat.Dense
	gram.Mul(a.T(), a)
	for j := 1; j < c; j++ {
		gram.Set(j, j, gram.At(j, j)+lambda)
	}
	return &gram
}

func solveRidge(gram, a *mat.Dense, y *mat.VecDense) ([]float64, error) {
	_, c := a.Dims()
	rhs := mat.NewVecDense(c, nil)
	rhs.MulVec(a.T(), y)

	beta := mat.NewVecDense(c, nil)
	if err := beta.SolveVec(gram, rhs); err != nil {
		// A Condition error still carries a usable solution.
		if _, illConditioned := err.(mat.Condition); !illConditioned {
			return nil, err
		}
	}

	out := make([]float64, c)
	for j := range out {
		out[j] = beta.AtVec(j)
	}
	return out, nil
}

func linear(beta, x []float64) float64 {
	if len(beta) == 0 {
		return 0
	}
	y := beta[0]
	for j, v := range x {
		y += beta[j+1] * v
	}
	return y
}

func clampPrediction(v float64) float64 {
	if math.IsNaN(v) {
		return minPrediction
	}
	return math.Min(math.Max(v, minPrediction), maxPrediction)
}

func pick(samples []entities.WasteSample, idx []int) []entities.WasteSample {
	out := make([]entities.WasteSample, len(idx))
	for i, j := range idx {
		out[i] = samples[j]
	}
	return out
}
