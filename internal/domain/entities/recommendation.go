package entities

import "time"

// PredictionResult is the predicted nutrient content of one query sample.
type PredictionResult struct {
	NitrogenPct   float64 `json:"nitrogen_pct"`
	PhosphorusPct float64 `json:"phosphorus_pct"`
	PotassiumPct  float64 `json:"potassium_pct"`
	ModelID       string  `json:"model_id"`

	// Synthetic is true when the model learned from generated labels.
	Synthetic bool `json:"nutrients_synthetic"`
}

// Value returns the predicted value for a primary nutrient.
func (p PredictionResult) Value(n Nutrient) float64 {
	switch n {
	case NutrientNitrogen:
		return p.NitrogenPct
	case NutrientPhosphorus:
		return p.PhosphorusPct
	case NutrientPotassium:
		return p.PotassiumPct
	}
	return 0
}

// SuitabilityTier classifies a value against a requirement range.
type SuitabilityTier string

const (
	TierSuitable   SuitabilityTier = "Suitable"
	TierMarginal   SuitabilityTier = "Marginal"
	TierUnsuitable SuitabilityTier = "Unsuitable"
)

// Rank orders tiers from strictest (0) to best (2).
func (t SuitabilityTier) Rank() int {
	switch t {
	case TierSuitable:
		return 2
	case TierMarginal:
		return 1
	}
	return 0
}

// Direction tells which side of the range a value falls on.
type Direction string

const (
	DirectionLow       Direction = "low"
	DirectionHigh      Direction = "high"
	DirectionOptimal   Direction = "optimal"
	DirectionUndefined Direction = "undefined"
)

// Assessment is the verdict for one nutrient or indicator.
type Assessment struct {
	Nutrient  Nutrient        `json:"nutrient"`
	Tier      SuitabilityTier `json:"tier"`
	Direction Direction       `json:"direction"`
	Range     Range           `json:"range"`

	// Value is nil when it cannot be computed (C:N with no nitrogen).
	Value            *float64 `json:"value"`
	DeltaFromOptimal *float64 `json:"delta_from_optimal,omitempty"`
}

// Recommendation is the suitability of a predicted nutrient profile for one plant.
type Recommendation struct {
	Plant       PlantName    `json:"plant"`
	DisplayName string       `json:"display_name"`
	Description string       `json:"description"`
	Assessments []Assessment `json:"assessments"`

	// CNRatio is nil when predicted nitrogen is zero.
	CNRatio      *float64        `json:"cn_ratio"`
	OverallScore float64         `json:"overall_score"`
	OverallTier  SuitabilityTier `json:"overall_tier"`
	Advice       []string        `json:"advice"`
}

// Assessment returns the verdict for n, if present.
func (r Recommendation) Assessment(n Nutrient) (Assessment, bool) {
	for _, a := range r.Assessments {
		if a.Nutrient == n {
			return a, true
		}
	}
	return Assessment{}, false
}

// GeneralAssessment is the plant-independent C:N verdict for a composting mix.
type GeneralAssessment struct {
	CNRatio   *float64  `json:"cn_ratio"`
	Direction Direction `json:"direction"`
	Message   string    `json:"message"`
}

// TrainingReport summarizes one training run.
type TrainingReport struct {
	ModelID          string                  `json:"model_id"`
	DatasetID        string                  `json:"dataset_id"`
	Rows             int                     `json:"rows"`
	Synthetic        bool                    `json:"nutrients_synthetic"`
	TrainedAt        time.Time               `json:"trained_at"`
	Duration         time.Duration           `json:"duration_ns"`
	HoldoutEvaluated bool                    `json:"holdout_evaluated"`
	HoldoutRows      int                     `json:"holdout_rows"`
	Metrics          map[Nutrient]FitMetrics `json:"metrics,omitempty"`
}

// FitMetrics holds holdout scores for a single target.
type FitMetrics struct {
	R2   float64 `json:"r2"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// AnalysisResult bundles a prediction with its plant verdicts.
type AnalysisResult struct {
	Prediction      PredictionResult  `json:"prediction"`
	Recommendations []Recommendation  `json:"recommendations"`
	General         GeneralAssessment `json:"general_assessment"`
}
