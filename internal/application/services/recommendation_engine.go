package services

import (
	"fmt"

	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	"github.com/zatekoja/wastenutrient/internal/domain/repositories"
)

const (
	// nitrogenEpsilon is the smallest nitrogen value a C:N ratio is computed for.
	nitrogenEpsilon = 1e-9

	suitableScore = 0.8
	marginalScore = 0.5
)

// GeneralCNBand is the plant-independent C:N range for an active compost mix.
var GeneralCNBand = entities.Range{Min: 15, Max: 30, Optimal: 25}

// assessedOrder fixes the order of assessments and advice lines.
var assessedOrder = []entities.Nutrient{
	entities.NutrientNitrogen,
	entities.NutrientPhosphorus,
	entities.NutrientPotassium,
	entities.NutrientCNRatio,
	entities.NutrientPH,
}

var remedies = map[entities.Nutrient]map[entities.Direction]string{
	entities.NutrientNitrogen: {
		entities.DirectionLow:  "add nitrogen-rich material such as food scraps, manure or grass clippings",
		entities.DirectionHigh: "dilute with carbon-rich material such as dry leaves, straw or shredded paper",
	},
	entities.NutrientPhosphorus: {
		entities.DirectionLow:  "supplement with bone meal or rock phosphate",
		entities.DirectionHigh: "blend with low-phosphorus material and skip phosphate amendments",
	},
	entities.NutrientPotassium: {
		entities.DirectionLow:  "supplement with wood ash, banana peels or kelp",
		entities.DirectionHigh: "blend with low-potassium material and skip potash amendments",
	},
	entities.NutrientCNRatio: {
		entities.DirectionLow:       "add carbon-rich material such as straw or cardboard",
		entities.DirectionHigh:      "add nitrogen-rich material to speed decomposition",
		entities.DirectionUndefined: "predicted nitrogen is zero, add nitrogen-rich material before use",
	},
	entities.NutrientPH: {
		entities.DirectionLow:  "raise it with agricultural lime or wood ash",
		entities.DirectionHigh: "lower it with elemental sulfur or acidic organic matter such as pine needles",
	},
}

// RecommendationEngine scores predicted nutrients against plant requirements.
type RecommendationEngine struct {
	plants    repositories.PlantRepository
	tolerance float64
	weights   map[entities.Nutrient]float64
}

// NewRecommendationEngine creates an engine over the given catalog. tolerance
// is the marginal band outside a range, as a fraction of the range width.
func NewRecommendationEngine(plants repositories.PlantRepository, tolerance float64) *RecommendationEngine {
	weights := make(map[entities.Nutrient]float64, len(assessedOrder))
	for _, n := range assessedOrder {
		weights[n] = 1
	}
	return &RecommendationEngine{
		plants:    plants,
		tolerance: tolerance,
		weights:   weights,
	}
}

// Classify places value against r. Values inside [Min, Max] are Suitable.
// Values strictly closer than tolerance*width outside the range are Marginal;
// a value exactly on the outer edge is Unsuitable.
func Classify(value float64, r entities.Range, tolerance float64) (entities.SuitabilityTier, entities.Direction) {
	if r.Contains(value) {
		return entities.TierSuitable, entities.DirectionOptimal
	}

	margin := tolerance * r.Width()
	if value < r.Min {
		if r.Min-value < margin {
			return entities.TierMarginal, entities.DirectionLow
		}
		return entities.TierUnsuitable, entities.DirectionLow
	}
	if value-r.Max < margin {
		return entities.TierMarginal, entities.DirectionHigh
	}
	return entities.TierUnsuitable, entities.DirectionHigh
}

// Recommend evaluates one plant. The sample supplies carbon content and pH,
// the prediction supplies N, P and K.
func (e *RecommendationEngine) Recommend(sample entities.WasteSample, pred entities.PredictionResult, profile entities.PlantProfile) entities.Recommendation {
	rec := entities.Recommendation{
		Plant:       profile.Name,
		DisplayName: profile.DisplayName,
		Description: profile.Description,
		Assessments: make([]entities.Assessment, 0, len(assessedOrder)),
		Advice:      []string{},
	}

	for _, n := range entities.PrimaryNutrients() {
		rec.Assessments = append(rec.Assessments, e.assess(n, pred.Value(n), profile.NutrientRanges[n]))
	}

	if cn, ok := CNRatio(sample.CarbonContent, pred.NitrogenPct); ok {
		rec.CNRatio = &cn
		rec.Assessments = append(rec.Assessments, e.assess(entities.NutrientCNRatio, cn, profile.OptimalCNRatio))
	} else {
		rec.Assessments = append(rec.Assessments, entities.Assessment{
			Nutrient:  entities.NutrientCNRatio,
			Tier:      entities.TierUnsuitable,
			Direction: entities.DirectionUndefined,
			Range:     profile.OptimalCNRatio,
		})
	}

	rec.Assessments = append(rec.Assessments, e.assess(entities.NutrientPH, sample.PHLevel, profile.PHRange))

	var total, weight float64
	for _, a := range rec.Assessments {
		w := e.weights[a.Nutrient]
		total += w * credit(a.Tier)
		weight += w
	}
	if weight > 0 {
		rec.OverallScore = total / weight
	}
	rec.OverallTier = overallTier(rec.OverallScore)

	for _, a := range rec.Assessments {
		if a.Tier != entities.TierSuitable {
			rec.Advice = append(rec.Advice, advice(profile.DisplayName, a))
		}
	}
	return rec
}

// RecommendFor looks the plant up by name and evaluates it.
func (e *RecommendationEngine) RecommendFor(sample entities.WasteSample, pred entities.PredictionResult, plant string) (entities.Recommendation, error) {
	profile, err := e.plants.Lookup(plant)
	if err != nil {
		return entities.Recommendation{}, err
	}
	return e.Recommend(sample, pred, profile), nil
}

// RecommendAll evaluates every catalog plant in catalog order.
func (e *RecommendationEngine) RecommendAll(sample entities.WasteSample, pred entities.PredictionResult) []entities.Recommendation {
	profiles := e.plants.List()
	out := make([]entities.Recommendation, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, e.Recommend(sample, pred, p))
	}
	return out
}

// GeneralAssessment checks the mix against the general composting C:N band.
func (e *RecommendationEngine) GeneralAssessment(sample entities.WasteSample, pred entities.PredictionResult) entities.GeneralAssessment {
	cn, ok := CNRatio(sample.CarbonContent, pred.NitrogenPct)
	if !ok {
		return entities.GeneralAssessment{
			Direction: entities.DirectionUndefined,
			Message:   "C:N ratio is undefined because predicted nitrogen is zero. Consider adding nitrogen-rich materials.",
		}
	}

	ga := entities.GeneralAssessment{CNRatio: &cn}
	switch {
	case cn > GeneralCNBand.Max:
		ga.Direction = entities.DirectionHigh
		ga.Message = fmt.Sprintf("C:N ratio is high (%.1f). Consider adding nitrogen-rich materials.", cn)
	case cn < GeneralCNBand.Min:
		ga.Direction = entities.DirectionLow
		ga.Message = fmt.Sprintf("C:N ratio is low (%.1f). Consider adding carbon-rich materials.", cn)
	default:
		ga.Direction = entities.DirectionOptimal
		ga.Message = fmt.Sprintf("C:N ratio is optimal (%.1f).", cn)
	}
	return ga
}

// CNRatio divides carbon by nitrogen. ok is false when nitrogen is
// effectively zero.
func CNRatio(carbon, nitrogen float64) (float64, bool) {
	if nitrogen < nitrogenEpsilon {
		return 0, false
	}
	return carbon / nitrogen, true
}

func (e *RecommendationEngine) assess(n entities.Nutrient, value float64, r entities.Range) entities.Assessment {
	tier, dir := Classify(value, r, e.tolerance)
	delta := value - r.Optimal
	return entities.Assessment{
		Nutrient:         n,
		Tier:             tier,
		Direction:        dir,
		Range:            r,
		Value:            &value,
		DeltaFromOptimal: &delta,
	}
}

func credit(t entities.SuitabilityTier) float64 {
	switch t {
	case entities.TierSuitable:
		return 1
	case entities.TierMarginal:
		return 0.5
	}
	return 0
}

func overallTier(score float64) entities.SuitabilityTier {
	switch {
	case score >= suitableScore:
		return entities.TierSuitable
	case score >= marginalScore:
		return entities.TierMarginal
	}
	return entities.TierUnsuitable
}

func advice(plant string, a entities.Assessment) string {
	remedy := remedies[a.Nutrient][a.Direction]
	if a.Direction == entities.DirectionUndefined || a.Value == nil {
		return fmt.Sprintf("%s for %s: %s.", a.Nutrient, plant, remedy)
	}

	degree := ""
	if a.Tier == entities.TierMarginal {
		degree = "slightly "
	}
	return fmt.Sprintf("%s is %s%s for %s (%s vs %s-%s): %s.",
		a.Nutrient, degree, a.Direction, plant,
		formatValue(a.Nutrient, *a.Value), formatValue(a.Nutrient, a.Range.Min), formatValue(a.Nutrient, a.Range.Max),
		remedy)
}

func formatValue(n entities.Nutrient, v float64) string {
	switch n {
	case entities.NutrientCNRatio, entities.NutrientPH:
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}
