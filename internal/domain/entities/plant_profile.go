package entities

import "strings"

// Nutrient identifies one of the assessed quantities.
type Nutrient string

const (
	NutrientNitrogen   Nutrient = "Nitrogen"
	NutrientPhosphorus Nutrient = "Phosphorus"
	NutrientPotassium  Nutrient = "Potassium"
	NutrientCNRatio    Nutrient = "C:N ratio"
	NutrientPH         Nutrient = "pH"
)

// PrimaryNutrients returns N, P and K in reporting order.
func PrimaryNutrients() []Nutrient {
	return []Nutrient{NutrientNitrogen, NutrientPhosphorus, NutrientPotassium}
}

// Range is an inclusive optimal interval with a preferred point.
type Range struct {
	Min     float64 `json:"min" toml:"min"`
	Max     float64 `json:"max" toml:"max"`
	Optimal float64 `json:"optimal" toml:"optimal"`
}

// Width returns Max-Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// PlantName is the canonical identifier of a plant profile.
type PlantName string

const (
	PlantTomatoes       PlantName = "Tomatoes"
	PlantLeafyGreens    PlantName = "LeafyGreens"
	PlantRootVegetables PlantName = "RootVegetables"
	PlantFruitTrees     PlantName = "FruitTrees"
	PlantGrains         PlantName = "Grains"
)

// NormalizePlantName folds case and drops spaces, dashes and underscores so
// "Leafy Greens", "leafy_greens" and "LeafyGreens" compare equal.
func NormalizePlantName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PlantProfile holds the requirement ranges for one plant type.
type PlantProfile struct {
	Name           PlantName          `json:"name"`
	DisplayName    string             `json:"display_name"`
	Description    string             `json:"description"`
	NutrientRanges map[Nutrient]Range `json:"nutrient_ranges"`
	PHRange        Range              `json:"ph_range"`
	OptimalCNRatio Range              `json:"optimal_cn_ratio"`
}

// Clone returns a deep copy so callers cannot mutate catalog state.
func (p PlantProfile) Clone() PlantProfile {
	ranges := make(map[Nutrient]Range, len(p.NutrientRanges))
	for k, v := range p.NutrientRanges {
		ranges[k] = v
	}
	p.NutrientRanges = ranges
	return p
}
