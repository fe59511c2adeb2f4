package entities

import (
	"strings"
	"time"
)

// WasteType is the categorical kind of waste material.
type WasteType string

const (
	WasteTypeFood         WasteType = "Food"
	WasteTypeGarden       WasteType = "Garden"
	WasteTypePaper        WasteType = "Paper"
	WasteTypeMixed        WasteType = "Mixed"
	WasteTypeAgricultural WasteType = "Agricultural"

	// WasteTypeOther collects labels outside the closed set.
	WasteTypeOther WasteType = "Other"
)

// WasteTypes returns the closed category set in encoding order.
func WasteTypes() []WasteType {
	return []WasteType{
		WasteTypeFood,
		WasteTypeGarden,
		WasteTypePaper,
		WasteTypeMixed,
		WasteTypeAgricultural,
		WasteTypeOther,
	}
}

// ParseWasteType matches a label case-insensitively against the closed set.
// Unknown labels map to WasteTypeOther with known=false.
func ParseWasteType(label string) (WasteType, bool) {
	trimmed := strings.TrimSpace(label)
	for _, wt := range WasteTypes() {
		if strings.EqualFold(trimmed, string(wt)) {
			return wt, true
		}
	}
	return WasteTypeOther, false
}

// Column names of the tabular input contract.
const (
	ColumnWasteType       = "Waste_Type"
	ColumnMoisture        = "Moisture_Content"
	ColumnPH              = "pH_Level"
	ColumnCarbon          = "Carbon_Content"
	ColumnParticleSize    = "Particle_Size_mm"
	ColumnAgeDays         = "Age_Days"
	ColumnDegradationRate = "Degradation_Rate"
	ColumnNitrogen        = "Nitrogen_pct"
	ColumnPhosphorus      = "Phosphorus_pct"
	ColumnPotassium       = "Potassium_pct"
)

// RequiredColumns lists the base columns in the order they are checked.
func RequiredColumns() []string {
	return []string{
		ColumnWasteType,
		ColumnMoisture,
		ColumnPH,
		ColumnCarbon,
		ColumnParticleSize,
		ColumnAgeDays,
		ColumnDegradationRate,
	}
}

// NutrientColumns lists the optional target columns.
func NutrientColumns() []string {
	return []string{ColumnNitrogen, ColumnPhosphorus, ColumnPotassium}
}

// WasteSample is one validated row of waste characteristics.
type WasteSample struct {
	WasteType       WasteType `json:"waste_type"`
	MoistureContent float64   `json:"moisture_content"`
	PHLevel         float64   `json:"ph_level"`
	CarbonContent   float64   `json:"carbon_content"`
	ParticleSizeMM  float64   `json:"particle_size_mm"`
	AgeDays         int       `json:"age_days"`
	DegradationRate float64   `json:"degradation_rate"`

	NitrogenPct   *float64 `json:"nitrogen_pct,omitempty"`
	PhosphorusPct *float64 `json:"phosphorus_pct,omitempty"`
	PotassiumPct  *float64 `json:"potassium_pct,omitempty"`
}

// HasNutrients reports whether all three nutrient values are present.
func (s WasteSample) HasNutrients() bool {
	return s.NitrogenPct != nil && s.PhosphorusPct != nil && s.PotassiumPct != nil
}

// Nutrients returns the nutrient triple; missing values read as zero.
func (s WasteSample) Nutrients() NutrientTriple {
	return NutrientTriple{
		Nitrogen:   deref(s.NitrogenPct),
		Phosphorus: deref(s.PhosphorusPct),
		Potassium:  deref(s.PotassiumPct),
	}
}

// WithoutNutrients returns a copy stripped of nutrient values, as used for queries.
func (s WasteSample) WithoutNutrients() WasteSample {
	s.NitrogenPct = nil
	s.PhosphorusPct = nil
	s.PotassiumPct = nil
	return s
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// NutrientTriple holds N, P and K percentages.
type NutrientTriple struct {
	Nitrogen   float64 `json:"nitrogen_pct"`
	Phosphorus float64 `json:"phosphorus_pct"`
	Potassium  float64 `json:"potassium_pct"`
}

// Table is untyped tabular input as uploaded by the operator.
type Table struct {
	Header []string
	Rows   [][]string
}

// Dataset is a validated, immutable sequence of samples.
type Dataset struct {
	ID      string        `json:"id"`
	Samples []WasteSample `json:"-"`

	// MissingColumns names optional nutrient columns absent from the header.
	MissingColumns []string  `json:"missing_columns"`
	SyntheticRows  int       `json:"synthetic_rows"`
	CreatedAt      time.Time `json:"created_at"`
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// NeedsSynthesis reports whether any row lacks a nutrient value.
func (d *Dataset) NeedsSynthesis() bool {
	for _, s := range d.Samples {
		if !s.HasNutrients() {
			return true
		}
	}
	return false
}

// NutrientsSynthetic reports whether any nutrient label was generated rather than measured.
func (d *Dataset) NutrientsSynthetic() bool {
	return d.SyntheticRows > 0
}
