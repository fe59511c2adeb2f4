package services

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

// qualitativeLevels maps the coarse labels operators use in spreadsheets to
// representative numeric values, per column.
var qualitativeLevels = map[string]map[string]float64{
	entities.ColumnMoisture:        {"low": 30.0, "medium": 50.0, "high": 70.0},
	entities.ColumnPH:              {"low": 4.5, "medium": 6.5, "high": 8.5},
	entities.ColumnCarbon:          {"low": 25.0, "medium": 35.0, "high": 45.0},
	entities.ColumnParticleSize:    {"small": 2.0, "medium": 10.0, "large": 25.0},
	entities.ColumnAgeDays:         {"young": 15, "medium": 30, "old": 60},
	entities.ColumnDegradationRate: {"slow": 0.5, "medium": 1.0, "fast": 2.0},
}

// SchemaValidator converts an untyped table into a typed Dataset.
type SchemaValidator struct {
	now func() time.Time
}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{now: time.Now}
}

// Validate checks the column contract and every cell. It stops at the first
// violation and never returns a partial dataset.
func (v *SchemaValidator) Validate(table entities.Table) (*entities.Dataset, error) {
	index, err := headerIndex(table.Header)
	if err != nil {
		return nil, err
	}

	for _, col := range entities.RequiredColumns() {
		if _, ok := index[col]; !ok {
			return nil, apperrors.NewSchemaError(col, fmt.Sprintf("missing required column %s", col))
		}
	}

	var missing []string
	for _, col := range entities.NutrientColumns() {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(table.Rows) == 0 {
		first := entities.RequiredColumns()[0]
		return nil, apperrors.NewSchemaError(first, "table has no data rows")
	}

	samples := make([]entities.WasteSample, 0, len(table.Rows))
	for i, record := range table.Rows {
		sample, err := parseSample(record, index, i+1)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return &entities.Dataset{
		ID:             uuid.New().String(),
		Samples:        samples,
		MissingColumns: missing,
		CreatedAt:      v.now().UTC(),
	}, nil
}

// ValidateSample applies the same range rules to a single query sample.
func (v *SchemaValidator) ValidateSample(s entities.WasteSample) error {
	if strings.TrimSpace(string(s.WasteType)) == "" {
		return apperrors.NewSchemaError(entities.ColumnWasteType, "waste type is empty")
	}
	checks := []struct {
		column string
		value  float64
	}{
		{entities.ColumnMoisture, s.MoistureContent},
		{entities.ColumnPH, s.PHLevel},
		{entities.ColumnCarbon, s.CarbonContent},
		{entities.ColumnParticleSize, s.ParticleSizeMM},
		{entities.ColumnAgeDays, float64(s.AgeDays)},
		{entities.ColumnDegradationRate, s.DegradationRate},
	}
	for _, c := range checks {
		if err := checkRange(c.column, c.value, 0); err != nil {
			return err
		}
	}
	return nil
}

func headerIndex(header []string) (map[string]int, error) {
	known := append(entities.RequiredColumns(), entities.NutrientColumns()...)

	index := make(map[string]int, len(header))
	for i, h := range header {
		col := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if !slices.Contains(known, col) {
			// Extra columns are ignored.
			continue
		}
		if _, dup := index[col]; dup {
			return nil, apperrors.NewSchemaError(col, fmt.Sprintf("duplicate column %s", col))
		}
		index[col] = i
	}
	return index, nil
}

func parseSample(record []string, index map[string]int, row int) (entities.WasteSample, error) {
	cell := func(col string) string {
		if idx, ok := index[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var s entities.WasteSample

	label := cell(entities.ColumnWasteType)
	if label == "" {
		return s, rowError(entities.ColumnWasteType, row, "value is empty")
	}
	wt, known := entities.ParseWasteType(label)
	if known {
		s.WasteType = wt
	} else {
		// Preserved verbatim; the preprocessor buckets it as Other.
		s.WasteType = entities.WasteType(label)
	}

	numeric := []struct {
		column string
		dst    *float64
	}{
		{entities.ColumnMoisture, &s.MoistureContent},
		{entities.ColumnPH, &s.PHLevel},
		{entities.ColumnCarbon, &s.CarbonContent},
		{entities.ColumnParticleSize, &s.ParticleSizeMM},
	}
	for _, n := range numeric {
		val, err := parseNumber(n.column, cell(n.column), row)
		if err != nil {
			return s, err
		}
		if err := checkRange(n.column, val, row); err != nil {
			return s, err
		}
		*n.dst = val
	}

	age, err := parseNumber(entities.ColumnAgeDays, cell(entities.ColumnAgeDays), row)
	if err != nil {
		return s, err
	}
	if err := checkRange(entities.ColumnAgeDays, age, row); err != nil {
		return s, err
	}
	if age != math.Trunc(age) {
		return s, rowError(entities.ColumnAgeDays, row, fmt.Sprintf("value %v is not a whole number of days", age))
	}
	s.AgeDays = int(age)

	rate, err := parseNumber(entities.ColumnDegradationRate, cell(entities.ColumnDegradationRate), row)
	if err != nil {
		return s, err
	}
	if err := checkRange(entities.ColumnDegradationRate, rate, row); err != nil {
		return s, err
	}
	s.DegradationRate = rate

	nutrients := []struct {
		column string
		dst    **float64
	}{
		{entities.ColumnNitrogen, &s.NitrogenPct},
		{entities.ColumnPhosphorus, &s.PhosphorusPct},
		{entities.ColumnPotassium, &s.PotassiumPct},
	}
	for _, n := range nutrients {
		raw := cell(n.column)
		if raw == "" {
			continue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			return s, rowError(n.column, row, fmt.Sprintf("value %q is not numeric", raw))
		}
		if val < 0 || val > 100 {
			return s, rowError(n.column, row, fmt.Sprintf("value %v out of range [0, 100]", val))
		}
		*n.dst = &val
	}

	return s, nil
}

func parseNumber(column, raw string, row int) (float64, error) {
	if raw == "" {
		return 0, rowError(column, row, "value is empty")
	}
	if val, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, rowError(column, row, fmt.Sprintf("value %q is not finite", raw))
		}
		return val, nil
	}
	if levels, ok := qualitativeLevels[column]; ok {
		if val, ok := levels[strings.ToLower(raw)]; ok {
			return val, nil
		}
	}
	return 0, rowError(column, row, fmt.Sprintf("value %q is not numeric", raw))
}

func checkRange(column string, val float64, row int) error {
	switch column {
	case entities.ColumnPH:
		if val < 0 || val > 14 {
			return rowError(column, row, fmt.Sprintf("value %v out of range [0, 14]", val))
		}
	case entities.ColumnMoisture, entities.ColumnCarbon:
		if val < 0 || val > 100 {
			return rowError(column, row, fmt.Sprintf("value %v out of range [0, 100]", val))
		}
	case entities.ColumnParticleSize:
		if val <= 0 {
			return rowError(column, row, fmt.Sprintf("value %v must be greater than 0", val))
		}
	case entities.ColumnAgeDays, entities.ColumnDegradationRate:
		if val < 0 {
			return rowError(column, row, fmt.Sprintf("value %v must not be negative", val))
		}
	}
	return nil
}

// rowError builds a schema error; row 0 means a single query sample.
func rowError(column string, row int, message string) error {
	if row > 0 {
		message = fmt.Sprintf("row %d: %s", row, message)
	}
	return apperrors.NewSchemaError(column, fmt.Sprintf("%s: %s", column, message))
}
