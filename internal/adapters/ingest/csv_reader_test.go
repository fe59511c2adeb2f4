package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

const sampleCSV = `Waste_Type,Moisture_Content,pH_Level,Carbon_Content,Particle_Size_mm,Age_Days,Degradation_Rate
Food, 60,6.5,45.2,5,30,1.2
Garden,40,7.0,38,12,90,0.8

Paper,15,6.8,55,20,10,0.3
`

func TestCSVReader_Read(t *testing.T) {
	table, err := NewCSVReader(0).Read(context.Background(), strings.NewReader(sampleCSV))

	require.NoError(t, err)
	assert.Len(t, table.Header, 7)
	assert.Equal(t, "Waste_Type", table.Header[0])
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "60", table.Rows[0][1])
	assert.Equal(t, "Paper", table.Rows[2][0])
}

func TestCSVReader_AllowsShortRows(t *testing.T) {
	input := "a,b,c\n1,2\n"

	table, err := NewCSVReader(0).Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, table.Rows[0])
}

func TestCSVReader_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := NewCSVReader(0).Read(context.Background(), strings.NewReader(""))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := NewCSVReader(0).Read(context.Background(), strings.NewReader("a,b\n\"1,2\n"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("too many rows", func(t *testing.T) {
		_, err := NewCSVReader(2).Read(context.Background(), strings.NewReader(sampleCSV))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "exceeds 2 rows")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewCSVReader(0).Read(ctx, strings.NewReader(sampleCSV))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
