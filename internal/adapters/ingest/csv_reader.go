package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

// CSVReader turns a CSV stream into an untyped table. Typing and range
// checks are left to the schema validator.
type CSVReader struct {
	maxRows int
}

// NewCSVReader creates a reader; maxRows <= 0 means unlimited.
func NewCSVReader(maxRows int) *CSVReader {
	return &CSVReader{maxRows: maxRows}
}

// Read consumes the whole stream. The first record is the header.
func (c *CSVReader) Read(ctx context.Context, stream io.Reader) (entities.Table, error) {
	reader := csv.NewReader(stream)
	// Short rows are reported by the validator with the column name.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return entities.Table{}, apperrors.NewValidationError("csv input is empty")
		}
		return entities.Table{}, apperrors.NewValidationError(fmt.Sprintf("failed to read csv header: %v", err))
	}

	table := entities.Table{Header: header}
	for {
		if err := ctx.Err(); err != nil {
			return entities.Table{}, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// +1 for the header line
			return entities.Table{}, apperrors.NewValidationError(fmt.Sprintf("csv read error at line %d: %v", len(table.Rows)+2, err))
		}

		table.Rows = append(table.Rows, record)
		if c.maxRows > 0 && len(table.Rows) > c.maxRows {
			return entities.Table{}, apperrors.NewValidationError(fmt.Sprintf("csv input exceeds %d rows", c.maxRows))
		}
	}

	return table, nil
}
