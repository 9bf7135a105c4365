// Package excel implements the WorksheetExporter port using excelize.
package excel

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WorksheetExporter = (*Exporter)(nil)

// Exporter renders result rows into an xlsx workbook with one worksheet per
// export: four columns starting at column 1 (repository, PR number,
// conclusion, summary).
type Exporter struct{}

// NewExporter creates a new Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// WriteWorksheet writes a workbook containing a single worksheet named title
// to w, one row per result in record order.
func (e *Exporter) WriteWorksheet(ctx context.Context, title string, results []model.Result, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // Close after Write releases internal buffers only.

	if err := f.SetSheetName("Sheet1", title); err != nil {
		return fmt.Errorf("name worksheet %q: %w", title, err)
	}

	for i, result := range results {
		if err := ctx.Err(); err != nil {
			return err
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+1, err)
		}

		row := []any{result.RepoFullName, result.PRNumber, string(result.Conclusion), result.Summary}
		if err := f.SetSheetRow(title, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
