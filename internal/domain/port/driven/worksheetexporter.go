package driven

import (
	"context"
	"io"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

// WorksheetExporter defines the driven port for rendering a day's results as
// a spreadsheet worksheet.
type WorksheetExporter interface {
	// WriteWorksheet writes a workbook containing a single worksheet named
	// title, one row per result, to w.
	WriteWorksheet(ctx context.Context, title string, results []model.Result, w io.Writer) error
}
