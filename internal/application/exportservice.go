package application

import (
	"context"
	"io"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// ExportService renders a day's recorded results as a downloadable worksheet.
type ExportService struct {
	resultStore driven.ResultStore
	exporter    driven.WorksheetExporter
	sheetPrefix string
}

// NewExportService creates an ExportService with the required dependencies.
func NewExportService(resultStore driven.ResultStore, exporter driven.WorksheetExporter, sheetPrefix string) *ExportService {
	return &ExportService{
		resultStore: resultStore,
		exporter:    exporter,
		sheetPrefix: sheetPrefix,
	}
}

// ExportDay writes the day's worksheet to w. A day with no results produces a
// workbook with an empty worksheet, not an error.
func (s *ExportService) ExportDay(ctx context.Context, day model.Day, w io.Writer) error {
	results, err := s.resultStore.ListByDay(ctx, day)
	if err != nil {
		return err
	}

	return s.exporter.WriteWorksheet(ctx, day.WorksheetTitle(s.sheetPrefix), results, w)
}
