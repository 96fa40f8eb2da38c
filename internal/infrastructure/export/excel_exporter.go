// Package export renders bills as spreadsheets for the review dashboard.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/billed/internal/application/port"
)

var headings = []interface{}{
	"Identifiant", "Email", "Type", "Nom", "Date", "Montant TTC", "TVA", "%", "Commentaire", "Statut", "Commentaire admin", "Justificatif",
}

// ExcelExporter implements port.BillExporter with excelize
type ExcelExporter struct{}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export writes one sheet per entry of sheets, in order. Dates and
// statuses are written as displayed.
func (e *ExcelExporter) Export(sheets []port.BillSheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if len(sheets) == 0 {
		sheets = []port.BillSheet{{Name: "Notes de frais"}}
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}

		if err := f.SetSheetRow(sheet.Name, "A1", &headings); err != nil {
			return nil, fmt.Errorf("write headings: %w", err)
		}

		for j, b := range sheet.Bills {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, err
			}
			row := []interface{}{
				b.ID, b.Email, b.Type, b.Name, b.Date, b.Amount, b.VAT, b.Pct,
				b.Commentary, b.Status, b.CommentAdmin, b.FileURL,
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				return nil, fmt.Errorf("write bill %s: %w", b.ID, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var _ port.BillExporter = (*ExcelExporter)(nil)
