package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"itemize/internal/domain"
)

const sheetName = "Line Items"

// WriteXLSX writes a batch of invoice results as a single-sheet workbook,
// one row per line item, mirroring the CSV column layout.
func WriteXLSX(w io.Writer, results []domain.InvoiceResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	rowNum := 2
	for i := range results {
		for j := range results[i].LineItems {
			line := &results[i].LineItems[j]
			row := []interface{}{
				results[i].SourceFile,
				line.SupplierName,
				line.ItemDescription,
				strOrEmpty(line.ManufacturerPartNumber),
				strOrEmpty(line.OriginalUOM),
				cellInt(line.DetectedPackQuantity),
				line.CanonicalBaseUOM,
				cellFloat(line.PricePerBaseUnit),
				line.ConfidenceScore,
				formatBool(line.EscalationFlag),
			}
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return fmt.Errorf("building cell ref: %w", err)
			}
			if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
				return fmt.Errorf("writing row %d: %w", rowNum, err)
			}
			rowNum++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func cellInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
