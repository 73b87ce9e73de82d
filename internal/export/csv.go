package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"itemize/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row, one row per normalized line item.
var columns = []string{
	"Source File",
	"Supplier Name",
	"Item Description",
	"Manufacturer Part Number",
	"Original UOM",
	"Detected Pack Quantity",
	"Canonical Base UOM",
	"Price Per Base Unit",
	"Confidence Score",
	"Escalation Flag",
}

// Writer wraps csv.Writer for exporting invoice results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResults flattens a batch of invoice results into one CSV row per line
// item and writes them.
func (w *Writer) WriteResults(results []domain.InvoiceResult) error {
	for i := range results {
		for j := range results[i].LineItems {
			if err := w.csv.Write(lineToRow(results[i].SourceFile, &results[i].LineItems[j])); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func lineToRow(sourceFile string, line *domain.LineItemOutput) []string {
	row := make([]string, len(columns))
	row[0] = sourceFile
	row[1] = line.SupplierName
	row[2] = line.ItemDescription
	row[3] = strOrEmpty(line.ManufacturerPartNumber)
	row[4] = strOrEmpty(line.OriginalUOM)
	row[5] = intOrEmpty(line.DetectedPackQuantity)
	row[6] = line.CanonicalBaseUOM
	row[7] = priceOrEmpty(line.PricePerBaseUnit)
	row[8] = strconv.FormatFloat(line.ConfidenceScore, 'f', 2, 64)
	row[9] = formatBool(line.EscalationFlag)
	return row
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func priceOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a batch name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for a Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
