// Package ingest parses registry and catalog dump files into model
// records ready for store upserts.
package ingest

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/model"
)

// XLSXOptions configures the registry XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of header rows to skip
}

// registry dump column order: batch number, generic name, brand name,
// manufacturer, allocated location, manufacturing date, expiry date.
const registryColumns = 7

// dateLayouts are the formats seen across registry dumps.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "01-2006", "Jan 2006"}

// ReadRegistryXLSX parses a government registry dump into allocation
// records. Rows without a batch number are skipped and counted; malformed
// dates degrade to the zero time rather than failing the import.
func ReadRegistryXLSX(path string, opts XLSXOptions) ([]model.AllocationRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open registry xlsx")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var records []model.AllocationRecord
	skipped := 0
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}

		cells := rowToStrings(row)
		if len(cells) < registryColumns {
			padded := make([]string, registryColumns)
			copy(padded, cells)
			cells = padded
		}

		rec := model.AllocationRecord{
			BatchNumber:       strings.TrimSpace(cells[0]),
			GenericName:       strings.TrimSpace(cells[1]),
			BrandName:         strings.TrimSpace(cells[2]),
			Manufacturer:      strings.TrimSpace(cells[3]),
			AllocatedLocation: strings.TrimSpace(cells[4]),
			ManufacturingDate: parseDate(cells[5]),
			ExpiryDate:        parseDate(cells[6]),
		}
		if rec.BatchNumber == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		zap.L().Warn("ingest: skipped registry rows without batch number",
			zap.Int("skipped", skipped),
		)
	}

	return records, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ingest: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
