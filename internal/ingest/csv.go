package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/pricing"
)

// ReadCatalogCSV parses a price catalog (name, expected price per row,
// optional header). Price cells go through the same free-form currency
// parsing as receipt prices, so "₹120" and "120.00" both import.
func ReadCatalogCSV(path string) ([]model.MedicineRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open catalog csv")
	}
	defer f.Close()

	return parseCatalog(f)
}

func parseCatalog(r io.Reader) ([]model.MedicineRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []model.MedicineRecord
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read catalog row")
		}

		if len(row) < 2 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		price, ok := pricing.Parse(row[1])
		if name == "" || !ok {
			// Tolerates a header row and junk lines alike.
			skipped++
			continue
		}

		records = append(records, model.MedicineRecord{Name: name, ExpectedPrice: price})
	}

	if skipped > 0 {
		zap.L().Debug("ingest: skipped catalog rows",
			zap.Int("skipped", skipped),
			zap.Int("imported", len(records)),
		)
	}

	return records, nil
}
