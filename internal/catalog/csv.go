package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is one raw input row keyed by lowercased column name.
type Row map[string]string

// ReadFile reads a product CSV and returns its rows. The first line is the
// header; column names are lowercased and trimmed so files exported from
// spreadsheets with "SKU" or " Price " headers still load.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header from %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// sampleHeader matches the documented input columns in order.
var sampleHeader = []string{
	"sku", "title", "description", "condition", "category_id",
	"price", "quantity", "brand", "mpn", "weight", "dimensions", "images",
}

var sampleRows = [][]string{
	{
		"TEST-001",
		"Sample Product - Test Listing",
		"This is a test product for eBay API integration",
		"NEW",
		"58058",
		"29.99",
		"5",
		"Generic",
		"TEST-001",
		"1.0",
		"6x4x2",
		"https://example.com/image1.jpg,https://example.com/image2.jpg",
	},
	{
		"TEST-002",
		"Another Test Product",
		"Second test product for bulk operations",
		"NEW",
		"58058",
		"49.99",
		"10",
		"TestBrand",
		"TB-002",
		"2.0",
		"8x6x3",
		"https://example.com/image3.jpg",
	},
}

// WriteSample writes a two-product example CSV to path.
func WriteSample(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sampleHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range sampleRows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing sample row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}

	return nil
}
