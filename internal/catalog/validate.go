package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

const (
	defaultQuantity = 1
	defaultWeight   = 1.0
)

var requiredColumns = []string{
	"sku", "title", "description", "category_id", "price", "condition",
}

// ValidateRows converts raw rows into validated product records. Bad rows
// never stop the pass: each problem is collected as a RowError carrying the
// 1-based data row index, and validation continues with the next row. A sku
// seen more than once is an error on its second and later occurrences.
func ValidateRows(rows []Row) ([]domain.ProductRecord, []domain.RowError) {
	valid := make([]domain.ProductRecord, 0, len(rows))
	var errs []domain.RowError
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		rowNum := i + 1
		rowErrs := validateRow(rowNum, row, seen)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}

		rec := buildRecord(row)
		seen[rec.SKU] = true
		valid = append(valid, rec)
	}

	return valid, errs
}

func validateRow(rowNum int, row Row, seen map[string]bool) []domain.RowError {
	var errs []domain.RowError
	fail := func(field, reason string) {
		errs = append(errs, domain.RowError{Row: rowNum, Field: field, Reason: reason})
	}

	for _, col := range requiredColumns {
		if row[col] == "" {
			fail(col, "required field is missing or empty")
		}
	}

	if sku := row["sku"]; sku != "" && seen[sku] {
		fail("sku", fmt.Sprintf("duplicate sku %q", sku))
	}

	if raw := row["price"]; raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			fail("price", fmt.Sprintf("not a number: %q", raw))
		case price <= 0:
			fail("price", fmt.Sprintf("must be positive, got %s", raw))
		}
	}

	if raw := row["quantity"]; raw != "" {
		qty, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			fail("quantity", fmt.Sprintf("not an integer: %q", raw))
		case qty < 0:
			fail("quantity", fmt.Sprintf("must be non-negative, got %s", raw))
		}
	}

	if raw := row["condition"]; raw != "" {
		if _, ok := MapCondition(raw); !ok {
			fail("condition", fmt.Sprintf("unrecognized condition %q", raw))
		}
	}

	if raw := row["weight"]; raw != "" {
		weight, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			fail("weight", fmt.Sprintf("not a number: %q", raw))
		case weight <= 0:
			fail("weight", fmt.Sprintf("must be positive, got %s", raw))
		}
	}

	if raw := row["dimensions"]; raw != "" {
		if _, err := parseDimensions(raw); err != nil {
			fail("dimensions", err.Error())
		}
	}

	if raw := row["images"]; raw != "" {
		if _, err := parseImages(raw); err != nil {
			fail("images", err.Error())
		}
	}

	return errs
}

// buildRecord assumes the row already passed validateRow.
func buildRecord(row Row) domain.ProductRecord {
	price, _ := strconv.ParseFloat(row["price"], 64)
	condition, _ := MapCondition(row["condition"])

	quantity := defaultQuantity
	if raw := row["quantity"]; raw != "" {
		quantity, _ = strconv.Atoi(raw)
	}

	weight := defaultWeight
	if raw := row["weight"]; raw != "" {
		weight, _ = strconv.ParseFloat(raw, 64)
	}

	dims := domain.DefaultDimensions()
	if raw := row["dimensions"]; raw != "" {
		dims, _ = parseDimensions(raw)
	}

	var images []string
	if raw := row["images"]; raw != "" {
		images, _ = parseImages(raw)
	}

	return domain.ProductRecord{
		SKU:         row["sku"],
		Title:       row["title"],
		Description: row["description"],
		CategoryID:  row["category_id"],
		Price:       price,
		Condition:   condition,
		Quantity:    quantity,
		Brand:       row["brand"],
		MPN:         row["mpn"],
		Weight:      weight,
		Dimensions:  dims,
		Images:      images,
	}
}

// parseDimensions parses an "LxWxH" numeric triple, e.g. "6x4x2".
func parseDimensions(raw string) (domain.Dimensions, error) {
	parts := strings.Split(strings.ToLower(raw), "x")
	if len(parts) != 3 {
		return domain.Dimensions{}, fmt.Errorf("expected LxWxH, got %q", raw)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v <= 0 {
			return domain.Dimensions{}, fmt.Errorf("expected positive LxWxH, got %q", raw)
		}
		vals[i] = v
	}

	return domain.Dimensions{Length: vals[0], Width: vals[1], Height: vals[2]}, nil
}

// parseImages splits a comma-delimited list of absolute http(s) URLs.
func parseImages(raw string) ([]string, error) {
	var images []string
	for _, part := range strings.Split(raw, ",") {
		img := strings.TrimSpace(part)
		if img == "" {
			continue
		}
		u, err := url.Parse(img)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("not an absolute http(s) URL: %q", img)
		}
		images = append(images, img)
	}
	return images, nil
}
