package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-autolister/internal/catalog"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.csv")
	content := "SKU, Title ,price\nA-1,First Widget,9.99\nA-2,Second Widget,19.99\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := catalog.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Header names are lowercased and trimmed.
	assert.Equal(t, "A-1", rows[0]["sku"])
	assert.Equal(t, "First Widget", rows[0]["title"])
	assert.Equal(t, "9.99", rows[0]["price"])
	assert.Equal(t, "A-2", rows[1]["sku"])
}

func TestReadFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := catalog.ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening")
}

func TestWriteSample_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, catalog.WriteSample(path))

	rows, err := catalog.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// The sample must survive its own validator.
	valid, errs := catalog.ValidateRows(rows)
	assert.Empty(t, errs)
	require.Len(t, valid, 2)
	assert.Equal(t, "TEST-001", valid[0].SKU)
	assert.Equal(t, "TEST-002", valid[1].SKU)
	assert.Len(t, valid[0].Images, 2)
}

// Mirrors the documented end-to-end shape: four rows, one missing a
// required price, yields three valid records and one error.
func TestValidateRows_ThreeOfFour(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mixed.csv")
	content := "sku,title,description,category_id,price,condition\n" +
		"A-1,W1,first,58058,9.99,NEW\n" +
		"A-2,W2,second,58058,,NEW\n" +
		"A-3,W3,third,58058,19.99,NEW\n" +
		"A-4,W4,fourth,58058,29.99,NEW\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := catalog.ReadFile(path)
	require.NoError(t, err)

	valid, errs := catalog.ValidateRows(rows)
	assert.Len(t, valid, 3)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, "price", errs[0].Field)
}
