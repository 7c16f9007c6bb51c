package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/skumatch/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCatalogReader_Read(t *testing.T) {
	t.Run("parses rows and strips leading zeros", func(t *testing.T) {
		csv := "country,sku,sku_name,price\n" +
			"MX,000123,Coca Cola 600ml,18.5\n" +
			"MX,456,Pepsi 600ml,17\n"
		reader := NewCatalogReader(CatalogReaderConfig{})

		entries, err := reader.Read(strings.NewReader(csv), "")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.CatalogEntry{Country: "MX", SKU: "123", Name: "Coca Cola 600ml"}, entries[0])
		assert.Equal(t, "456", entries[1].SKU)
	})

	t.Run("dedupes on country and sku keeping the first row", func(t *testing.T) {
		csv := "country,sku,sku_name\n" +
			"MX,0123,Coca Cola 600ml\n" +
			"MX,123,Coca Cola Lata\n" +
			"CO,123,Coca Cola 600ml\n"
		entries, err := NewCatalogReader(CatalogReaderConfig{}).Read(strings.NewReader(csv), "")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Coca Cola 600ml", entries[0].Name)
		assert.Equal(t, "CO", entries[1].Country)
	})

	t.Run("drops blank names and unknown countries", func(t *testing.T) {
		csv := "country,sku,sku_name\n" +
			"MX,1,\n" +
			"US,2,Dr Pepper 355ml\n" +
			"pe,3,Inca Kola 500ml\n"
		reader := NewCatalogReader(CatalogReaderConfig{Countries: DefaultCountries})
		entries, err := reader.Read(strings.NewReader(csv), "")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "PE", entries[0].Country)
	})

	t.Run("uses default country without a country column", func(t *testing.T) {
		csv := "sku,sku_name\n7,Agua Ciel 1lt\n"
		entries, err := NewCatalogReader(CatalogReaderConfig{}).Read(strings.NewReader(csv), "mx")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "MX", entries[0].Country)
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := NewCatalogReader(CatalogReaderConfig{}).Read(strings.NewReader("country,sku\nMX,1\n"), "")
		if !errors.Is(err, domain.ErrInvalidFile) {
			t.Errorf("expected ErrInvalidFile, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := NewCatalogReader(CatalogReaderConfig{}).Read(strings.NewReader(""), "MX")
		assert.ErrorIs(t, err, domain.ErrInvalidFile)
	})

	t.Run("no usable rows", func(t *testing.T) {
		csv := "country,sku,sku_name\nMX,1,\n"
		_, err := NewCatalogReader(CatalogReaderConfig{}).Read(strings.NewReader(csv), "")
		assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
	})
}

func TestCatalogReader_ReadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("country from file name", func(t *testing.T) {
		path := writeFile(t, dir, "co_catalog.csv", "\xEF\xBB\xBFsku,sku_name\n01,Postobon Manzana 400ml\n")
		entries, err := NewCatalogReader(CatalogReaderConfig{}).ReadFile(path)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "CO", entries[0].Country)
		assert.Equal(t, "1", entries[0].SKU)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewCatalogReader(CatalogReaderConfig{}).ReadFile(filepath.Join(dir, "nope.csv"))
		assert.ErrorIs(t, err, domain.ErrInvalidFile)
	})
}
