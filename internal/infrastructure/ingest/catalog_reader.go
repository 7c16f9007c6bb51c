// Package ingest reads catalog and scraped listing files into domain entries.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pricelens/skumatch/internal/domain"
)

// DefaultCountries are the markets the catalog is published for.
var DefaultCountries = []string{"MX", "CO", "PE", "EC", "PA", "SV", "HN"}

// CatalogReaderConfig holds catalog parsing options
type CatalogReaderConfig struct {
	// DefaultCountry is used when the file has no country column. When empty
	// the first two letters of the file name are used.
	DefaultCountry string
	// Countries restricts accepted rows. Nil accepts every country.
	Countries []string
}

// CatalogReader reads catalog CSV files with a header row.
type CatalogReader struct {
	config CatalogReaderConfig
}

// NewCatalogReader creates a new catalog reader
func NewCatalogReader(config CatalogReaderConfig) *CatalogReader {
	return &CatalogReader{config: config}
}

// ReadFile parses the catalog at path.
func (r *CatalogReader) ReadFile(path string) ([]domain.CatalogEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	country := r.config.DefaultCountry
	if country == "" {
		country = countryFromPath(path)
	}
	return r.read(bytes.NewReader(b), country)
}

// Read parses a catalog from rd. Rows without a country column get
// defaultCountry.
func (r *CatalogReader) Read(rd io.Reader, defaultCountry string) ([]domain.CatalogEntry, error) {
	return r.read(rd, defaultCountry)
}

func (r *CatalogReader) read(rd io.Reader, defaultCountry string) ([]domain.CatalogEntry, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("%w: empty catalog", domain.ErrInvalidFile)
	}

	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", domain.ErrInvalidFile, err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"sku", "sku_name"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrInvalidFile, col)
		}
	}
	countryCol, hasCountry := index["country"]
	if !hasCountry && defaultCountry == "" {
		return nil, fmt.Errorf("%w: missing column %q", domain.ErrInvalidFile, "country")
	}

	allowed := make(map[string]bool, len(r.config.Countries))
	for _, c := range r.config.Countries {
		allowed[strings.ToUpper(c)] = true
	}

	field := func(rec []string, i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	seen := make(map[[2]string]bool)
	var entries []domain.CatalogEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
		}

		country := defaultCountry
		if hasCountry {
			if c := field(rec, countryCol); c != "" {
				country = c
			}
		}
		country = strings.ToUpper(country)
		if len(allowed) > 0 && !allowed[country] {
			continue
		}

		name := field(rec, index["sku_name"])
		if name == "" {
			continue
		}
		entry := domain.NewCatalogEntry(country, field(rec, index["sku"]), name)
		if entry.SKU == "" {
			continue
		}
		key := [2]string{entry.Country, entry.SKU}
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	return entries, nil
}

// countryFromPath takes the country code from file names like "mx_catalog.csv".
func countryFromPath(path string) string {
	base := filepath.Base(path)
	if len(base) < 2 {
		return ""
	}
	return strings.ToUpper(base[:2])
}
