package domain

import (
	"strings"
	"time"
)

// CatalogEntry is a canonical catalog SKU. NormalizedName is derived once from
// Name and never changes afterwards.
type CatalogEntry struct {
	Country        string `json:"country"`
	SKU            string `json:"sku"`
	Name           string `json:"sku_name"`
	NormalizedName string `json:"normalized_name,omitempty"`
}

// NewCatalogEntry builds a catalog entry with the SKU's leading zeros stripped.
func NewCatalogEntry(country, sku, name string) CatalogEntry {
	return CatalogEntry{
		Country: strings.TrimSpace(country),
		SKU:     CanonicalSKU(sku),
		Name:    name,
	}
}

// CanonicalSKU trims whitespace and leading zeros. An all-zero SKU becomes "0".
func CanonicalSKU(sku string) string {
	sku = strings.TrimSpace(sku)
	trimmed := strings.TrimLeft(sku, "0")
	if trimmed == "" && sku != "" {
		return "0"
	}
	return trimmed
}

// ListingEntry is a scraped competitor record.
type ListingEntry struct {
	Type           string    `json:"type,omitempty"`
	Country        string    `json:"country,omitempty"`
	CompetitorName string    `json:"competitor_name"`
	Name           string    `json:"competitor_sku_name"`
	NormalizedName string    `json:"-"`
	Price          float64   `json:"competitor_price"`
	SpecialPrice   *float64  `json:"special_price,omitempty"`
	URL            *string   `json:"competitor_url,omitempty"`
	Locality       string    `json:"locality"`
	Date           time.Time `json:"date"`
	GiftOrExtra    *string   `json:"gift_or_extra_prod,omitempty"`
}
