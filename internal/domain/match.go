package domain

// MatchCandidate is the best catalog SKU found for one normalized listing key.
// It only lives while a batch is being evaluated.
type MatchCandidate struct {
	SKU        string  `json:"sku"`
	ListingKey string  `json:"listing_key"`
	Confidence float64 `json:"confidence"`
}

// MatchRecord is a listing joined with its matched SKU. Records only exist for
// candidates whose confidence reached the configured threshold.
type MatchRecord struct {
	ListingEntry
	MatchedSKU string  `json:"matched_sku"`
	Confidence float64 `json:"confidence"`
}

// UnitKind is the canonical measurement suffix of a quantity token.
type UnitKind string

const (
	UnitMilliliter UnitKind = "ml"
	UnitLiter      UnitKind = "lt"
	UnitPiece      UnitKind = "pz"
	UnitGram       UnitKind = "g"
	UnitKilogram   UnitKind = "kg"
	UnitOunce      UnitKind = "oz"
)

// Known reports whether k is one of the canonical unit kinds.
func (k UnitKind) Known() bool {
	switch k {
	case UnitMilliliter, UnitLiter, UnitPiece, UnitGram, UnitKilogram, UnitOunce:
		return true
	}
	return false
}

// UnitToken is an extracted quantity such as 500ml. Sets of tokens are only
// compared through Jaccard similarity, so the type is comparable and unordered.
type UnitToken struct {
	Magnitude float64  `json:"magnitude"`
	Kind      UnitKind `json:"unit"`
}
