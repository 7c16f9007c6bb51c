package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pricelens/skumatch/internal/domain"
)

func TestExtractUnits(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []domain.UnitToken
	}{
		{
			name: "volume and count",
			in:   "npvnpvnpvnpv 1lt 12pz",
			want: []domain.UnitToken{{Magnitude: 1, Kind: domain.UnitLiter}, {Magnitude: 12, Kind: domain.UnitPiece}},
		},
		{
			name: "decimal magnitude",
			in:   "leche 1.5lt",
			want: []domain.UnitToken{{Magnitude: 1.5, Kind: domain.UnitLiter}},
		},
		{
			name: "duplicates collapse",
			in:   "600ml coca 600ml",
			want: []domain.UnitToken{{Magnitude: 600, Kind: domain.UnitMilliliter}},
		},
		{
			name: "kilograms",
			in:   "azucar 2kg",
			want: []domain.UnitToken{{Magnitude: 2, Kind: domain.UnitKilogram}},
		},
		{
			name: "no quantities",
			in:   "brdy donpedro",
			want: []domain.UnitToken{},
		},
		{
			name: "empty",
			in:   "",
			want: []domain.UnitToken{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractUnits(tc.in))
		})
	}
}

func TestExtractUnits_OrderIndependentSet(t *testing.T) {
	a := ExtractUnits("npvnpvnpvnpv 1lt 12pz")
	b := ExtractUnits("npvnpvnpvnpv 12pz 1lt")
	assert.ElementsMatch(t, a, b)
}

func TestStripUnits(t *testing.T) {
	assert.Equal(t, "npvnpvnpvnpv", StripUnits("npvnpvnpvnpv 1lt 12pz"))
	assert.Equal(t, "coca cola", StripUnits("coca 600ml cola"))
	assert.Equal(t, "", StripUnits("600ml"))
	assert.Equal(t, "leche", StripUnits("leche 1.5lt"))
	assert.Equal(t, "vive100", StripUnits("vive100"))
}
