package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/skumatch/internal/normalize"
)

func TestNewScorer(t *testing.T) {
	t.Run("keeps valid params", func(t *testing.T) {
		p := Params{DiceWeight: 0.5, UnitPenalty: 0.3, ReshapeDecay: 2, Tokenizer: Chars}
		assert.Equal(t, p, NewScorer(p).Params())
	})

	t.Run("falls back to defaults", func(t *testing.T) {
		s := NewScorer(Params{DiceWeight: 3, UnitPenalty: -1, ReshapeDecay: 0, Tokenizer: "bigram"})
		assert.Equal(t, DefaultParams(), s.Params())
	})
}

func TestConfidence_Scenarios(t *testing.T) {
	n := normalize.New(normalize.Options{})
	s := NewScorer(DefaultParams())

	testCases := []struct {
		name string
		a, b string
		want float64
	}{
		{
			name: "same water pack written differently",
			a:    "Agua Natural Nestle Pureza Vital botella 1 L 12 PIEZAS",
			b:    "NESTLE PV 12x1000 ML",
			want: 1.0,
		},
		{
			name: "same brandy with presentation noise",
			a:    "Brandy Domecq Don Pedro 200 ml Presentación",
			b:    "Brandy DON PEDRO 200ml",
			want: 1.0,
		},
		{
			name: "same cooler pack",
			a:    "Bebida Caribe Cooler Tinto 300 ml Presentación: Caja 12 Artículo(s)",
			b:    "CARIBE COOLER TINTO 300 ML - 12 PZ",
			want: 1.0,
		},
		{
			name: "soft drink against toilet paper",
			a:    "Refresco Coca Cola 600 ml",
			b:    "Papel Higienico Petalo 4 rollos",
			want: 0.0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Confidence(n.Normalize(tc.a), n.Normalize(tc.b))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConfidence_Values(t *testing.T) {
	s := NewScorer(DefaultParams())

	t.Run("different size of the same product", func(t *testing.T) {
		assert.Equal(t, 0.83, math.Round(s.RawConfidence("coca cola 600ml", "coca cola 350ml")*1000)/1000)
		assert.Equal(t, 0.81, s.Confidence("coca cola 600ml", "coca cola 350ml"))
	})

	t.Run("extra descriptor", func(t *testing.T) {
		assert.InDelta(t, 0.755, s.RawConfidence("coca cola 600ml", "coca cola light 600ml"), 1e-9)
		assert.Equal(t, 0.72, s.Confidence("coca cola 600ml", "coca cola light 600ml"))
	})
}

func TestConfidence_Properties(t *testing.T) {
	s := NewScorer(DefaultParams())
	names := []string{
		"coca cola 600ml",
		"coca cola light 600ml",
		"petalo 4pz",
		"npvnpvnpvnpv 1lt 12pz",
		"brdy donpedro 200ml",
		"600ml",
		"",
	}

	for _, a := range names {
		t.Run("reflexive "+a, func(t *testing.T) {
			assert.Equal(t, 1.0, s.Confidence(a, a))
		})
	}

	for _, a := range names {
		for _, b := range names {
			got := s.Confidence(a, b)
			assert.Equal(t, got, s.Confidence(b, a), "symmetry %q %q", a, b)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
			assert.False(t, math.IsNaN(got))
		}
	}
}

func TestExplain(t *testing.T) {
	s := NewScorer(DefaultParams())
	b := s.Explain("coca cola 600ml", "coca cola light 600ml")

	assert.Equal(t, "coca cola 600ml", b.Left)
	require.Len(t, b.LeftUnits, 1)
	assert.Equal(t, 600.0, b.LeftUnits[0].Magnitude)
	assert.InDelta(t, 0.25, b.CharacterDistance, 1e-9)
	assert.InDelta(t, 0.2, b.TokenDistance, 1e-9)
	assert.InDelta(t, 0.245, b.CombinedDistance, 1e-9)
	assert.Equal(t, 0.0, b.UnitDistance)
	assert.Equal(t, s.Confidence(b.Left, b.Right), b.Confidence)
}

func TestReshape(t *testing.T) {
	testCases := []struct {
		name string
		x    float64
		want float64
	}{
		{name: "zero", x: 0, want: 0},
		{name: "negative", x: -0.3, want: 0},
		{name: "nan", x: math.NaN(), want: 0},
		{name: "one", x: 1, want: 1},
		{name: "clamped above one", x: 1.7, want: 1},
		{name: "tiny", x: 1e-12, want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Reshape(tc.x, DefaultReshapeDecay))
		})
	}

	assert.InDelta(t, 0.3628, Reshape(0.5, DefaultReshapeDecay), 1e-4)
	assert.Less(t, Reshape(0.6, DefaultReshapeDecay), Reshape(0.7, DefaultReshapeDecay))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.12, Round2(0.125))
	assert.Equal(t, 0.72, Round2(0.7201967))
	assert.Equal(t, 1.0, Round2(0.999))
	assert.Equal(t, 0.61, Round2(0.615))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, 0.4, Round2(0.395))
	assert.Equal(t, 0.0, Round2(0))
}
