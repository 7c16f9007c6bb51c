package similarity

import (
	"math"
	"strconv"

	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/normalize"
)

// Default scoring parameters.
const (
	DefaultDiceWeight   = 0.20
	DefaultUnitPenalty  = 0.17
	DefaultReshapeDecay = 1.01

	minReshapeInput = 1e-9
)

// Params tunes the confidence computation.
type Params struct {
	DiceWeight   float64
	UnitPenalty  float64
	ReshapeDecay float64
	Tokenizer    Tokenizer
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		DiceWeight:   DefaultDiceWeight,
		UnitPenalty:  DefaultUnitPenalty,
		ReshapeDecay: DefaultReshapeDecay,
		Tokenizer:    Words,
	}
}

// Scorer computes match confidences between normalized names. It holds no
// mutable state and may be shared between goroutines.
type Scorer struct {
	params Params
}

// NewScorer returns a Scorer. Out of range parameters fall back to defaults.
func NewScorer(p Params) *Scorer {
	def := DefaultParams()
	if p.DiceWeight < 0 || p.DiceWeight > 1 || math.IsNaN(p.DiceWeight) {
		p.DiceWeight = def.DiceWeight
	}
	if p.UnitPenalty < 0 || math.IsNaN(p.UnitPenalty) {
		p.UnitPenalty = def.UnitPenalty
	}
	if p.ReshapeDecay <= 0 || math.IsNaN(p.ReshapeDecay) {
		p.ReshapeDecay = def.ReshapeDecay
	}
	if p.Tokenizer != Chars {
		p.Tokenizer = Words
	}
	return &Scorer{params: p}
}

// Params returns the effective parameters.
func (s *Scorer) Params() Params {
	return s.params
}

// RawConfidence is 1 minus the combined text distance minus the penalized unit
// distance, floored at 0.
func (s *Scorer) RawConfidence(a, b string) float64 {
	combined := CombinedDistance(a, b, s.params.DiceWeight, s.params.Tokenizer)
	return math.Max(0, 1-combined-UnitDistance(a, b)*s.params.UnitPenalty)
}

// Confidence is the reshaped raw confidence rounded to two decimals.
func (s *Scorer) Confidence(a, b string) float64 {
	return Round2(Reshape(s.RawConfidence(a, b), s.params.ReshapeDecay))
}

// Breakdown exposes every component of a confidence computation.
type Breakdown struct {
	Left              string             `json:"left"`
	Right             string             `json:"right"`
	LeftUnits         []domain.UnitToken `json:"left_units"`
	RightUnits        []domain.UnitToken `json:"right_units"`
	CharacterDistance float64            `json:"character_distance"`
	TokenDistance     float64            `json:"token_distance"`
	CombinedDistance  float64            `json:"combined_distance"`
	UnitDistance      float64            `json:"unit_distance"`
	RawConfidence     float64            `json:"raw_confidence"`
	Confidence        float64            `json:"confidence"`
}

// Explain computes the confidence of a and b and returns all intermediate
// values.
func (s *Scorer) Explain(a, b string) Breakdown {
	strippedA, strippedB := normalize.StripUnits(a), normalize.StripUnits(b)
	raw := s.RawConfidence(a, b)
	return Breakdown{
		Left:              a,
		Right:             b,
		LeftUnits:         normalize.ExtractUnits(a),
		RightUnits:        normalize.ExtractUnits(b),
		CharacterDistance: CharacterDistance(strippedA, strippedB),
		TokenDistance:     TokenSetDistance(strippedA, strippedB, s.params.Tokenizer),
		CombinedDistance:  CombinedDistance(a, b, s.params.DiceWeight, s.params.Tokenizer),
		UnitDistance:      UnitDistance(a, b),
		RawConfidence:     raw,
		Confidence:        Round2(Reshape(raw, s.params.ReshapeDecay)),
	}
}

// Reshape maps a raw confidence onto exp(1 - x^-decay), which keeps 1 at 1 and
// pushes mediocre scores towards 0. Non-positive input gives 0.
func Reshape(x, decay float64) float64 {
	if !(x > 0) {
		return 0
	}
	x = math.Min(math.Max(x, minReshapeInput), 1)
	return math.Exp(1 - math.Pow(x, -decay))
}

// Round2 rounds x to two decimals. Rounding works on the exact decimal
// expansion of x, so 0.615 (stored as 0.61499...) gives 0.61 and only exact
// halves such as 0.125 go to even.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return v
}
