// Package similarity scores how likely two normalized product names describe
// the same product. All distances are in [0, 1], with 0 meaning identical.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/normalize"
)

// Tokenizer selects how the token-set metric splits a string.
type Tokenizer string

const (
	// Words compares whitespace separated tokens.
	Words Tokenizer = "word"
	// Chars compares the sets of characters.
	Chars Tokenizer = "char"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// indel is a Levenshtein metric where a substitution costs a deletion plus an
// insertion. It is stateless and shared.
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// sortedTokens lowercases s, turns non-word runs into spaces and joins the
// sorted tokens, so word order does not affect the character metric.
func sortedTokens(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), " ")
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// SortRatio is the token sort ratio of a and b as an integer percentage.
// Identical processed strings score 100, one empty side scores 0.
func SortRatio(a, b string) int {
	a, b = sortedTokens(a), sortedTokens(b)
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	total := len([]rune(a)) + len([]rune(b))
	ratio := float64(total-indel.Distance(a, b)) / float64(total)
	return int(math.RoundToEven(100 * ratio))
}

// CharacterDistance is the character level distance, 1 - SortRatio/100.
func CharacterDistance(a, b string) float64 {
	return float64(100-SortRatio(a, b)) * 0.01
}

func tokenSet(s string, tok Tokenizer) []string {
	if tok == Chars {
		return strutil.UniqueSlice(strutil.Ngrams(s, 1))
	}
	return strutil.UniqueSlice(strings.Fields(s))
}

// TokenSetDistance is the Sorensen-Dice distance between the token sets of a
// and b. Two empty sets are identical; one empty set is maximally distant.
func TokenSetDistance(a, b string, tok Tokenizer) float64 {
	setA, setB := tokenSet(a, tok), tokenSet(b, tok)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	common := 0
	for _, t := range setA {
		if strutil.SliceContains(setB, t) {
			common++
		}
	}
	return 1 - 2*float64(common)/float64(len(setA)+len(setB))
}

// CombinedDistance blends the character and token distances of a and b after
// quantity tokens are removed. diceWeight shifts weight from the character
// distance to the token distance.
func CombinedDistance(a, b string, diceWeight float64, tok Tokenizer) float64 {
	a, b = normalize.StripUnits(a), normalize.StripUnits(b)
	char := CharacterDistance(a, b)
	token := TokenSetDistance(a, b, tok)
	if char+token <= 0 {
		return 0
	}
	return (char*(2-diceWeight) + token*diceWeight) / 2
}

// UnitDistance is the Jaccard distance between the quantity tokens of a and b.
// Names without quantities on either side do not disagree.
func UnitDistance(a, b string) float64 {
	return jaccardDistance(normalize.ExtractUnits(a), normalize.ExtractUnits(b))
}

func jaccardDistance(a, b []domain.UnitToken) float64 {
	union := make(map[domain.UnitToken]struct{}, len(a)+len(b))
	for _, u := range a {
		union[u] = struct{}{}
	}
	inB := make(map[domain.UnitToken]struct{}, len(b))
	for _, u := range b {
		union[u] = struct{}{}
		inB[u] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	common := 0
	for _, u := range a {
		if _, ok := inB[u]; ok {
			common++
		}
	}
	return 1 - float64(common)/float64(len(union))
}
