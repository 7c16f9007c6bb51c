// Package normalize turns free-form product names into canonical, comparable
// strings. Normalization is deterministic and total: any input, including the
// empty string, produces a result.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// decimalMark temporarily replaces the dot of decimal numbers while periods
// are turned into spaces. It is a private-use rune that never occurs in names.
const decimalMark = "\uE000"

var (
	bracketsAndDashes = regexp.MustCompile(`[()|\-–\x{2014}]`)
	aposEntity        = regexp.MustCompile(`&apos;`)
	decimalNumber     = regexp.MustCompile(`(\d+)\.(\d+)`)
	protectedDecimal  = regexp.MustCompile(`(\d+)` + decimalMark + `(\d+)`)
	dropSymbols       = regexp.MustCompile(`[·•'"®*:%]`)
	thousandsComma    = regexp.MustCompile(`(\d),(\d{3})`)
	clauseMarks       = regexp.MustCompile(`[,;!?¡¿]`)
	period            = regexp.MustCompile(`\.`)
)

// TextNormalizer is implemented by Normalizer and CachedNormalizer.
type TextNormalizer interface {
	Normalize(raw string) string
}

// Options configures a Normalizer. The zero value gives the Spanish defaults.
type Options struct {
	// Locale drives case folding and the stopword list. Defaults to "es".
	Locale string
	// ExtraStopwords are added to the locale list. Nil means DefaultExtraStopwords.
	ExtraStopwords []string
	// CanonicalizeColors enables the color and size adjective stage.
	CanonicalizeColors bool
	// Extensions holds rules loaded from a rule file, may be nil.
	Extensions *Extensions
}

type stage struct {
	name string
	fn   func(string) string
}

// Normalizer applies the ordered normalization stages. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	locale    language.Tag
	stopwords map[string]struct{}
	brands    map[string]string
	stages    []stage
}

// Step is the output of one named stage, as reported by Trace.
type Step struct {
	Stage  string `json:"stage"`
	Output string `json:"output"`
}

// New builds a Normalizer from opts.
func New(opts Options) *Normalizer {
	locale := opts.Locale
	if locale == "" {
		locale = "es"
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}

	extra := opts.ExtraStopwords
	if extra == nil {
		extra = DefaultExtraStopwords
	}

	abbreviations := abbreviationRules()
	brands := weightedBrands
	colors := colorRules()
	if ext := opts.Extensions; ext != nil {
		extra = append(append([]string(nil), extra...), ext.Stopwords...)
		abbreviations = abbreviations.With(ext.abbreviations...)
		brands = append(append([]string(nil), brands...), ext.BrandWeights...)
		colors = colors.With(ext.colors...)
	}

	n := &Normalizer{
		locale:    tag,
		stopwords: stopwordSet(locale, extra),
		brands:    brandWeights(brands),
	}

	units := unitRules()
	buckets := bucketRules()
	n.stages = []stage{
		{"case", n.fold},
		{"symbols", removeSymbols},
		{"diacritics", stripDiacritics},
		{"spaces", collapseSpaces},
		{"units", units.Apply},
		{"buckets", buckets.Apply},
		{"stopwords", n.removeStopwords},
		{"abbreviations", abbreviations.Apply},
		{"dedupe", dedupeTokens},
		{"brands", n.weightBrands},
		{"final", dedupeTokens},
	}
	if opts.CanonicalizeColors {
		n.stages = append(n.stages, stage{"colors", func(s string) string {
			return dedupeTokens(colors.Apply(s))
		}})
	}
	return n
}

// Normalize returns the canonical form of raw.
func (n *Normalizer) Normalize(raw string) string {
	s := raw
	for _, st := range n.stages {
		s = st.fn(s)
	}
	return s
}

// Trace normalizes raw and records the output of every stage.
func (n *Normalizer) Trace(raw string) []Step {
	steps := make([]Step, 0, len(n.stages))
	s := raw
	for _, st := range n.stages {
		s = st.fn(s)
		steps = append(steps, Step{Stage: st.name, Output: s})
	}
	return steps
}

// Stages lists the stage names in application order.
func (n *Normalizer) Stages() []string {
	names := make([]string, len(n.stages))
	for i, st := range n.stages {
		names[i] = st.name
	}
	return names
}

func (n *Normalizer) fold(s string) string {
	// cases.Caser keeps state, so one is built per call.
	return cases.Lower(n.locale).String(strings.TrimSpace(s))
}

func removeSymbols(s string) string {
	s = bracketsAndDashes.ReplaceAllString(s, " ")
	s = aposEntity.ReplaceAllString(s, "")
	s = decimalNumber.ReplaceAllString(s, "${1}"+decimalMark+"${2}")
	s = dropSymbols.ReplaceAllString(s, "")
	s = thousandsComma.ReplaceAllString(s, "${1}${2}")
	s = clauseMarks.ReplaceAllString(s, " ")
	s = period.ReplaceAllString(s, " ")
	return protectedDecimal.ReplaceAllString(s, "${1}.${2}")
}

// stripDiacritics decomposes s and keeps only ASCII, so "piña" becomes "pina"
// and symbols without an ASCII decomposition disappear.
func stripDiacritics(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, s)
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// removeStopwords splits on single spaces, as earlier stages may leave empty
// tokens behind; those are kept and collapsed later.
func (n *Normalizer) removeStopwords(s string) string {
	words := strings.Split(s, " ")
	kept := words[:0]
	for _, w := range words {
		if _, ok := n.stopwords[w]; !ok {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func (n *Normalizer) weightBrands(s string) string {
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if w, ok := n.brands[tok]; ok {
			tokens[i] = w
		}
	}
	return strings.Join(tokens, " ")
}

// dedupeTokens collapses whitespace and drops repeated tokens, keeping the
// first occurrence.
func dedupeTokens(s string) string {
	tokens := strings.Fields(s)
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}
