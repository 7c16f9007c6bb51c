package normalize

import (
	_ "embed"
	"strings"
)

//go:embed dictionary/stopwords_es.txt
var spanishStopwords string

// DefaultExtraStopwords are domain words dropped on top of the locale list.
var DefaultExtraStopwords = []string{"sabor"}

// stopwordSet builds the stopword set for a locale. Entries are folded the same
// way listing text is (lower case, no diacritics) so accented dictionary words
// still match. Locales without a bundled list only use the extras.
func stopwordSet(locale string, extra []string) map[string]struct{} {
	var base []string
	switch strings.ToLower(locale) {
	case "", "es", "es-mx", "es-co", "spanish":
		base = strings.Fields(spanishStopwords)
	}

	set := make(map[string]struct{}, len(base)+len(extra))
	for _, w := range append(base, extra...) {
		w = stripDiacritics(strings.ToLower(strings.TrimSpace(w)))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
