package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pricelens/skumatch/internal/domain"
)

var (
	unitToken    = regexp.MustCompile(`(\d*\.?\d+)([mltpzgok|]+)`)
	attachedUnit = regexp.MustCompile(`\d*\.?\d+[mltpzgok|]+(\s|$)`)
)

// ExtractUnits returns the distinct quantity tokens of a normalized string in
// first-seen order. Strings without quantities yield an empty slice.
func ExtractUnits(s string) []domain.UnitToken {
	matches := unitToken.FindAllStringSubmatch(s, -1)
	out := make([]domain.UnitToken, 0, len(matches))
	seen := make(map[domain.UnitToken]struct{}, len(matches))
	for _, m := range matches {
		mag, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		tok := domain.UnitToken{Magnitude: mag, Kind: domain.UnitKind(m[2])}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// StripUnits removes quantity tokens so that only descriptive words are
// compared by the text metrics.
func StripUnits(s string) string {
	return strings.TrimSpace(attachedUnit.ReplaceAllString(s, ""))
}
