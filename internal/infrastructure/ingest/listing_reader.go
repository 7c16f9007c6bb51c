package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pricelens/skumatch/internal/domain"
)

const (
	// DefaultSeparator splits columns in scraped listing files.
	DefaultSeparator = "<s>"

	// ListingDateLayout is the dd-mm-yy date format scrapers emit.
	ListingDateLayout = "02-01-06"

	giftSeparator = " + "
	minNameLength = 10
	minURLLength  = 10
)

var (
	requiredListingColumns = []string{"name", "company", "url", "price", "date"}

	urlScheme  = regexp.MustCompile(`^https?://[\w.-]+`)
	priceNoise = strings.NewReplacer(`"`, "", "$", "", ",", "", "c", "", "/", "", "u", "")
)

// ListingReader reads scraped competitor files whose columns are separated by
// a multi-character token.
type ListingReader struct {
	separator string
}

// NewListingReader creates a reader. An empty separator means DefaultSeparator.
func NewListingReader(separator string) *ListingReader {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &ListingReader{separator: separator}
}

// ReadFile parses the listings file at path.
func (r *ListingReader) ReadFile(path string) ([]domain.ListingEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidFile, filepath.Base(path))
	}
	entries, err := r.Read(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// Read parses listings from rd. Rows whose column count differs from the
// header are skipped, as are rows with an unusable name or price.
func (r *ListingReader) Read(rd io.Reader) ([]domain.ListingEntry, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
		}
		return nil, fmt.Errorf("%w: no header", domain.ErrInvalidFile)
	}
	header := strings.Split(strings.TrimPrefix(sc.Text(), "\uFEFF"), r.separator)
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range requiredListingColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns: %s", domain.ErrInvalidFile, strings.Join(missing, ", "))
	}

	var (
		entries   []domain.ListingEntry
		rows      int
		validName int
	)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		rec := strings.Split(line, r.separator)
		if len(rec) != len(header) {
			continue
		}
		rows++
		get := func(col string) string {
			if i, ok := index[col]; ok {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		product, gift := splitGift(get("name"))
		name, ok := cleanName(product)
		if !ok {
			continue
		}
		validName++
		if q := get("quantity"); q != "" {
			name += " " + q
		}
		name = strings.TrimSpace(name)

		price, ok := ParsePrice(get("price"))
		if !ok {
			continue
		}

		entry := domain.ListingEntry{
			Type:           get("type"),
			Country:        strings.ToUpper(get("country")),
			CompetitorName: get("company"),
			Name:           name,
			Price:          price,
			URL:            cleanURL(get("url")),
			Locality:       locality(get("zone")),
			GiftOrExtra:    gift,
		}
		if sp, ok := ParsePrice(get("specialPrice")); ok {
			entry.SpecialPrice = &sp
		}
		if d, err := time.Parse(ListingDateLayout, get("date")); err == nil {
			entry.Date = d
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}

	if rows > 0 && validName == 0 {
		return nil, fmt.Errorf("%w: no valid name values", domain.ErrInvalidFile)
	}
	if rows > 0 && len(entries) == 0 {
		return nil, fmt.Errorf("%w: no valid price values", domain.ErrInvalidFile)
	}
	return entries, nil
}

// ReadDir reads every *.txt listing file in dir, skipping files whose
// competitor (see CompetitorFromPath) is in skip. Files that fail validation
// are reported in the returned map and do not abort the scan.
func (r *ListingReader) ReadDir(dir string, skip []string) ([]domain.ListingEntry, map[string]error, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	sort.Strings(paths)

	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[strings.ToLower(s)] = true
	}

	var all []domain.ListingEntry
	failed := make(map[string]error)
	for _, p := range paths {
		if skipped[strings.ToLower(CompetitorFromPath(p))] {
			continue
		}
		entries, err := r.ReadFile(p)
		if err != nil {
			failed[p] = err
			continue
		}
		all = append(all, entries...)
	}
	return all, failed, nil
}

// CompetitorFromPath returns the competitor encoded in a file name such as
// "mx-2024-05-01-walmart.txt" (the part after the last dash).
func CompetitorFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(base, "-"); i >= 0 {
		return base[i+1:]
	}
	return base
}

// ParsePrice strips currency noise and rounds to cents.
func ParsePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(priceNoise.Replace(raw))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return math.Round(v*100) / 100, true
}

// splitGift separates a combo name into the main product and the extra one.
func splitGift(name string) (string, *string) {
	product, extra, found := strings.Cut(name, giftSeparator)
	if !found {
		return name, nil
	}
	return product, &extra
}

// cleanName rejects names that are too short to match and capitalizes words of
// three or more characters.
func cleanName(name string) (string, bool) {
	words := strings.Split(name, " ")
	if len(name) < minNameLength || len(words) <= 2 {
		return "", false
	}
	for i, w := range words {
		if utf8.RuneCountInString(w) >= 3 {
			words[i] = capitalize(w)
		} else {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " "), true
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

func cleanURL(url string) *string {
	if len(url) <= minURLLength {
		return nil
	}
	if !urlScheme.MatchString(url) {
		url = "https://" + url
	}
	return &url
}

func locality(zone string) string {
	if zone == "unique" {
		return "Nacional"
	}
	return zone
}
