package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pricelens/skumatch/internal/domain"
)

// RuleSpec is a rule as written in a rule file.
type RuleSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
	Guard   string `yaml:"guard"`
}

// Extensions are user supplied additions to the built-in tables. Abbreviation
// and color rules run after the built-in ones; stopwords and brand weights
// extend the built-in lists.
type Extensions struct {
	Stopwords     []string   `yaml:"stopwords"`
	Abbreviations []RuleSpec `yaml:"abbreviations"`
	BrandWeights  []string   `yaml:"brand_weights"`
	Colors        []RuleSpec `yaml:"colors"`

	abbreviations []Rule
	colors        []Rule
}

// LoadExtensions reads and compiles a YAML rule file.
func LoadExtensions(path string) (*Extensions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading rule file %s: %v", domain.ErrInvalidFile, path, err)
	}
	ext, err := ParseExtensions(data)
	if err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}
	return ext, nil
}

// ParseExtensions decodes and compiles rule file contents.
func ParseExtensions(data []byte) (*Extensions, error) {
	var ext Extensions
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}

	var err error
	if ext.abbreviations, err = compileSpecs("abbreviation", ext.Abbreviations); err != nil {
		return nil, err
	}
	if ext.colors, err = compileSpecs("color", ext.Colors); err != nil {
		return nil, err
	}
	return &ext, nil
}

func compileSpecs(kind string, specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", kind, i+1)
		}
		if spec.Pattern == "" {
			return nil, fmt.Errorf("%w: %s rule %q has no pattern", domain.ErrInvalidFile, kind, name)
		}
		r, err := CompileRule(name, spec.Pattern, spec.Replace, spec.Guard)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}
