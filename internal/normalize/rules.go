package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a single regular-expression rewrite. Replace uses Go template
// syntax (${1}, ${2}); unmatched groups expand to the empty string.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
	// Guard, when set, restricts the rule to texts containing this substring.
	Guard string
}

// NewRule compiles pattern into a Rule. It panics on an invalid pattern and is
// meant for the built-in tables; use CompileRule for user supplied rules.
func NewRule(name, pattern, replace string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern), Replace: replace}
}

// CompileRule is the error-returning counterpart of NewRule.
func CompileRule(name, pattern, replace, guard string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	return Rule{Name: name, Pattern: re, Replace: replace, Guard: guard}, nil
}

// When returns a copy of r that only fires when the text contains guard.
func (r Rule) When(guard string) Rule {
	r.Guard = guard
	return r
}

// Apply rewrites every non-overlapping match of the rule in s.
func (r Rule) Apply(s string) string {
	if r.Guard != "" && !strings.Contains(s, r.Guard) {
		return s
	}
	return r.Pattern.ReplaceAllString(s, r.Replace)
}

// RuleSet is an ordered list of rules. Later rules see the output of earlier
// ones, so order is part of the contract.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a rule set applying rules in the given order.
func NewRuleSet(rules ...Rule) *RuleSet {
	return &RuleSet{rules: append([]Rule(nil), rules...)}
}

// With returns a new set with extra rules appended after the existing ones.
func (rs *RuleSet) With(extra ...Rule) *RuleSet {
	out := make([]Rule, 0, rs.Len()+len(extra))
	if rs != nil {
		out = append(out, rs.rules...)
	}
	return &RuleSet{rules: append(out, extra...)}
}

// Apply runs every rule in order.
func (rs *RuleSet) Apply(s string) string {
	if rs == nil {
		return s
	}
	for _, r := range rs.rules {
		s = r.Apply(s)
	}
	return s
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Names lists rule names in application order.
func (rs *RuleSet) Names() []string {
	if rs == nil {
		return nil
	}
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.Name
	}
	return names
}
