// Package sanitize rewrites untrusted text so that known persona-override
// phrasings never reach the model. Matching is best-effort pattern
// replacement, not a guarantee.
package sanitize

import (
	"regexp"
)

// Blocked is the literal token that replaces every matched span.
const Blocked = "[BLOCKED]"

// Rule is a single case-insensitive replacement pattern.
type Rule struct {
	Pattern *regexp.Regexp
}

// NewRule compiles expr as a case-insensitive rule. It panics on an invalid
// expression, so it is meant for static rule tables.
func NewRule(expr string) Rule {
	return Rule{Pattern: regexp.MustCompile("(?i)" + expr)}
}

// DefaultRules is the ordered rule set applied by Sanitize.
var DefaultRules = []Rule{
	// role-override envelope markers
	NewRule(`<\|system\|>`),
	NewRule(`<\|IDENTITY\|>`),
	NewRule(`<\|CONSTRAINTS`),
	NewRule(`<<CONTEXT-ENVELOPE`),

	// instruction overrides
	NewRule(`ignore.*previous.*instructions`),
	NewRule(`forget.*everything`),

	// persona hijacks
	NewRule(`you are now`),
	NewRule(`pretend to be`),
	NewRule(`act as`),
	NewRule(`roleplay as`),
}

// Sanitizer applies an ordered list of rules. The zero value uses
// DefaultRules.
type Sanitizer struct {
	rules []Rule
}

// New returns a Sanitizer over rules. With no rules it falls back to
// DefaultRules.
func New(rules ...Rule) *Sanitizer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Sanitizer{rules: rules}
}

func (s *Sanitizer) ruleSet() []Rule {
	if s == nil || len(s.rules) == 0 {
		return DefaultRules
	}
	return s.rules
}

// Sanitize applies every rule in order to the progressively rewritten text.
// Text that matches no rule is returned unchanged.
func (s *Sanitizer) Sanitize(text string) string {
	out := text
	for _, r := range s.ruleSet() {
		out = r.Pattern.ReplaceAllLiteralString(out, Blocked)
	}
	return out
}

// Matches reports the patterns of the rules that fire while sanitizing text,
// in rule order.
func (s *Sanitizer) Matches(text string) []string {
	var fired []string
	out := text
	for _, r := range s.ruleSet() {
		if r.Pattern.MatchString(out) {
			fired = append(fired, r.Pattern.String())
			out = r.Pattern.ReplaceAllLiteralString(out, Blocked)
		}
	}
	return fired
}

// Sanitize rewrites text with DefaultRules.
func Sanitize(text string) string {
	return New().Sanitize(text)
}
