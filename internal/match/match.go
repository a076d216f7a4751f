// Package match extracts definition queries from comment text.
//
// A comment requests a definition when it contains the configured
// trigger phrase at a token boundary, followed by whitespace and a
// word. The word after the trigger is the query; anything after it is
// ignored.
package match

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher detects the trigger phrase in comment text.
type Matcher struct {
	trigger string
	pattern *regexp.Regexp
}

// New compiles a matcher for the given trigger phrase. Matching is
// case-insensitive and requires a non-word character (or the start of
// the text) immediately before the trigger, so the phrase never matches
// inside a longer word.
func New(trigger string) (*Matcher, error) {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil, fmt.Errorf("trigger phrase cannot be empty")
	}
	pattern, err := regexp.Compile(`(?i)(?:^|[^0-9A-Za-z_])` + regexp.QuoteMeta(trigger) + `\s+(\w+)`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile trigger pattern for %q: %w", trigger, err)
	}
	return &Matcher{trigger: trigger, pattern: pattern}, nil
}

// Trigger returns the configured trigger phrase.
func (m *Matcher) Trigger() string {
	return m.trigger
}

// Extract returns the query word following the trigger phrase and true,
// or "" and false when the text contains no trigger.
func (m *Matcher) Extract(text string) (string, bool) {
	groups := m.pattern.FindStringSubmatch(text)
	if groups == nil {
		return "", false
	}
	return strings.TrimSpace(groups[1]), true
}
