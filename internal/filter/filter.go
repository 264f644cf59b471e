// Package filter decides whether a customer message is on-topic enough to be
// forwarded to the completion endpoint.
package filter

import "strings"

// DefaultKeywords is the built-in allow-list of brand and cleaning vocabulary
var DefaultKeywords = []string{
	"bobee",
	"cleaning",
	"services",
	"pricing",
	"subscription",
	"home",
	"office",
	"cleaner",
	"hiring",
	"quality",
	"service",
}

// Filter is a keyword allow-list. A message is relevant when any keyword is a
// substring of the lower-cased message. Word boundaries are ignored on purpose:
// "homework" matches "home".
type Filter struct {
	keywords []string
}

var defaultFilter = New(DefaultKeywords...)

// New builds a filter over keywords. Keywords are lower-cased; blank entries
// are dropped.
func New(keywords ...string) *Filter {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		kw = append(kw, k)
	}
	return &Filter{keywords: kw}
}

// Default returns the filter over DefaultKeywords
func Default() *Filter {
	return defaultFilter
}

// IsRelevant reports whether text contains at least one keyword
func (f *Filter) IsRelevant(text string) bool {
	_, ok := f.Match(text)
	return ok
}

// Match returns the first keyword found in text
func (f *Filter) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range f.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Keywords returns a copy of the allow-list
func (f *Filter) Keywords() []string {
	out := make([]string, len(f.keywords))
	copy(out, f.keywords)
	return out
}

// IsRelevant checks text against the default allow-list
func IsRelevant(text string) bool {
	return defaultFilter.IsRelevant(text)
}
