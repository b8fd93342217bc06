// Package sanitize strips markup from user-supplied profile text. Names
// are rendered by several front-ends, so the API stores them as plain text.
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, which allows no elements.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText removes all HTML from input, unescapes entities that bluemonday
// produced, drops control characters, and collapses runs of whitespace.
func PlainText(input string) string {
	if input == "" {
		return ""
	}
	stripped := html.UnescapeString(getPolicy().Sanitize(input))

	stripped = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, stripped)

	return strings.Join(strings.Fields(stripped), " ")
}
