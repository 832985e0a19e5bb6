package health

import (
	nethtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextExtractor is the default ContentExtractor: it strips all markup and
// collapses whitespace, leaving the visible text whose length the checker
// measures. Production may swap in the full extraction step instead.
type TextExtractor struct {
	policy *bluemonday.Policy
}

// NewTextExtractor returns an extractor with a strip-everything policy.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{policy: bluemonday.StrictPolicy()}
}

// ExtractText returns the page's visible text with whitespace collapsed.
func (e *TextExtractor) ExtractText(html string) string {
	stripped := e.policy.Sanitize(html)
	unescaped := nethtml.UnescapeString(stripped)
	return strings.Join(strings.Fields(unescaped), " ")
}
