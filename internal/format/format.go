// Package format renders a dictionary definition into Reddit markup.
//
// The transform is pure: markup in the extracted fragments is converted
// or stripped, citation and example substructures are removed, and the
// configured footer is appended. Empty fragments degrade to omitted
// sections, never errors.
package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/BTreeMap/DefineBot/internal/models"
)

// Markup conversion patterns, applied in order.
var (
	boldTags    = regexp.MustCompile(`(?i)</?(b|strong)[^>]*>`)
	italicTags  = regexp.MustCompile(`(?i)</?(i|em)[^>]*>`)
	exampleList = regexp.MustCompile(`(?i)<ul>[\s\S]*?</ul>`)
	citations   = regexp.MustCompile(`(&#91;|\[)[\s\S]*?(&#93;|\])`)
	htmlTags    = regexp.MustCompile(`(?i)</?[^>]+>`)
)

// Formatter renders definitions with a fixed footer.
type Formatter struct {
	footer string
}

// New creates a formatter appending the given footer to every reply.
func New(footer string) *Formatter {
	return &Formatter{footer: footer}
}

// Format converts a definition into the final reply text.
func (f *Formatter) Format(d *models.Definition) string {
	headword := convertInline(d.Headword)
	wordClass := convertInline(d.WordClass)
	body := convertInline(d.Body)

	// Example sentences and quotations live in nested <ul> blocks;
	// drop them before list conversion so they don't become numbered items.
	body = exampleList.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, "<li>", "1. ")
	body = strings.ReplaceAll(body, "</li>", "\n")
	body = strings.ReplaceAll(body, "<dd>", "  ")
	body = strings.ReplaceAll(body, "</dd>", "\n")
	body = citations.ReplaceAllString(body, "")

	headword = stripTags(headword)
	wordClass = stripTags(wordClass)
	body = stripTags(body)

	var reply strings.Builder
	if headword != "" {
		reply.WriteString("#### " + headword + "\n")
	}
	if wordClass != "" {
		reply.WriteString("*" + wordClass + "*\n")
	}
	reply.WriteString("\n")
	reply.WriteString(body)
	if d.SourceURL != "" {
		reply.WriteString("\n[^*Wiktionary*](" + d.SourceURL + ")")
	}
	reply.WriteString(f.footer)
	return reply.String()
}

// convertInline rewrites bold and italic tags into Reddit markup.
func convertInline(s string) string {
	s = boldTags.ReplaceAllString(s, "**")
	s = italicTags.ReplaceAllString(s, "_")
	return s
}

// stripTags removes any remaining markup and unescapes HTML entities.
func stripTags(s string) string {
	s = htmlTags.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
