// Package markup holds the pure string-transform collaborators that
// migration steps apply to HTML-bearing fields. Each transform has the
// fixed signature func(string) string so callers can swap in their own
// sanitizer.
package markup

import (
	"regexp"
	"strings"
)

// Cleaner is the contract for an HTML-bearing field transform.
type Cleaner func(html string) string

var (
	anyTag         = regexp.MustCompile(`<[^>]*>`)
	svgDiagramOpen = regexp.MustCompile(`<oppia-noninteractive-svgdiagram\b`)
	svgDiagramEnd  = regexp.MustCompile(`</oppia-noninteractive-svgdiagram>`)
	svgFilepathArg = regexp.MustCompile(`svg_filename-with-value`)
)

// StripTags removes all markup tags, leaving text content only.
func StripTags(html string) string {
	return anyTag.ReplaceAllString(html, "")
}

// ConvertSVGDiagramTagsToImageTags rewrites the deprecated svg diagram
// tag into the generic image tag, carrying the filename attribute over.
func ConvertSVGDiagramTagsToImageTags(html string) string {
	html = svgDiagramOpen.ReplaceAllString(html, "<oppia-noninteractive-image")
	html = svgDiagramEnd.ReplaceAllString(html, "</oppia-noninteractive-image>")
	return svgFilepathArg.ReplaceAllString(html, "filepath-with-value")
}

// FixEncodedChars repairs the double-escaped entities and stray
// non-breaking spaces seen in historical documents.
func FixEncodedChars(html string) string {
	replacer := strings.NewReplacer(
		"&amp;quot;", "&quot;",
		"&amp;amp;", "&amp;",
		"&amp;lt;", "&lt;",
		"&amp;gt;", "&gt;",
		" ", " ",
	)
	return replacer.Replace(html)
}
