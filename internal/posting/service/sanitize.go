package service

import "github.com/microcosm-cc/bluemonday"

// descriptionPolicy allows the formatting a rich text editor produces and
// strips scripts, styles and event handlers.
func descriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"h1", "h2", "h3", "h4",
		"blockquote", "pre", "code",
		"strong", "em", "b", "i", "u", "s",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}
