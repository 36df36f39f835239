// Package sanitize guards every narrative string that may carry model-written
// markup. The generator is told it may use a small HTML subset; anything
// outside that subset is stripped before rendering.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// AllowedTags is the only markup the generators are permitted to emit.
var AllowedTags = []string{"br", "p", "b", "i", "strong", "em", "u"}

var (
	narrative = func() *bluemonday.Policy {
		p := bluemonday.NewPolicy()
		p.AllowElements(AllowedTags...)
		p.SkipElementsContent("script", "style")
		return p
	}()

	plain = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.SkipElementsContent("script", "style")
		return p
	}()
)

// Narrative keeps the allowed tag subset and strips everything else,
// including the contents of script and style elements.
func Narrative(s string) string {
	return narrative.Sanitize(s)
}

// PlainText strips all markup, leaving only text. Used for the diagnostic
// log, the PDF transcript, and anywhere HTML would be meaningless.
func PlainText(s string) string {
	return plain.Sanitize(s)
}
