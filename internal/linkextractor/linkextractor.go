// Package linkextractor isolates outbound-link discovery behind an
// interface so the crawler can swap the spec-mandated regex scan for a real
// HTML parser without touching worker-pool logic.
package linkextractor

// LinkExtractor discovers the set of raw href values referenced by an HTML
// document. Values are returned exactly as they appear in the markup —
// resolution against the page's URL happens one layer up.
type LinkExtractor interface {
	Extract(html string) []string
}
