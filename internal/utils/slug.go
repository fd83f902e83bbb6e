// internal/utils/slug.go
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxHandleLength = 200

// Slugify turns a product title into a storefront handle: accents are folded,
// everything outside [a-z0-9] becomes a single dash.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxHandleLength {
		slug = strings.TrimRight(slug[:maxHandleLength], "-")
	}
	return slug
}

// HandleFor builds a handle that stays unique per source listing.
func HandleFor(title, sourceID string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "product"
	}
	if sourceID == "" {
		return slug
	}
	return slug + "-" + Slugify(sourceID)
}
