// Package util provides small string helpers shared by the views.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Apostrophes join words rather than split them ("don't" -> "dont").
	apostropheRe      = regexp.MustCompile(`['’]`)
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// TagSlug converts a tag name to a URL- and DOM-safe slug.
// Accented letters are folded to ASCII; everything else that is not a letter
// or digit becomes a single dash.
//
//	"Deep Fried"   -> "deep-fried"
//	"Café_Memes"   -> "cafe-memes"
//	"😂 Reaction!" -> "reaction"
func TagSlug(name string) string {
	s := norm.NFKD.String(name)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = apostropheRe.ReplaceAllString(s, "")
	s = nonAlphanumericRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FoldName prepares a tag name for case- and accent-insensitive comparison.
func FoldName(name string) string {
	s := norm.NFKD.String(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
