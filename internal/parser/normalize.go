package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// tokens the generic slug pass would otherwise destroy. Applied after
// lowercasing, before the non-alphanumeric collapse.
var tokenReplacer = strings.NewReplacer(
	"r$", " rs ",
	"º", "o",
	"°", "o",
	"ª", "a",
	"%", " pct ",
	"§", " s ",
)

// Slug normalizes a raw spreadsheet header into its matching form:
// accents stripped, lowercased, domain tokens substituted, runs of
// punctuation collapsed to a single underscore.
func Slug(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = stripDiacritics(s)
	s = tokenReplacer.Replace(s)
	s = nonAlnumRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "col"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}

// stripDiacritics decomposes to NFD and drops combining marks, so
// "Remuneração" and "Remuneracao" slug identically.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SlugHeaders slugs a whole header row and disambiguates duplicates by
// appending _2, _3, ... in encounter order.
func SlugHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		slug := Slug(h)
		seen[slug]++
		if n := seen[slug]; n > 1 {
			slug = fmt.Sprintf("%s_%d", slug, n)
		}
		out[i] = slug
	}
	return out
}
