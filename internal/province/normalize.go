package province

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dotted maps the Turkish i variants to plain i before case folding, so that
// "İzmir", "IZMIR" and "ızmir" all fold to "izmir".
func dotted(r rune) rune {
	switch r {
	case 'ı', 'I', 'İ':
		return 'i'
	}
	return r
}

// NormalizeName folds a province name to lower-case ASCII-ish form for
// matching names across datasets: Turkish letters lose their diacritics
// (ç→c, ğ→g, ö→o, ş→s, ü→u), every i variant becomes i, and surrounding
// space is trimmed.
func NormalizeName(name string) string {
	// Transformers and casers carry state, so they are built per call.
	t := transform.Chain(
		runes.Map(dotted),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.TrimSpace(cases.Lower(language.Turkish).String(folded))
}
