package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dotless ı has no decomposition, so it is mapped before the marks are stripped.
var dotless = strings.NewReplacer("ı", "i")

// ASCIIFold removes diacritics: "Çığ Şöförü" becomes "Cig Soforu".
// Runes that do not decompose to ASCII are kept.
func ASCIIFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, dotless.Replace(s))
	if err != nil {
		return s
	}
	return out
}

// HeaderKey normalises a spreadsheet column header for alias matching:
// folded, lower case, without spaces, underscores or dots.
func HeaderKey(s string) string {
	s = strings.ToLower(ASCIIFold(strings.TrimSpace(s)))
	return strings.NewReplacer(" ", "", "_", "", ".", "", "-", "").Replace(s)
}

// FileSafe folds s for use in a file name: spaces become underscores and
// path separators become dashes.
func FileSafe(s string) string {
	s = ASCIIFold(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "/", "-", "\\", "-").Replace(s)
}
