package recovery

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule is a pure text rewrite applied before a strict JSON parse.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules is the ordered rewrite chain. Order matters: keys can only be found
// once quotes are plain and stray control characters are gone.
var Rules = []Rule{
	{Name: "normalize_quotes", Apply: NormalizeQuotes},
	{Name: "strip_non_printable", Apply: StripNonPrintable},
	{Name: "drop_trailing_commas", Apply: DropTrailingCommas},
	{Name: "quote_bare_keys", Apply: QuoteBareKeys},
}

// Rewrite applies every rule in order.
func Rewrite(s string) string {
	for _, r := range Rules {
		s = r.Apply(s)
	}
	return s
}

var quoteReplacer = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`,
	"\u00ab", `"`, "\u00bb", `"`, "\u2033", `"`,
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'", "\u2032", "'",
)

// NormalizeQuotes maps curly quotes and guillemets to ASCII quotes.
func NormalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// StripNonPrintable removes control and format characters. Whitespace,
// including line breaks, is kept.
func StripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)
}

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// DropTrailingCommas removes a comma that directly precedes ] or }.
func DropTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

var bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*):`)

// QuoteBareKeys wraps unquoted object keys in double quotes.
func QuoteBareKeys(s string) string {
	return bareKeyRe.ReplaceAllString(s, `$1"$2"$3:`)
}
