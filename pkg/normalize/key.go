package normalize

import (
	"regexp"
	"strings"
)

var reTrailingDigits = regexp.MustCompile(`\d+$`)

// MakeKey computes the canonical "{LABEL}|{normalizedText}" identity key for
// an entity mention. The label is upper-cased and trimmed (empty when
// absent); the text goes through NormalizeKeyText, so whitespace-only and
// case differences in the mention never change the key.
func MakeKey(label, text string) string {
	return strings.ToUpper(strings.TrimSpace(label)) + "|" + NormalizeKeyText(text)
}

// KeyText returns the text component of a canonical entity key.
func KeyText(key string) string {
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return key[i+1:]
	}
	return ""
}

// DeriveAliases produces the normalized alias variants for a raw mention
// text: the full canonical form, the form with a trailing digit run
// stripped, each party of a "A v. B" span individually, and the parties
// rejoined with a single space. Duplicates are permitted; matching
// tolerates them.
func DeriveAliases(raw string) []string {
	full := Normalize(raw)
	aliases := make([]string, 0, 4)
	if full != "" {
		aliases = append(aliases, full)
	}

	stripped := reTrailingDigits.ReplaceAllString(full, "")
	if stripped != "" && stripped != full {
		aliases = append(aliases, stripped)
	}

	parts := SplitVersus(raw)
	for _, p := range parts {
		if a := Normalize(p); a != "" {
			aliases = append(aliases, a)
		}
	}
	if combo := Normalize(strings.Join(parts, " ")); combo != "" {
		aliases = append(aliases, combo)
	}

	return aliases
}
