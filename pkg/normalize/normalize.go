package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Canonicalization of noisy legal text spans. Normalize produces the
// whitespace-free canonical matching form; NormalizeKeyText produces the
// lighter form used inside entity keys. Both are deterministic, total and
// idempotent.

var zeroWidth = []string{"\u200b", "\u200c", "\u200d", "\ufeff"}

var stopwords = map[string]struct{}{
	"v": {}, "v.": {}, "vs": {}, "vs.": {}, "versus": {},
	"petitioner": {}, "respondent": {}, "appellant": {},
	"judgment": {}, "order": {}, "the": {},
}

var honorifics = map[string]struct{}{
	"sri": {}, "smt": {}, "shri": {}, "dr": {},
	"justice": {}, "hon'ble": {}, "honble": {},
}

var abbrevMap = map[string]string{
	"sc": "supreme court",
	"hc": "high court",
}

const tokenPunct = ".,:;()[]{}\""

var (
	reSpace = regexp.MustCompile(`\s+`)
	// Footnote digits or bracketed numbers glued to a capitalized word run.
	reFootnote = regexp.MustCompile(`(\b[A-Za-z][A-Za-z\s]*?)(?:\[\d+\]|(\d+))\b`)
	// Trailing judge marker, optionally closed by a bracket.
	reJudge = regexp.MustCompile(`\bJ\.\]?\s*$`)
	// Runs of two or more dotted initials like "V. R." or "R.K.".
	reInitialRun       = regexp.MustCompile(`\b(?:[A-Za-z]\.\s*){2,}\s*`)
	reSingleInitialDot = regexp.MustCompile(`\b([A-Za-z])\.`)
	reAbbrev           = regexp.MustCompile(`(?i)\b(?:SC|HC)\b\.?`)
	// Whitespace after S./Sec is required so tokens like "SLP" stay untouched.
	reSection = regexp.MustCompile(`(?i)\b(?:s\.?\s+|sec(?:tion)?\s+)([ivxlcdm]+|\d+)(-?[A-Za-z]\w*)?\b`)
	reRoman   = regexp.MustCompile(`(?i)^[ivxlcdm]+$`)
	reDash    = regexp.MustCompile("[–—-]+")
	reLetter  = regexp.MustCompile(`[A-Za-z]`)

	reVersusSep = regexp.MustCompile(`(?i)\b(?:versus|vs|v)\.?\b`)
	// Key-text form: the v./vs. token and any run of single letters with
	// optional dots collapse into a contiguous lowercase string.
	reDottedVersus = regexp.MustCompile(`(?i)\b(vs?\.)\b`)
	reLetterRun    = regexp.MustCompile(`\b(?:[A-Za-z]\.?\s*){2,}\b`)
)

// NormalizeUnicode applies NFKC composition, strips zero-width characters,
// folds curly quotes to straight quotes and collapses whitespace.
func NormalizeUnicode(text string) string {
	if text == "" {
		return ""
	}
	t := norm.NFKC.String(text)
	for _, zw := range zeroWidth {
		t = strings.ReplaceAll(t, zw, "")
	}
	t = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
	).Replace(t)
	return strings.TrimSpace(reSpace.ReplaceAllString(t, " "))
}

// filterTokens drops whitespace-split tokens whose punctuation-stripped
// lowercase form is in the given set, or is empty after stripping.
func filterTokens(text string, drop map[string]struct{}) string {
	if text == "" {
		return ""
	}
	tokens := reSpace.Split(text, -1)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		low := strings.ToLower(strings.Trim(tok, tokenPunct))
		if low == "" {
			continue
		}
		if _, ok := drop[low]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// CollapseInitials turns runs of two or more dotted initials into a lowercase
// concatenation of the letters, keeping at most one trailing separator, then
// removes the stray dot after any remaining single initial.
func CollapseInitials(text string) string {
	if text == "" {
		return ""
	}
	t := reInitialRun.ReplaceAllStringFunc(text, func(m string) string {
		letters := reLetter.FindAllString(m, -1)
		spacer := ""
		if strings.HasSuffix(m, " ") {
			spacer = " "
		}
		return strings.ToLower(strings.Join(letters, "")) + spacer
	})
	return reSingleInitialDot.ReplaceAllString(t, "$1")
}

// ExpandAbbreviations expands the known two-letter court abbreviations at
// word boundaries, tolerating an optional trailing dot.
func ExpandAbbreviations(text string) string {
	return reAbbrev.ReplaceAllStringFunc(text, func(m string) string {
		if full, ok := abbrevMap[strings.ToLower(strings.TrimRight(m, "."))]; ok {
			return full
		}
		return m
	})
}

// NormalizeSections rewrites S./Sec/Section references to the canonical
// "section {n}{suffix}" form, converting Roman numerals to decimal.
func NormalizeSections(text string) string {
	return reSection.ReplaceAllStringFunc(text, func(m string) string {
		sub := reSection.FindStringSubmatch(m)
		num := sub[1]
		tail := strings.ToLower(strings.TrimPrefix(sub[2], "-"))
		if reRoman.MatchString(num) {
			num = strconv.Itoa(RomanToInt(num))
		}
		return "section " + num + tail
	})
}

// Normalize produces the canonical whitespace-free matching form of a raw
// legal text span. It never fails; empty input yields empty output.
func Normalize(raw string) string {
	t := NormalizeUnicode(raw)
	t = reFootnote.ReplaceAllString(t, "$1")
	t = reJudge.ReplaceAllString(strings.TrimSpace(t), "")
	t = filterTokens(t, honorifics)
	t = filterTokens(t, stopwords)
	t = CollapseInitials(t)
	t = ExpandAbbreviations(t)
	t = NormalizeSections(t)
	t = reDash.ReplaceAllString(t, " ")
	t = strings.ToLower(strings.TrimSpace(reSpace.ReplaceAllString(t, " ")))
	return reSpace.ReplaceAllString(t, "")
}

// NormalizeDisplay is Normalize without the final whitespace removal, for
// human-readable variants of the canonical form.
func NormalizeDisplay(raw string) string {
	t := NormalizeUnicode(raw)
	t = reFootnote.ReplaceAllString(t, "$1")
	t = reJudge.ReplaceAllString(strings.TrimSpace(t), "")
	t = filterTokens(t, honorifics)
	t = filterTokens(t, stopwords)
	t = CollapseInitials(t)
	t = ExpandAbbreviations(t)
	t = NormalizeSections(t)
	t = reDash.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(reSpace.ReplaceAllString(t, " ")))
}

// NormalizeKeyText produces the lighter normalized form used inside entity
// keys: unicode/quote cleanup, dotted v./vs. removal, letter-run collapse,
// whitespace collapse, edge punctuation trim, casefold. Whitespace-only and
// case differences in the input do not change the result.
func NormalizeKeyText(text string) string {
	s := NormalizeUnicode(text)
	s = reDottedVersus.ReplaceAllString(s, " ")
	s = reLetterRun.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Join(reLetter.FindAllString(m, -1), "")
	})
	s = strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
	s = strings.Trim(s, " .,:;()[]{}\"'\u00a0")
	return strings.ToLower(s)
}

// SplitVersus splits a raw span on a v./vs./versus separator token and
// returns the trimmed non-empty segments.
func SplitVersus(raw string) []string {
	parts := reVersusSep.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
