package normalize

import "strings"

var soundexDigits = map[byte]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// PhoneticKey derives a coarse Soundex-style code from a normalized span:
// first letter plus up to three digits, zero-padded. Inputs without ASCII
// letters yield the empty string. Spellings that differ only in minor
// drift ("kaladevi" vs "kala devi" after whitespace removal) collapse to
// the same code.
func PhoneticKey(text string) string {
	var letters strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'a' && c <= 'z' {
			letters.WriteByte(c - 'a' + 'A')
		} else if c >= 'A' && c <= 'Z' {
			letters.WriteByte(c)
		}
	}
	t := letters.String()
	if t == "" {
		return ""
	}

	var digits strings.Builder
	for i := 1; i < len(t); i++ {
		if d, ok := soundexDigits[t[i]]; ok {
			digits.WriteByte(d)
		}
	}

	collapsed := make([]byte, 0, digits.Len())
	for i := 0; i < digits.Len(); i++ {
		d := digits.String()[i]
		if len(collapsed) > 0 && collapsed[len(collapsed)-1] == d {
			continue
		}
		collapsed = append(collapsed, d)
	}

	code := string(t[0]) + string(collapsed) + "000"
	return code[:4]
}
