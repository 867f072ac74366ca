package normalize

import "strings"

var romanValues = map[string]int{
	"M": 1000, "CM": 900, "D": 500, "CD": 400,
	"C": 100, "XC": 90, "L": 50, "XL": 40,
	"X": 10, "IX": 9, "V": 5, "IV": 4, "I": 1,
}

// RomanToInt parses a Roman numeral using standard subtractive notation,
// consuming paired symbols before single ones. Unknown symbols contribute
// zero, matching the tolerant behavior expected of noisy citations.
func RomanToInt(roman string) int {
	s := strings.ToUpper(roman)
	val := 0
	for i := 0; i < len(s); {
		if i+1 < len(s) {
			if v, ok := romanValues[s[i:i+2]]; ok {
				val += v
				i += 2
				continue
			}
		}
		val += romanValues[s[i:i+1]]
		i++
	}
	return val
}
