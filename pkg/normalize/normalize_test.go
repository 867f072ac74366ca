package normalize

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"party name with honorific", "Smt. Kala Devi v. State of Karnataka", "kaladevistateofkarnataka"},
		{"uppercase variant", "SMT KALADEVI vs STATE OF KARNATAKA", "kaladevistateofkarnataka"},
		{"honorific stack and initials", "Hon'ble Dr. Justice A. K. Sikri", "aksikri"},
		{"initials inside party", "M.C. Mehta v. Union of India", "mcmehtaunionofindia"},
		{"judge marker stripped", "V. R. Krishna Iyer J.", "rkrishnaiyer"},
		{"footnote digits stripped", "Ram Kumar2", "ramkumar"},
		{"footnote digits on single name", "Somasundaram4", "somasundaram"},
		{"abbreviations expanded", "SC and HC", "supremecourtandhighcourt"},
		{"section with roman numeral", "S. IV-A of IPC and Section 304B", "section4aofipcandsection304b"},
		{"section with hyphen suffix", "S. 304-B IPC", "section304bipc"},
		{"dash folded", "Art. 21 – Right to Life", "art.21righttolife"},
		{"stopwords only", "The Respondent", ""},
		{"slp token untouched", "SLP (Crl.) No. 1234", "slp(crl.)no.1234"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Smt. Kala Devi v. State of Karnataka",
		"Hon'ble Dr. Justice A. K. Sikri",
		"S. IV-A of IPC and Section 304B",
		"State of U.P. v. Rajesh Kumar",
		"SC and HC",
		"Art. 21 – Right to Life",
		"Somasundaram4",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeUnicode(t *testing.T) {
	got := NormalizeUnicode("A\u200bB\u2019C")
	if got != "AB'C" {
		t.Fatalf("NormalizeUnicode = %q, want %q", got, "AB'C")
	}
}

func TestNormalizeSections(t *testing.T) {
	out := NormalizeSections("S. IV-A of IPC and Section 304B")
	if out != "section 4a of IPC and section 304b" {
		t.Fatalf("NormalizeSections = %q", out)
	}
	// Whitespace after the S./Sec token is required, so SLP stays untouched.
	if got := NormalizeSections("SLP No. 5"); got != "SLP No. 5" {
		t.Fatalf("NormalizeSections touched SLP token: %q", got)
	}
}

func TestCollapseInitials(t *testing.T) {
	if got := CollapseInitials("V.R. Krishna Iyer"); got != "vr Krishna Iyer" {
		t.Fatalf("CollapseInitials = %q", got)
	}
}

func TestExpandAbbreviations(t *testing.T) {
	got := ExpandAbbreviations("SC judgment; HC order")
	if got != "supreme court judgment; high court order" {
		t.Fatalf("ExpandAbbreviations = %q", got)
	}
}

func TestNormalizeKeyText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple name", "Kala Devi", "kaladevi"},
		{"case insensitive", "KALA DEVI", "kaladevi"},
		{"whitespace runs", "  Kala   Devi  ", "kaladevi"},
		{"full citation", "Smt. Kala Devi v. State of Karnataka", "smtkaladevivstateofkarnataka"},
		{"digits kept", "Somasundaram4", "somasundaram4"},
		{"acronym", "IPC", "ipc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeKeyText(tc.in); got != tc.want {
				t.Fatalf("NormalizeKeyText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPhoneticKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"kaladevi", "kaladevi", "K431"},
		{"state", "stateofkarnataka", "S312"},
		{"mehta citation", "mcmehtaunionofindia", "M253"},
		{"empty", "", ""},
		{"no letters", "1234", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PhoneticKey(tc.in); got != tc.want {
				t.Fatalf("PhoneticKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPhoneticKeyStability(t *testing.T) {
	a := PhoneticKey(Normalize("Kaladevi"))
	b := PhoneticKey(Normalize("Kala Devi"))
	if a == "" || a != b {
		t.Fatalf("phonetic keys diverge: %q vs %q", a, b)
	}
}

func TestRomanToInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"I", 1}, {"IV", 4}, {"ix", 9}, {"XIV", 14}, {"XL", 40},
		{"XC", 90}, {"CD", 400}, {"MCMXCIV", 1994},
	}
	for _, tc := range tests {
		if got := RomanToInt(tc.in); got != tc.want {
			t.Fatalf("RomanToInt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
