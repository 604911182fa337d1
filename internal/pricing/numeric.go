package pricing

import (
	"strconv"
	"strings"
)

// ParseAmount converts free-form money/percent text into a float64.
// Thousands separators, currency symbols (VND, RMB, ¥, $, ₫...), percent
// signs and whitespace are stripped before parsing. Empty strings, "nan",
// "none" and anything still unparseable yield 0 — the parser never fails.
func ParseAmount(s string) float64 {
	cleaned, ok := cleanNumeric(s)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseQuantity is ParseAmount with the RFQ quantity rule: a missing or
// unparseable quantity defaults to 1, an explicit 0 stays 0.
func ParseQuantity(s string) float64 {
	cleaned, ok := cleanNumeric(s)
	if !ok {
		return 1
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 1
	}
	return v
}

func cleanNumeric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "n/a", "-":
		return "", false
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-':
			b.WriteRune(r)
			// commas are thousands separators in the import files; drop them
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
