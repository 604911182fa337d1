package pricing

import (
	"math"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "0"},
		{"under a thousand", 999, "999"},
		{"exactly a thousand", 1000, "1,000"},
		{"grouped millions", 1234500, "1,234,500"},
		{"rounds half up", 350000.6, "350,001"},
		{"negative grouped", -9500.4, "-9,500"},
		{"nan falls back", math.NaN(), "0"},
		{"inf falls back", math.Inf(1), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(tt.in); got != tt.want {
				t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(12.5); got != "12.50%" {
		t.Errorf("FormatPercent(12.5) = %q, want 12.50%%", got)
	}
	if got := FormatPercent(math.NaN()); got != "0.00%" {
		t.Errorf("FormatPercent(NaN) = %q, want 0.00%%", got)
	}
}
