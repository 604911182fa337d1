package pricing

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		buy  float64
		ap   float64
		want float64
	}{
		{"buy markup", "=BUY*1.1", 1000, 0, 1100},
		{"ap percent markup", "=AP+10%", 0, 200, 220},
		{"ap percent markdown", "=AP-50%", 0, 200, 100},
		{"long phrases", "=BUYING PRICE + AP PRICE", 100, 50, 150},
		{"lowercase and spaces", " = buy x 2 ", 300, 0, 600},
		{"comma decimal", "=BUY*1,5", 100, 0, 150},
		{"parentheses", "=(AP+BUY)/2", 100, 300, 200},
		{"plain constant", "123", 0, 0, 123},
		{"bare percent", "50%", 0, 0, 0.5},
		{"percent inside product", "=BUY*10%", 500, 0, 50},
		{"unary minus", "=-AP", 0, 40, -40},
		{"injection attempt", "garbage;rm -rf", 100, 100, 0},
		{"empty", "", 100, 100, 0},
		{"unbalanced paren", "=(AP+1", 0, 10, 0},
		{"division by zero", "=AP/0", 0, 10, 0},
		{"only operator", "=*", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.expr, tt.buy, tt.ap)
			if !almostEqual(got, tt.want) {
				t.Errorf("Evaluate(%q, %v, %v) = %v, want %v", tt.expr, tt.buy, tt.ap, got, tt.want)
			}
		})
	}
}

func TestEvaluateNeverPanics(t *testing.T) {
	inputs := []string{"((((", "%%%", "1..2+", "AP AP AP", "+-*/", ")("}
	for _, in := range inputs {
		got := Evaluate(in, 1, 2)
		if got != got { // NaN guard
			t.Errorf("Evaluate(%q) returned NaN", in)
		}
	}
}
