package pricing

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Evaluate runs the quotation formula mini-language and returns the
// numeric result. The language is arithmetic over two placeholders:
//
//	=BUY*1.1        buying price plus 10%
//	=AP+10%         AP price marked up 10%
//	=(AP+BUY)/2     midpoint
//
// "AP PRICE"/"AP" substitute apPrice, "BUYING PRICE"/"BUY" substitute
// buyingPrice (longest phrase first so "AP" never clobbers "AP PRICE").
// "X"/"x" multiplies, comma is a decimal point, and a trailing % takes
// the percentage of the running value in an additive context. Anything
// that fails to parse — including injection attempts — evaluates to 0.
// The expression is parsed with a dedicated grammar; no generic
// evaluator is ever invoked.
func Evaluate(expr string, buyingPrice, apPrice float64) float64 {
	src := strings.ToUpper(strings.TrimSpace(expr))
	src = strings.TrimPrefix(src, "=")

	ap := strconv.FormatFloat(apPrice, 'f', -1, 64)
	buy := strconv.FormatFloat(buyingPrice, 'f', -1, 64)
	src = strings.ReplaceAll(src, "AP PRICE", ap)
	src = strings.ReplaceAll(src, "BUYING PRICE", buy)
	src = strings.ReplaceAll(src, "BUY", buy)
	src = strings.ReplaceAll(src, "AP", ap)

	src = strings.ReplaceAll(src, ",", ".")
	src = strings.ReplaceAll(src, "X", "*")

	// Whitelist pass: anything outside the grammar's alphabet is dropped
	// after substitution (substituted values are pure digits and dots).
	var b strings.Builder
	for _, r := range src {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(".+-*/()%", r):
			b.WriteRune(r)
		}
	}

	p := &exprParser{src: b.String()}
	v, err := p.parseExpr()
	if err != nil || !p.atEnd() {
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

var errBadExpr = errors.New("malformed expression")

// exprParser is a recursive-descent parser over the filtered expression.
// Grammar:
//
//	expr   = term { ("+"|"-") term }
//	term   = factor { ("*"|"/") factor }
//	factor = ["-"] ( number | "(" expr ")" ) ["%"]
//
// A percent-marked term on the right of +/- means "percent of the left
// value"; inside a product it simply divides by 100.
type exprParser struct {
	src string
	pos int
}

func (p *exprParser) atEnd() bool { return p.pos >= len(p.src) }

func (p *exprParser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	v, pct, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	if pct {
		v /= 100 // a bare leading percent: "10%" is 0.1
	}
	for p.peek() == '+' || p.peek() == '-' {
		op := p.src[p.pos]
		p.pos++
		rhs, rhsPct, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if rhsPct {
			rhs = v * rhs / 100
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

// parseTerm returns the term value and whether the term as a whole is a
// single percent-marked factor (so the caller can apply the additive
// percent rule).
func (p *exprParser) parseTerm() (float64, bool, error) {
	v, pct, err := p.parseFactor()
	if err != nil {
		return 0, false, err
	}
	for p.peek() == '*' || p.peek() == '/' {
		if pct {
			v /= 100
			pct = false
		}
		op := p.src[p.pos]
		p.pos++
		rhs, rhsPct, err := p.parseFactor()
		if err != nil {
			return 0, false, err
		}
		if rhsPct {
			rhs /= 100
		}
		if op == '*' {
			v *= rhs
		} else {
			v /= rhs
		}
	}
	return v, pct, nil
}

func (p *exprParser) parseFactor() (float64, bool, error) {
	neg := false
	for p.peek() == '-' || p.peek() == '+' {
		if p.peek() == '-' {
			neg = !neg
		}
		p.pos++
	}

	var v float64
	switch {
	case p.peek() == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return 0, false, err
		}
		if p.peek() != ')' {
			return 0, false, errBadExpr
		}
		p.pos++
		v = inner
	default:
		start := p.pos
		for !p.atEnd() && (p.src[p.pos] == '.' || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9')) {
			p.pos++
		}
		if start == p.pos {
			return 0, false, errBadExpr
		}
		parsed, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return 0, false, errBadExpr
		}
		v = parsed
	}

	if neg {
		v = -v
	}

	pct := false
	if p.peek() == '%' {
		p.pos++
		pct = true
	}
	return v, pct, nil
}
