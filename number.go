// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jevent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// numberValue is a classified number token.
type numberValue struct {
	isInt bool
	i     int64
	f     float64
	d     Decimal
	raw   bool
}

// emit reports n to h.
func (n numberValue) emit(h Handler) error {
	switch {
	case n.isInt:
		return h.Int(n.i)
	case n.raw:
		return h.Decimal(n.d)
	default:
		return h.Float(n.f)
	}
}

// parseNumber classifies and converts the text of a number token.  If float
// is true the token contained a fraction or exponent. An integer that does
// not fit in an int64 is treated as a floating value.
func parseNumber(text string, float bool, d Dialect) (numberValue, error) {
	text = normalizeNumber(text)
	if !isNumber(text) {
		return numberValue{}, fmt.Errorf("malformed number %q", text)
	}
	if !float {
		v, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return numberValue{isInt: true, i: v}, nil
		} else if !errors.Is(err, strconv.ErrRange) {
			return numberValue{}, fmt.Errorf("malformed number %q: %w", text, err)
		}
	}
	if d.Has(RawDecimal) {
		return numberValue{raw: true, d: Decimal(text)}, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Values out of range are still reported (as ±Inf).
		if !errors.Is(err, strconv.ErrRange) {
			return numberValue{}, fmt.Errorf("malformed number %q: %w", text, err)
		}
	}
	return numberValue{f: v}, nil
}

// normalizeNumber adds the missing zero to a number with a bare leading
// decimal point, so ".5" becomes "0.5" and "-.5" becomes "-0.5".
func normalizeNumber(text string) string {
	if strings.HasPrefix(text, ".") {
		return "0" + text
	} else if strings.HasPrefix(text, "-.") {
		return "-0" + text[1:]
	}
	return text
}

// isNumber reports whether text is a number in the JSON grammar.
//
// OK: 0, -1, 0.1, -1.0e5, 3E+2.
// Bad: 01, -01, 1., 1e, +1, --1.
func isNumber(text string) bool {
	i, n := 0, len(text)
	if i < n && text[i] == '-' {
		i++
	}
	if i < n && text[i] == '0' {
		i++
	} else if i < n && isDigit(text[i]) {
		i = skipDigits(text, i)
	} else {
		return false
	}
	if i < n && text[i] == '.' {
		j := skipDigits(text, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}
	if i < n && (text[i] == 'e' || text[i] == 'E') {
		i++
		if i < n && (text[i] == '+' || text[i] == '-') {
			i++
		}
		j := skipDigits(text, i)
		if j == i {
			return false
		}
		i = j
	}
	return i == n
}

func skipDigits(text string, i int) int {
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	return i
}

func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return 'a' <= ch && ch <= 'z' }

// isNumByte reports whether ch can occur in a number token.
func isNumByte(ch byte) bool {
	return isDigit(ch) || ch == '-' || ch == '+' || ch == '.' || ch == 'e' || ch == 'E'
}

// isNumStart reports whether ch can begin a number token.
func isNumStart(ch byte) bool { return isDigit(ch) || ch == '-' || ch == '.' }
