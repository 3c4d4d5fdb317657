package credit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmbiguousAmount = errors.New("ambiguous amount")
	ErrInvalidCount    = errors.New("invalid count")
)

const (
	currencySymbol  = "R$"
	maxFractionDigs = 2
	thousandsGroup  = 3
)

// ParseAmount parses a currency amount typed with either '.' or ',' as the
// decimal mark.
//
// Accepted input, after surrounding whitespace: an optional '-', an optional
// "R$" symbol, then digits with separators.
//   - both separators present: the right-most one is the decimal mark and the
//     other groups the integer part by three ("3.500,00", "3,500.00");
//   - one separator occurring once: decimal mark ("3500,5", "3500.50"), unless
//     exactly three digits follow it ("1.500"), which is rejected as
//     ErrAmbiguousAmount;
//   - one separator occurring several times: thousands grouping only
//     ("1.234.567").
//
// At most two fractional digits are allowed.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, currencySymbol))
	if !neg && strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q is empty", ErrInvalidAmount, raw)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '.' {
			return decimal.Zero, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidAmount, r, raw)
		}
	}
	if !isDigit(s[0]) || !isDigit(s[len(s)-1]) {
		return decimal.Zero, fmt.Errorf("%w: %q must start and end with a digit", ErrInvalidAmount, raw)
	}

	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	var intPart, frac string
	switch {
	case commas > 0 && dots > 0:
		mark, group := byte(','), byte('.')
		if strings.LastIndexByte(s, '.') > strings.LastIndexByte(s, ',') {
			mark, group = '.', ','
		}
		i := strings.LastIndexByte(s, mark)
		if strings.IndexByte(s[:i], mark) >= 0 {
			return decimal.Zero, fmt.Errorf("%w: decimal mark repeated in %q", ErrInvalidAmount, raw)
		}
		digits, ok := ungroup(s[:i], group)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: malformed digit grouping in %q", ErrInvalidAmount, raw)
		}
		intPart, frac = digits, s[i+1:]
	case commas+dots == 1:
		i := strings.IndexAny(s, ",.")
		intPart, frac = s[:i], s[i+1:]
		if len(frac) == thousandsGroup {
			return decimal.Zero, fmt.Errorf("%w: %q may be a thousands separator or a decimal mark", ErrAmbiguousAmount, raw)
		}
	case commas > 1 || dots > 1:
		group := byte(',')
		if dots > 0 {
			group = '.'
		}
		digits, ok := ungroup(s, group)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: malformed digit grouping in %q", ErrInvalidAmount, raw)
		}
		intPart = digits
	default:
		intPart = s
	}

	if len(frac) > maxFractionDigs {
		return decimal.Zero, fmt.Errorf("%w: more than %d decimal places in %q", ErrInvalidAmount, maxFractionDigs, raw)
	}
	num := intPart
	if frac != "" {
		num += "." + frac
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// ParseCount parses a whole number such as an age, a month count or a score.
func ParseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, raw)
	}
	return n, nil
}

// ungroup strips thousands separators, requiring a 1-3 digit leading group
// followed by groups of exactly three digits.
func ungroup(s string, sep byte) (string, bool) {
	parts := strings.Split(s, string(sep))
	if len(parts[0]) == 0 || len(parts[0]) > thousandsGroup {
		return "", false
	}
	for _, p := range parts[1:] {
		if len(p) != thousandsGroup {
			return "", false
		}
	}
	return strings.Join(parts, ""), true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
