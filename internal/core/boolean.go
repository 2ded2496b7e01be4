package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var booleanWords = map[string]bool{
	"yes": true,
	"no":  false,
}

// ParseBoolean coerces a cell value. Numeric text is true when its leading
// integer part is nonzero ("0.5" is false); "yes" and "no" match
// case-exactly; anything else is true when non-empty.
func ParseBoolean(v string) bool {
	if isNumeric(v) {
		return integerPart(v) != 0
	}
	if b, ok := booleanWords[v]; ok {
		return b
	}
	return v != ""
}

// isNumeric reports whether v reads as a finite number. Blank text counts as
// numeric (with no integer part).
func isNumeric(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return true
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, err := strconv.ParseUint(s[2:], 16, 64)
		return err == nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range decimals are still numbers.
		return errors.Is(err, strconv.ErrRange)
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// integerPart parses the leading integer of v: optional sign, then hex digits
// after a 0x prefix or decimal digits. Text without digits yields 0.
func integerPart(v string) int64 {
	s := strings.TrimSpace(v)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		// Overflow still means a nonzero integer.
		n = math.MaxInt64
	}
	if neg {
		n = -n
	}
	return n
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		return true
	}
	return false
}
