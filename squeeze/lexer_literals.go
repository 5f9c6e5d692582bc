package squeeze

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

func isHexDigit(ch rune) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isOctalDigit(ch rune) bool {
	return '0' <= ch && ch <= '7'
}

func digitValue(ch rune) int {
	switch {
	case '0' <= ch && ch <= '9':
		return int(ch - '0')
	case 'a' <= ch && ch <= 'f':
		return int(ch-'a') + 10
	case 'A' <= ch && ch <= 'F':
		return int(ch-'A') + 10
	}
	return -1
}

// Floats instead of integers, hex literals may exceed 64 bits.
func parseDigits(digits []rune, base int) float64 {
	value := 0.0
	for _, d := range digits {
		value = value*float64(base) + float64(digitValue(d))
	}
	return value
}

// Scans a numeric literal and returns its canonical form, the one
// Number.prototype.toString would print.
func (l *Lexer) scanNumber() (string, error) {
	var value float64
	i := 0

	switch {
	case l.buf[0] == '0' && (l.peekChar(1) == 'x' || l.peekChar(1) == 'X'):
		i = 2
		for i < len(l.buf) && isHexDigit(l.buf[i]) {
			i++
		}
		if i == 2 {
			return "", l.errorf("malformed hexadecimal literal")
		}
		value = parseDigits(l.buf[2:i], 16)
	case l.buf[0] == '0' && unicode.IsDigit(l.peekChar(1)):
		i = 1
		octal := true
		for i < len(l.buf) && unicode.IsDigit(l.buf[i]) {
			octal = octal && isOctalDigit(l.buf[i])
			i++
		}
		if octal {
			value = parseDigits(l.buf[1:i], 8)
			break
		}
		// Legacy literals like 09 are decimal.
		fallthrough
	default:
		i = 0
		for i < len(l.buf) && unicode.IsDigit(l.buf[i]) {
			i++
		}
		if l.peekChar(i) == '.' {
			i++
			for i < len(l.buf) && unicode.IsDigit(l.buf[i]) {
				i++
			}
		}
		if ch := l.peekChar(i); ch == 'e' || ch == 'E' {
			j := i + 1
			if sign := l.peekChar(j); sign == '+' || sign == '-' {
				j++
			}
			if !unicode.IsDigit(l.peekChar(j)) {
				return "", l.errorf("missing exponent in numeric literal")
			}
			for j < len(l.buf) && unicode.IsDigit(l.buf[j]) {
				j++
			}
			i = j
		}
		var err error
		value, err = strconv.ParseFloat(string(l.buf[:i]), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return "", l.errorf("malformed numeric literal %q", string(l.buf[:i]))
		}
	}

	if ch := l.peekChar(i); isIdentStart(ch) || unicode.IsDigit(ch) {
		return "", l.errorf("identifier starts immediately after numeric literal")
	}
	l.skipBy(i)
	return formatNumber(value), nil
}

// Formats a non-negative number the way JavaScript converts numbers to
// strings.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 0):
		return "Infinity"
	case f == 0:
		return "0"
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, _ := strconv.Atoi(exp)
	k, n := len(digits), e+1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	m := digits[:1]
	if k > 1 {
		m += "." + digits[1:]
	}
	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}
	return m + "e" + sign + strconv.Itoa(abs(n-1))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Scans a string literal and returns its decoded value.
func (l *Lexer) scanString(quote rune) (string, error) {
	var sb strings.Builder
	i := 1
	for i < len(l.buf) {
		ch := l.buf[i]
		switch {
		case ch == quote:
			l.skipBy(i + 1)
			return sb.String(), nil
		case ch == '\\':
			n, err := l.decodeEscape(&sb, i+1)
			if err != nil {
				return "", err
			}
			i += 1 + n
		case ch == '\n' || ch == '\r':
			return "", l.errorf("unterminated string literal")
		default:
			sb.WriteRune(ch)
			i++
		}
	}
	return "", l.errorf("unterminated string literal")
}

// Decodes the escape sequence starting at buf[i], right after the
// backslash. Returns the number of characters it took.
func (l *Lexer) decodeEscape(sb *strings.Builder, i int) (int, error) {
	if i >= len(l.buf) {
		return 0, l.errorf("unterminated string literal")
	}
	switch ch := l.buf[i]; ch {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '\r':
		// Line continuation.
		if l.peekChar(i+1) == '\n' {
			return 2, nil
		}
	case '\n', '\u2028', '\u2029':
	case 'x':
		if !isHexDigit(l.peekChar(i+1)) || !isHexDigit(l.peekChar(i+2)) {
			return 0, l.errorf("malformed \\x escape sequence")
		}
		sb.WriteRune(rune(parseDigits(l.buf[i+1:i+3], 16)))
		return 3, nil
	case 'u':
		r, ok := l.hexQuad(i + 1)
		if !ok {
			return 0, l.errorf("malformed \\u escape sequence")
		}
		if utf16.IsSurrogate(r) && l.peekChar(i+5) == '\\' && l.peekChar(i+6) == 'u' {
			if r2, ok := l.hexQuad(i + 7); ok {
				if pair := utf16.DecodeRune(r, r2); pair != unicode.ReplacementChar {
					sb.WriteRune(pair)
					return 11, nil
				}
			}
		}
		sb.WriteRune(r)
		return 5, nil
	default:
		if isOctalDigit(ch) {
			limit := 2
			if ch <= '3' {
				limit = 3
			}
			n := 1
			for n < limit && isOctalDigit(l.peekChar(i+n)) {
				n++
			}
			sb.WriteRune(rune(parseDigits(l.buf[i:i+n], 8)))
			return n, nil
		}
		sb.WriteRune(ch)
	}
	return 1, nil
}

func (l *Lexer) hexQuad(i int) (rune, bool) {
	if i+4 > len(l.buf) {
		return 0, false
	}
	for _, ch := range l.buf[i : i+4] {
		if !isHexDigit(ch) {
			return 0, false
		}
	}
	return rune(parseDigits(l.buf[i:i+4], 16)), true
}

// Scans a regular expression literal, returned as written, with slashes
// and flags.
func (l *Lexer) scanRegexp() (string, error) {
	inClass := false
	i := 1
scan:
	for {
		if i >= len(l.buf) || isLineTerminator(l.buf[i]) {
			return "", l.errorf("unterminated regular expression literal")
		}
		switch l.buf[i] {
		case '\\':
			i++
			if i >= len(l.buf) || isLineTerminator(l.buf[i]) {
				return "", l.errorf("unterminated regular expression literal")
			}
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				break scan
			}
		}
		i++
	}
	i++
	for i < len(l.buf) && isIdentPart(l.buf[i]) {
		i++
	}
	re := string(l.buf[:i])
	l.skipBy(i)
	return re, nil
}
