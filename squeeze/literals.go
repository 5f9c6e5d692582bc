package squeeze

import (
	"fmt"
	"regexp"
	"strings"
)

// Matching names are valid identifiers. Some valid identifiers don't match.
var simpleIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(words *Words, s string) bool {
	return simpleIdentifier.MatchString(s) && !words.IsReserved(s)
}

// Tokens binding tighter than '+' on the left of a string literal.
func bindsLeft(t *Token) bool {
	switch t.Type {
	case TOKEN_SUB, TOKEN_MUL, TOKEN_DIV, TOKEN_MOD, TOKEN_NOT, TOKEN_BITNOT,
		TOKEN_POS, TOKEN_NEG, TOKEN_INC, TOKEN_DEC, TOKEN_TYPEOF, TOKEN_VOID,
		TOKEN_DELPROP, TOKEN_NEW, TOKEN_DOT:
		return true
	}
	return false
}

// Tokens binding tighter than '+' on the right of a string literal.
func bindsRight(t *Token) bool {
	switch t.Type {
	case TOKEN_DOT, TOKEN_LB, TOKEN_LP, TOKEN_MUL, TOKEN_DIV, TOKEN_MOD, TOKEN_INC, TOKEN_DEC:
		return true
	}
	return false
}

// Folds "a" + "b" into "ab" wherever neither operand belongs to a tighter
// binding operation, "a" + "b".toUpperCase() stays as it is.
func mergeStrings(ts *TokenStream) error {
	for i := 1; i < ts.Len()-1; i++ {
		left, op, right := ts.At(i-1), ts.At(i), ts.At(i+1)
		if op.Type != TOKEN_ADD || left.Type != TOKEN_STRING || right.Type != TOKEN_STRING {
			continue
		}
		if bindsLeft(ts.At(i-2)) || bindsRight(ts.At(i+2)) {
			continue
		}
		merged := &Token{Type: TOKEN_STRING, Value: left.Value + right.Value, Pos: left.Pos}
		if err := ts.Set(i-1, merged); err != nil {
			return err
		}
		if err := ts.Remove(i, 2); err != nil {
			return err
		}
		i--
	}
	return nil
}

// Quotes a decoded string with whichever quote needs less escaping.
func quoteString(s string) string {
	quote := '"'
	if strings.Count(s, `"`) > strings.Count(s, "'") {
		quote = '\''
	}

	var sb strings.Builder
	sb.WriteRune(quote)
	for _, ch := range s {
		switch ch {
		case quote, '\\':
			sb.WriteByte('\\')
			sb.WriteRune(ch)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&sb, `\u%04x`, ch)
		default:
			if ch < 0x20 || ch == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, ch)
			} else {
				sb.WriteRune(ch)
			}
		}
	}
	sb.WriteRune(quote)

	// Merging '<scr' + 'ipt>' style strings must not produce a closing
	// script tag inside an HTML page.
	return strings.ReplaceAll(sb.String(), "</script", `<\/script`)
}

func quoteStrings(ts *TokenStream) error {
	for i := 0; i < ts.Len(); i++ {
		if t := ts.At(i); t.Type == TOKEN_STRING {
			if err := ts.Set(i, &Token{Type: TOKEN_STRING, Value: quoteString(t.Value), Pos: t.Pos}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Unquotes a string literal produced by quoteString, as long as nothing in
// it was escaped.
func plainStringValue(lit string) (string, bool) {
	if len(lit) < 2 || strings.ContainsRune(lit, '\\') {
		return "", false
	}
	return lit[1 : len(lit)-1], true
}

// Rewrites obj["foo"] into obj.foo.
func optimizeMemberAccess(ts *TokenStream, words *Words) error {
	for i := 1; i < ts.Len()-2; i++ {
		if ts.At(i).Type != TOKEN_LB || ts.At(i-1).Type != TOKEN_NAME ||
			ts.At(i+1).Type != TOKEN_STRING || ts.At(i+2).Type != TOKEN_RB {
			continue
		}
		name, ok := plainStringValue(ts.At(i + 1).Value)
		if !ok || !isValidIdentifier(words, name) {
			continue
		}
		if err := ts.Set(i, &Token{Type: TOKEN_DOT, Value: ".", Pos: ts.At(i).Pos}); err != nil {
			return err
		}
		if err := ts.Set(i+1, &Token{Type: TOKEN_NAME, Value: name, Pos: ts.At(i + 1).Pos}); err != nil {
			return err
		}
		if err := ts.Remove(i+2, 1); err != nil {
			return err
		}
		i++
	}
	return nil
}

// Rewrites {"foo": 1} into {foo: 1}.
func optimizeObjectKeys(ts *TokenStream, words *Words) error {
	for i := 1; i < ts.Len(); i++ {
		if ts.At(i).Type != TOKEN_OBJECTLIT || ts.At(i-1).Type != TOKEN_STRING {
			continue
		}
		name, ok := plainStringValue(ts.At(i - 1).Value)
		if !ok || !isValidIdentifier(words, name) {
			continue
		}
		if err := ts.Set(i-1, &Token{Type: TOKEN_NAME, Value: name, Pos: ts.At(i - 1).Pos}); err != nil {
			return err
		}
	}
	return nil
}
