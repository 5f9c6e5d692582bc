package squeeze

import (
	"strings"
	"unicode/utf8"
)

// Output accumulates printed code and keeps track of the current line.
type Output struct {
	buf       []byte
	lineStart int
}

func (o *Output) AddString(s string) {
	o.buf = append(o.buf, s...)
}

// Newline ends the current line.
func (o *Output) Newline() {
	o.buf = append(o.buf, '\n')
	o.lineStart = len(o.buf)
}

// Returns 0 when nothing has been printed yet.
func (o *Output) LastChar() rune {
	r, _ := utf8.DecodeLastRune(o.buf)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// ReplaceLast overwrites the last printed byte.
func (o *Output) ReplaceLast(b byte) {
	o.buf[len(o.buf)-1] = b
}

func (o *Output) Len() int {
	return len(o.buf)
}

func (o *Output) LineLength() int {
	return len(o.buf) - o.lineStart
}

func (o *Output) ReadAll() string {
	return string(o.buf)
}

// Mapping lists the replacement of every identifier, one per line as
// "replacement: original", indented with a tab per nesting level.
func (t *ScopeTree) Mapping() string {
	var sb strings.Builder
	t.writeMapping(&sb, GlobalScope, "")
	return sb.String()
}

func (t *ScopeTree) writeMapping(sb *strings.Builder, scope ScopeID, prefix string) {
	s := t.scopes[scope]
	for _, id := range s.identifiers {
		sb.WriteString(prefix)
		sb.WriteString(id.Replacement())
		sb.WriteString(": ")
		sb.WriteString(id.Name)
		sb.WriteByte('\n')
	}
	for _, child := range s.Children {
		t.writeMapping(sb, child, "\t"+prefix)
	}
}
