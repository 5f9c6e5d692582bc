package squeeze

import (
	"fmt"
	"testing"
)

func TestQuoteString(t *testing.T) {
	cases := []struct {
		value, expected string
	}{
		{"abc", `"abc"`},
		{`say "hi"`, `'say "hi"'`},
		{"it's", `"it's"`},
		{`'"`, `"'\""`},
		{`a\b`, `"a\\b"`},
		{"a\nb\tc", `"a\nb\tc"`},
		{"\x01\x7f", `"\x01\x7f"`},
		{"\u2028", `"\u2028"`},
		{"</script>", `"<\/script>"`},
		{"caf\u00e9", "\"caf\u00e9\""},
	}

	for _, c := range cases {
		if got := quoteString(c.value); got != c.expected {
			fmt.Printf("Quoting %q: expected %s, got %s\n", c.value, c.expected, got)
			t.Fail()
		}
	}
}

func TestPlainStringValue(t *testing.T) {
	if v, ok := plainStringValue(`"foo"`); !ok || v != "foo" {
		fmt.Printf("Expected foo, got %q %v\n", v, ok)
		t.Fail()
	}
	if _, ok := plainStringValue(`"fo\"o"`); ok {
		fmt.Printf("Escaped strings aren't plain\n")
		t.Fail()
	}
}

func TestMergeStrings(t *testing.T) {
	str := func(v string) *Token { return &Token{Type: TOKEN_STRING, Value: v} }
	add := &Token{Type: TOKEN_ADD, Value: "+"}
	dot := &Token{Type: TOKEN_DOT, Value: "."}

	ts := NewTokenStream([]*Token{str("a"), add, str("b"), add, str("c")})
	if err := mergeStrings(ts); err != nil {
		t.Fatal(err)
	}
	if ts.Len() != 1 || ts.At(0).Value != "abc" {
		fmt.Printf("Expected a single abc string, got %v\n", ts.Tokens())
		t.Fail()
	}

	ts = NewTokenStream([]*Token{str("a"), add, str("b"), dot, {Type: TOKEN_NAME, Value: "length"}})
	if err := mergeStrings(ts); err != nil {
		t.Fatal(err)
	}
	if ts.Len() != 5 {
		fmt.Printf("Member access on the right operand prevents merging, got %v\n", ts.Tokens())
		t.Fail()
	}

	ts2 := NewTokenStream([]*Token{str("a"), add, str("b")})
	ts2.Freeze()
	if err := mergeStrings(ts2); err != ErrStreamFrozen {
		fmt.Printf("Merging on a frozen stream should fail, got %v\n", err)
		t.Fail()
	}
}
