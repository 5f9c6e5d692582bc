package squeeze

import (
	"errors"
	"fmt"
	"testing"

	gotoken "go/token"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
)

func mustTokenize(t *testing.T, code string) []*Token {
	tokens, err := Tokenize(gotoken.NewFileSet(), "a.js", code)
	if err != nil {
		t.Fatalf("Tokenizing %q failed: %s", code, err)
	}
	return tokens
}

func tokenTypes(tokens []*Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

func testTypes(t *testing.T, code string, expected ...TokenType) {
	tokens := mustTokenize(t, code)
	if diff := cmp.Diff(expected, tokenTypes(tokens)); diff != "" {
		fmt.Printf("Wrong tokens for %q (-want +got):\n%s%s", code, diff, spew.Sdump(tokens))
		t.Fail()
	}
}

func TestOperators(t *testing.T) {
	testTypes(t, "a = b / c",
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_NAME, TOKEN_DIV, TOKEN_NAME, TOKEN_SEMI)
	testTypes(t, "a = /b/g",
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_REGEXP, TOKEN_SEMI)
	testTypes(t, "a = -b + +c",
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_NEG, TOKEN_NAME, TOKEN_ADD, TOKEN_POS, TOKEN_NAME, TOKEN_SEMI)
	testTypes(t, "a >>>= b !== c",
		TOKEN_NAME, TOKEN_ASSIGN_URSH, TOKEN_NAME, TOKEN_SHNE, TOKEN_NAME, TOKEN_SEMI)
	testTypes(t, "if (a) /x/.test(b)",
		TOKEN_IF, TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_REGEXP, TOKEN_DOT, TOKEN_NAME,
		TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_SEMI)
	testTypes(t, "(a) / 2",
		TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_DIV, TOKEN_NUMBER, TOKEN_SEMI)
}

func TestObjectLiterals(t *testing.T) {
	testTypes(t, "x = {a: 1, b: c ? d : e}",
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_LC,
		TOKEN_NAME, TOKEN_OBJECTLIT, TOKEN_NUMBER, TOKEN_COMMA,
		TOKEN_NAME, TOKEN_OBJECTLIT, TOKEN_NAME, TOKEN_HOOK, TOKEN_NAME, TOKEN_COLON, TOKEN_NAME,
		TOKEN_RC, TOKEN_SEMI)

	// Labels and case clauses use a plain colon.
	testTypes(t, "a: for (;;) {}",
		TOKEN_NAME, TOKEN_COLON, TOKEN_FOR, TOKEN_LP, TOKEN_SEMI, TOKEN_SEMI, TOKEN_RP, TOKEN_LC, TOKEN_RC)

	// Keywords are property names after a dot and as keys.
	testTypes(t, "a.delete = {new: 1}",
		TOKEN_NAME, TOKEN_DOT, TOKEN_NAME, TOKEN_ASSIGN, TOKEN_LC, TOKEN_NAME, TOKEN_OBJECTLIT,
		TOKEN_NUMBER, TOKEN_RC, TOKEN_SEMI)
}

func TestAccessors(t *testing.T) {
	testTypes(t, "o = {get x() {return 1}, set x(v) {}}",
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_LC,
		TOKEN_GET, TOKEN_NAME, TOKEN_FUNCTION, TOKEN_LP, TOKEN_RP, TOKEN_LC, TOKEN_RETURN, TOKEN_NUMBER, TOKEN_SEMI, TOKEN_RC,
		TOKEN_COMMA,
		TOKEN_SET, TOKEN_NAME, TOKEN_FUNCTION, TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_LC, TOKEN_RC,
		TOKEN_RC, TOKEN_SEMI)

	// Not accessors, just keys named get and set.
	testTypes(t, "o = {get: 1, set: 2}",
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_LC,
		TOKEN_NAME, TOKEN_OBJECTLIT, TOKEN_NUMBER, TOKEN_COMMA,
		TOKEN_NAME, TOKEN_OBJECTLIT, TOKEN_NUMBER,
		TOKEN_RC, TOKEN_SEMI)
}

func TestSemicolonInsertion(t *testing.T) {
	testTypes(t, "a = 1\nb = 2",
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_NUMBER, TOKEN_SEMI,
		TOKEN_NAME, TOKEN_ASSIGN, TOKEN_NUMBER, TOKEN_SEMI)

	// The next line continues the expression.
	testTypes(t, "a\n(b)",
		TOKEN_NAME, TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_SEMI)
	testTypes(t, "a\n+ b",
		TOKEN_NAME, TOKEN_ADD, TOKEN_NAME, TOKEN_SEMI)

	testTypes(t, "a\n++b",
		TOKEN_NAME, TOKEN_SEMI, TOKEN_INC, TOKEN_NAME, TOKEN_SEMI)

	testTypes(t, "function f() {return\nx}",
		TOKEN_FUNCTION, TOKEN_NAME, TOKEN_LP, TOKEN_RP, TOKEN_LC,
		TOKEN_RETURN, TOKEN_SEMI, TOKEN_NAME, TOKEN_SEMI, TOKEN_RC)

	testTypes(t, "var f = function() {}\nf()",
		TOKEN_VAR, TOKEN_NAME, TOKEN_ASSIGN, TOKEN_FUNCTION, TOKEN_LP, TOKEN_RP, TOKEN_LC, TOKEN_RC, TOKEN_SEMI,
		TOKEN_NAME, TOKEN_LP, TOKEN_RP, TOKEN_SEMI)

	// No terminator after a declaration or a block.
	testTypes(t, "function f() {}\nif (a) {}\nb",
		TOKEN_FUNCTION, TOKEN_NAME, TOKEN_LP, TOKEN_RP, TOKEN_LC, TOKEN_RC,
		TOKEN_IF, TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_LC, TOKEN_RC,
		TOKEN_NAME, TOKEN_SEMI)

	testTypes(t, "do x(); while (a) y()",
		TOKEN_DO, TOKEN_NAME, TOKEN_LP, TOKEN_RP, TOKEN_SEMI,
		TOKEN_WHILE, TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_SEMI,
		TOKEN_NAME, TOKEN_LP, TOKEN_RP, TOKEN_SEMI)

	// Never inside parentheses.
	testTypes(t, "f(a\n,b)",
		TOKEN_NAME, TOKEN_LP, TOKEN_NAME, TOKEN_COMMA, TOKEN_NAME, TOKEN_RP, TOKEN_SEMI)
}

func TestAdjacentOperands(t *testing.T) {
	testTypes(t, "++a",
		TOKEN_INC, TOKEN_NAME, TOKEN_SEMI)
	testTypes(t, "k in o",
		TOKEN_NAME, TOKEN_IN, TOKEN_NAME, TOKEN_SEMI)
	testTypes(t, "a instanceof B",
		TOKEN_NAME, TOKEN_INSTANCEOF, TOKEN_NAME, TOKEN_SEMI)
	testTypes(t, "a\n'b'",
		TOKEN_NAME, TOKEN_SEMI, TOKEN_STRING, TOKEN_SEMI)
	testTypes(t, "if (a) {} else b",
		TOKEN_IF, TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_LC, TOKEN_RC, TOKEN_ELSE, TOKEN_NAME, TOKEN_SEMI)
}

func TestEmptyStatements(t *testing.T) {
	testTypes(t, "if (a);",
		TOKEN_IF, TOKEN_LP, TOKEN_NAME, TOKEN_RP, TOKEN_LC, TOKEN_RC)
	testTypes(t, "for (;;);",
		TOKEN_FOR, TOKEN_LP, TOKEN_SEMI, TOKEN_SEMI, TOKEN_RP, TOKEN_LC, TOKEN_RC)
}

func TestComments(t *testing.T) {
	tokens := mustTokenize(t, "// line\n/* dropped */ /*! kept */ a /*@cc_on @*/")
	expected := []*Token{
		{Type: TOKEN_KEEPCOMMENT, Value: " kept "},
		{Type: TOKEN_NAME, Value: "a"},
		{Type: TOKEN_SEMI, Value: ";"},
		{Type: TOKEN_CONDCOMMENT, Value: "@cc_on @"},
	}
	if len(tokens) != len(expected) {
		fmt.Printf("Expected %d tokens, got %s", len(expected), spew.Sdump(tokens))
		t.FailNow()
	}
	for i, e := range expected {
		if tokens[i].Type != e.Type || tokens[i].Value != e.Value {
			fmt.Printf("Token %d: received %v instead of %v\n", i, tokens[i], e)
			t.Fail()
		}
	}
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		code, value string
	}{
		{"0", "0"},
		{"1.50", "1.5"},
		{"1e3", "1000"},
		{".5", "0.5"},
		{"5.", "5"},
		{"0x1F", "31"},
		{"010", "8"},
		{"09", "9"},
		{"1e21", "1e+21"},
		{"123e-20", "1.23e-18"},
		{"0.000001", "0.000001"},
		{"1e-7", "1e-7"},
		{"1e400", "Infinity"},
	}

	for _, c := range cases {
		tokens := mustTokenize(t, c.code)
		if tokens[0].Type != TOKEN_NUMBER || tokens[0].Value != c.value {
			fmt.Printf("Number %s: expected %s, got %v\n", c.code, c.value, tokens[0])
			t.Fail()
		}
	}
}

func TestStrings(t *testing.T) {
	cases := []struct {
		code, value string
	}{
		{`"abc"`, "abc"},
		{`'a"b'`, `a"b`},
		{`"a\nb"`, "a\nb"},
		{`"\x41B"`, "AB"},
		{`"\101"`, "A"},
		{`"\uD83D\uDE00"`, "\U0001F600"},
		{"\"a\\\nb\"", "ab"},
		{`"\q"`, "q"},
	}

	for _, c := range cases {
		tokens := mustTokenize(t, c.code)
		if tokens[0].Type != TOKEN_STRING || tokens[0].Value != c.value {
			fmt.Printf("String %s: expected %q, got %v\n", c.code, c.value, tokens[0])
			t.Fail()
		}
	}
}

func TestRegexps(t *testing.T) {
	tokens := mustTokenize(t, `x = /[/]\//gi`)
	if tokens[2].Type != TOKEN_REGEXP || tokens[2].Value != `/[/]\//gi` {
		fmt.Printf("Wrong regexp: %v\n", tokens[2])
		t.Fail()
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := []struct {
		code         string
		line, column int
	}{
		{"a = 1\nb = \"x", 2, 5},
		{"a = (b", 1, 7},
		{"a = 3x", 1, 5},
		{"a = @", 1, 5},
		{"a = b)", 1, 6},
		{"/* open", 1, 3},
		{"x = 'it''s'", 1, 9},
		{"x = y z", 1, 7},
		{"f(a 1)", 1, 5},
		{"x = [a\nb]", 2, 1},
		{"x = {} y", 1, 8},
	}

	for _, c := range cases {
		_, err := Tokenize(gotoken.NewFileSet(), "a.js", c.code)
		var se *SyntaxError
		if !errors.As(err, &se) {
			fmt.Printf("Tokenizing %q should've failed with a syntax error, got %v\n", c.code, err)
			t.Fail()
			continue
		}
		if se.Line != c.line || se.Column != c.column || se.File != "a.js" {
			fmt.Printf("Tokenizing %q: wrong position %s\n", c.code, se)
			t.Fail()
		}
	}
}

func TestTokenPositions(t *testing.T) {
	fset := gotoken.NewFileSet()
	tokens, err := Tokenize(fset, "a.js", "a\n  bb")
	if err != nil {
		t.Fatal(err)
	}
	pos := fset.Position(tokens[2].Pos)
	if tokens[2].Value != "bb" || pos.Line != 2 || pos.Column != 3 {
		fmt.Printf("Wrong position of %v: %s\n", tokens[2], pos)
		t.Fail()
	}
}
