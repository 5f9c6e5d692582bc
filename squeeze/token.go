package squeeze

import (
	"fmt"

	gotoken "go/token"
)

type TokenType int

// Token is a single lexical token. Value holds the decoded lexeme for names,
// strings, numbers, regexps and preserved comments, and the printable text
// for everything else.
type Token struct {
	Type  TokenType
	Value string
	Pos   gotoken.Pos
}

const (
	TOKEN_EOF         TokenType = iota + 1 // never stored in a stream, returned by out-of-range peeks
	TOKEN_NAME                             // identifier
	TOKEN_STRING                           // string literal
	TOKEN_NUMBER                           // number literal, normalized
	TOKEN_REGEXP                           // regexp literal, slashes and flags included
	TOKEN_CONDCOMMENT                      // /*@ ... @*/
	TOKEN_KEEPCOMMENT                      // /*! ... */
	TOKEN_TRUE                             // the "true" keyword
	TOKEN_FALSE                            // the "false" keyword
	TOKEN_NULL                             // the "null" keyword
	TOKEN_THIS                             // the "this" keyword
	TOKEN_FUNCTION                         // the "function" keyword
	TOKEN_NEW                              // the "new" keyword
	TOKEN_DELPROP                          // the "delete" keyword
	TOKEN_IF                               // the "if" keyword
	TOKEN_ELSE                             // the "else" keyword
	TOKEN_FOR                              // the "for" keyword
	TOKEN_IN                               // the "in" keyword
	TOKEN_WITH                             // the "with" keyword
	TOKEN_WHILE                            // the "while" keyword
	TOKEN_DO                               // the "do" keyword
	TOKEN_TRY                              // the "try" keyword
	TOKEN_CATCH                            // the "catch" keyword
	TOKEN_FINALLY                          // the "finally" keyword
	TOKEN_THROW                            // the "throw" keyword
	TOKEN_SWITCH                           // the "switch" keyword
	TOKEN_BREAK                            // the "break" keyword
	TOKEN_CONTINUE                         // the "continue" keyword
	TOKEN_CASE                             // the "case" keyword
	TOKEN_DEFAULT                          // the "default" keyword
	TOKEN_RETURN                           // the "return" keyword
	TOKEN_VAR                              // the "var" keyword
	TOKEN_CONST                            // the "const" keyword
	TOKEN_LET                              // the "let" keyword
	TOKEN_INSTANCEOF                       // the "instanceof" keyword
	TOKEN_TYPEOF                           // the "typeof" keyword
	TOKEN_VOID                             // the "void" keyword
	TOKEN_DEBUGGER                         // the "debugger" keyword
	TOKEN_YIELD                            // the "yield" keyword
	TOKEN_GET                              // "get" introducing an accessor property
	TOKEN_SET                              // "set" introducing an accessor property
	TOKEN_COMMA                            // ,
	TOKEN_LC                               // {
	TOKEN_RC                               // }
	TOKEN_LP                               // (
	TOKEN_RP                               // )
	TOKEN_LB                               // [
	TOKEN_RB                               // ]
	TOKEN_DOT                              // .
	TOKEN_SEMI                             // ;
	TOKEN_ASSIGN                           // =
	TOKEN_ASSIGN_ADD                       // +=
	TOKEN_ASSIGN_SUB                       // -=
	TOKEN_ASSIGN_MUL                       // *=
	TOKEN_ASSIGN_DIV                       // /=
	TOKEN_ASSIGN_MOD                       // %=
	TOKEN_ASSIGN_BITOR                     // |=
	TOKEN_ASSIGN_BITXOR                    // ^=
	TOKEN_ASSIGN_BITAND                    // &=
	TOKEN_ASSIGN_LSH                       // <<=
	TOKEN_ASSIGN_RSH                       // >>=
	TOKEN_ASSIGN_URSH                      // >>>=
	TOKEN_HOOK                             // ?
	TOKEN_OBJECTLIT                        // : after an object literal key
	TOKEN_COLON                            // : of labels, cases and conditionals
	TOKEN_OR                               // ||
	TOKEN_AND                              // &&
	TOKEN_BITOR                            // |
	TOKEN_BITXOR                           // ^
	TOKEN_BITAND                           // &
	TOKEN_SHEQ                             // ===
	TOKEN_SHNE                             // !==
	TOKEN_EQ                               // ==
	TOKEN_NE                               // !=
	TOKEN_LE                               // <=
	TOKEN_LT                               // <
	TOKEN_GE                               // >=
	TOKEN_GT                               // >
	TOKEN_LSH                              // <<
	TOKEN_RSH                              // >>
	TOKEN_URSH                             // >>>
	TOKEN_NOT                              // !
	TOKEN_BITNOT                           // ~
	TOKEN_POS                              // unary +
	TOKEN_NEG                              // unary -
	TOKEN_INC                              // ++
	TOKEN_DEC                              // --
	TOKEN_ADD                              // binary +
	TOKEN_SUB                              // binary -
	TOKEN_MUL                              // *
	TOKEN_DIV                              // /
	TOKEN_MOD                              // %
)

// Printable text of every token type that doesn't carry its own value.
// Some entries carry surrounding spaces, the printer relies on them.
var literals = map[TokenType]string{
	TOKEN_GET:           "get ",
	TOKEN_SET:           "set ",
	TOKEN_TRUE:          "true",
	TOKEN_FALSE:         "false",
	TOKEN_NULL:          "null",
	TOKEN_THIS:          "this",
	TOKEN_FUNCTION:      "function",
	TOKEN_COMMA:         ",",
	TOKEN_LC:            "{",
	TOKEN_RC:            "}",
	TOKEN_LP:            "(",
	TOKEN_RP:            ")",
	TOKEN_LB:            "[",
	TOKEN_RB:            "]",
	TOKEN_DOT:           ".",
	TOKEN_NEW:           "new ",
	TOKEN_DELPROP:       "delete ",
	TOKEN_IF:            "if",
	TOKEN_ELSE:          "else",
	TOKEN_FOR:           "for",
	TOKEN_IN:            " in ",
	TOKEN_WITH:          "with",
	TOKEN_WHILE:         "while",
	TOKEN_DO:            "do",
	TOKEN_TRY:           "try",
	TOKEN_CATCH:         "catch",
	TOKEN_FINALLY:       "finally",
	TOKEN_THROW:         "throw",
	TOKEN_SWITCH:        "switch",
	TOKEN_BREAK:         "break",
	TOKEN_CONTINUE:      "continue",
	TOKEN_CASE:          "case",
	TOKEN_DEFAULT:       "default",
	TOKEN_RETURN:        "return",
	TOKEN_VAR:           "var ",
	TOKEN_CONST:         "const ",
	TOKEN_LET:           "let ",
	TOKEN_SEMI:          ";",
	TOKEN_ASSIGN:        "=",
	TOKEN_ASSIGN_ADD:    "+=",
	TOKEN_ASSIGN_SUB:    "-=",
	TOKEN_ASSIGN_MUL:    "*=",
	TOKEN_ASSIGN_DIV:    "/=",
	TOKEN_ASSIGN_MOD:    "%=",
	TOKEN_ASSIGN_BITOR:  "|=",
	TOKEN_ASSIGN_BITXOR: "^=",
	TOKEN_ASSIGN_BITAND: "&=",
	TOKEN_ASSIGN_LSH:    "<<=",
	TOKEN_ASSIGN_RSH:    ">>=",
	TOKEN_ASSIGN_URSH:   ">>>=",
	TOKEN_HOOK:          "?",
	TOKEN_OBJECTLIT:     ":",
	TOKEN_COLON:         ":",
	TOKEN_OR:            "||",
	TOKEN_AND:           "&&",
	TOKEN_BITOR:         "|",
	TOKEN_BITXOR:        "^",
	TOKEN_BITAND:        "&",
	TOKEN_SHEQ:          "===",
	TOKEN_SHNE:          "!==",
	TOKEN_EQ:            "==",
	TOKEN_NE:            "!=",
	TOKEN_LE:            "<=",
	TOKEN_LT:            "<",
	TOKEN_GE:            ">=",
	TOKEN_GT:            ">",
	TOKEN_INSTANCEOF:    " instanceof ",
	TOKEN_LSH:           "<<",
	TOKEN_RSH:           ">>",
	TOKEN_URSH:          ">>>",
	TOKEN_TYPEOF:        "typeof",
	TOKEN_VOID:          "void ",
	TOKEN_DEBUGGER:      "debugger",
	TOKEN_NOT:           "!",
	TOKEN_BITNOT:        "~",
	TOKEN_POS:           "+",
	TOKEN_NEG:           "-",
	TOKEN_INC:           "++",
	TOKEN_DEC:           "--",
	TOKEN_ADD:           "+",
	TOKEN_SUB:           "-",
	TOKEN_MUL:           "*",
	TOKEN_DIV:           "/",
	TOKEN_MOD:           "%",
	TOKEN_YIELD:         "yield ",
}

var keywords = map[string]TokenType{
	"true":       TOKEN_TRUE,
	"false":      TOKEN_FALSE,
	"null":       TOKEN_NULL,
	"this":       TOKEN_THIS,
	"function":   TOKEN_FUNCTION,
	"new":        TOKEN_NEW,
	"delete":     TOKEN_DELPROP,
	"if":         TOKEN_IF,
	"else":       TOKEN_ELSE,
	"for":        TOKEN_FOR,
	"in":         TOKEN_IN,
	"with":       TOKEN_WITH,
	"while":      TOKEN_WHILE,
	"do":         TOKEN_DO,
	"try":        TOKEN_TRY,
	"catch":      TOKEN_CATCH,
	"finally":    TOKEN_FINALLY,
	"throw":      TOKEN_THROW,
	"switch":     TOKEN_SWITCH,
	"break":      TOKEN_BREAK,
	"continue":   TOKEN_CONTINUE,
	"case":       TOKEN_CASE,
	"default":    TOKEN_DEFAULT,
	"return":     TOKEN_RETURN,
	"var":        TOKEN_VAR,
	"const":      TOKEN_CONST,
	"let":        TOKEN_LET,
	"instanceof": TOKEN_INSTANCEOF,
	"typeof":     TOKEN_TYPEOF,
	"void":       TOKEN_VOID,
	"debugger":   TOKEN_DEBUGGER,
	"yield":      TOKEN_YIELD,
}

// Text returns what the printer emits for the token, ignoring renaming.
func (t *Token) Text() string {
	switch t.Type {
	case TOKEN_NAME, TOKEN_STRING, TOKEN_NUMBER, TOKEN_REGEXP:
		return t.Value
	case TOKEN_CONDCOMMENT:
		return "/*" + t.Value + "*/"
	case TOKEN_KEEPCOMMENT:
		return "/*!" + t.Value + "*/"
	}
	return literals[t.Type]
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Text())
}

func (typ TokenType) String() string {
	switch typ {
	case TOKEN_EOF:
		return "EOF"
	case TOKEN_NAME:
		return "NAME"
	case TOKEN_STRING:
		return "STRING"
	case TOKEN_NUMBER:
		return "NUMBER"
	case TOKEN_REGEXP:
		return "REGEXP"
	case TOKEN_CONDCOMMENT:
		return "CONDCOMMENT"
	case TOKEN_KEEPCOMMENT:
		return "KEEPCOMMENT"
	case TOKEN_OBJECTLIT:
		return "OBJECTLIT"
	case TOKEN_POS:
		return "POS"
	case TOKEN_NEG:
		return "NEG"
	}
	if lit, ok := literals[typ]; ok {
		return fmt.Sprintf("'%s'", lit)
	}
	return fmt.Sprintf("TokenType(%d)", int(typ))
}

// Tells if the token can be the last one of an expression, which decides
// between division and regexp, and between binary and unary +/-.
func (t *Token) endsExpression() bool {
	switch t.Type {
	case TOKEN_NAME, TOKEN_NUMBER, TOKEN_STRING, TOKEN_REGEXP,
		TOKEN_THIS, TOKEN_TRUE, TOKEN_FALSE, TOKEN_NULL,
		TOKEN_RB, TOKEN_INC, TOKEN_DEC:
		return true
	}
	return false
}

var eofToken = &Token{Type: TOKEN_EOF}
