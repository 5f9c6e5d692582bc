package squeeze

import "strings"

// Hooks of a pass over the token list. The walker decides where scopes
// start and end and which tokens are declarations, the pass decides what to
// do with them.
type pass interface {
	functionName(w *walker, scope ScopeID, name *Token)
	// Returns the scope of the function whose parameter list starts at the
	// token index at.
	functionScope(w *walker, at int) (ScopeID, error)
	parameter(w *walker, fn ScopeID, name *Token, position int)
	hint(w *walker, fn ScopeID, name, directive, raw string)
	invalidHint(w *walker, raw string)
	varStatement(w *walker, scope ScopeID)
	variable(w *walker, scope ScopeID, name *Token)
	catchParameter(w *walker, scope ScopeID, name *Token)
	unsafe(w *walker, scope ScopeID, construct string)
	name(w *walker, scope ScopeID, name *Token)
}

// The walker visits the tokens in the order shared by every pass, so that
// function scopes are requested at the same token indexes each time.
type walker struct {
	stream       *TokenStream
	tree         *ScopeTree
	pass         pass
	diag         *diagnostics
	braceNesting int
	scopes       ScopeStack
	// Token indexes at which function scopes were requested, in order.
	trace []int
}

func newWalker(stream *TokenStream, tree *ScopeTree, p pass, diag *diagnostics) *walker {
	return &walker{stream: stream, tree: tree, pass: p, diag: diag}
}

func (w *walker) walk() error {
	w.stream.Reset()
	w.braceNesting = 0
	w.scopes.erase()
	w.trace = nil
	return w.parseScope(GlobalScope)
}

func (w *walker) warn(format string, args ...interface{}) {
	w.diag.warnAt(w.stream, format, args...)
}

// Tells if the name that has just been consumed is a property name rather
// than a reference to a variable.
func (w *walker) isProperty() bool {
	switch w.stream.Peek(-2).Type {
	case TOKEN_DOT, TOKEN_GET, TOKEN_SET:
		return true
	}
	return w.stream.Peek(0).Type == TOKEN_OBJECTLIT
}

func (w *walker) unexpected(token *Token, expected string) error {
	return CompileErrorf(token, ErrUnexpectedToken, "expected %s, got %s", expected, token)
}

func (w *walker) parseScope(scope ScopeID) error {
	w.scopes.push(scope)

	for !w.stream.AtEnd() {
		token := w.stream.Consume()

		switch token.Type {
		case TOKEN_VAR, TOKEN_CONST, TOKEN_LET:
			if token.Type == TOKEN_VAR {
				w.pass.varStatement(w, scope)
			}
			if err := w.parseDeclarations(scope); err != nil {
				return err
			}
		case TOKEN_FUNCTION:
			if err := w.parseFunction(); err != nil {
				return err
			}
		case TOKEN_LC:
			w.braceNesting++
		case TOKEN_RC:
			w.braceNesting--
			nesting := w.tree.Scope(scope).BraceNesting
			if w.braceNesting < 0 || w.braceNesting < nesting {
				return CompileErrorf(token, ErrUnbalancedBraces, "unmatched '}'")
			}
			if w.braceNesting == nesting {
				w.scopes.pop()
				return nil
			}
		case TOKEN_WITH:
			w.pass.unsafe(w, scope, "with")
		case TOKEN_CATCH:
			if err := w.parseCatch(scope); err != nil {
				return err
			}
		case TOKEN_CONDCOMMENT:
			w.pass.unsafe(w, scope, "conditional comment")
		case TOKEN_NAME:
			w.pass.name(w, scope, token)
		}
	}

	if scope != GlobalScope {
		return CompileErrorf(w.stream.Peek(-1), ErrUnbalancedBraces, "function body not closed at end of input")
	}
	w.scopes.pop()
	return nil
}

// Parses the names following var, const or let. Each one is either
// initialized, followed by a comma, or the iteration variable of a for-in.
func (w *walker) parseDeclarations(scope ScopeID) error {
	for {
		token := w.stream.Consume()
		if token.Type != TOKEN_NAME {
			return w.unexpected(token, "a variable name")
		}
		w.pass.variable(w, scope, token)

		switch next := w.stream.Peek(0); next.Type {
		case TOKEN_IN:
			return nil
		case TOKEN_SEMI, TOKEN_ASSIGN, TOKEN_COMMA:
		default:
			return w.unexpected(next, "'=', ',', ';' or 'in' after a variable name")
		}

		if err := w.parseExpression(); err != nil {
			return err
		}
		if w.stream.AtEnd() || w.stream.Peek(-1).Type == TOKEN_SEMI {
			return nil
		}
	}
}

// Parses an expression up to a comma or a terminator at its own nesting
// level, descending into function literals.
func (w *walker) parseExpression() error {
	braceNesting := w.braceNesting
	bracketNesting, parenNesting := 0, 0

	for !w.stream.AtEnd() {
		token := w.stream.Consume()
		scope := w.scopes.current()

		switch token.Type {
		case TOKEN_SEMI, TOKEN_COMMA:
			if w.braceNesting == braceNesting && bracketNesting == 0 && parenNesting == 0 {
				return nil
			}
		case TOKEN_FUNCTION:
			if err := w.parseFunction(); err != nil {
				return err
			}
		case TOKEN_LC:
			w.braceNesting++
		case TOKEN_RC:
			w.braceNesting--
			if w.braceNesting < braceNesting {
				return CompileErrorf(token, ErrUnbalancedBraces, "unmatched '}' in expression")
			}
		case TOKEN_LB:
			bracketNesting++
		case TOKEN_RB:
			bracketNesting--
		case TOKEN_LP:
			parenNesting++
		case TOKEN_RP:
			parenNesting--
		case TOKEN_CONDCOMMENT:
			w.pass.unsafe(w, scope, "conditional comment")
		case TOKEN_NAME:
			w.pass.name(w, scope, token)
		}
	}
	return nil
}

// Parses a function from right after the "function" keyword up to the end
// of its body.
func (w *walker) parseFunction() error {
	scope := w.scopes.current()

	token := w.stream.Consume()
	if token.Type == TOKEN_NAME {
		w.pass.functionName(w, scope, token)
		token = w.stream.Consume()
	}
	if token.Type != TOKEN_LP {
		return w.unexpected(token, "'(' after function")
	}

	at := w.stream.Offset()
	w.trace = append(w.trace, at)
	fn, err := w.pass.functionScope(w, at)
	if err != nil {
		return err
	}

	position := 0
	for token = w.stream.Consume(); token.Type != TOKEN_RP; token = w.stream.Consume() {
		switch token.Type {
		case TOKEN_NAME:
			w.pass.parameter(w, fn, token, position)
			position++
		case TOKEN_COMMA:
		default:
			return w.unexpected(token, "a parameter name")
		}
	}

	token = w.stream.Consume()
	if token.Type != TOKEN_LC {
		return w.unexpected(token, "'{' opening the function body")
	}
	w.braceNesting++

	w.parseHints(fn)
	return w.parseScope(fn)
}

// Strips the quotes of a string literal.
func unquote(lit string) string {
	if len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') {
		return lit[1 : len(lit)-1]
	}
	return lit
}

// Tells if the tokens at the start of a function body are a hint directive.
// Directives without a colon, like "use strict", are left alone.
func atHints(ts *TokenStream) bool {
	token := ts.Peek(0)
	return token.Type == TOKEN_STRING && ts.Peek(1).Type == TOKEN_SEMI &&
		strings.ContainsRune(token.Value, ':')
}

// A function body may start with a directive string listing names that
// must keep their original spelling, like "$super:nomunge, data:nomunge";
func (w *walker) parseHints(fn ScopeID) {
	if !atHints(w.stream) {
		return
	}
	token := w.stream.Consume()

	hints := strings.TrimSpace(unquote(token.Value))
	entries := strings.FieldsFunc(hints, func(r rune) bool { return r == ',' })
	for _, hint := range entries {
		idx := strings.IndexByte(hint, ':')
		if idx <= 0 || idx >= len(hint)-1 {
			w.pass.invalidHint(w, hint)
			return
		}
		name := strings.TrimSpace(hint[:idx])
		directive := strings.TrimSpace(hint[idx+1:])
		w.pass.hint(w, fn, name, directive, hint)
	}
}

func (w *walker) parseCatch(scope ScopeID) error {
	if token := w.stream.Consume(); token.Type != TOKEN_LP {
		return w.unexpected(token, "'(' after catch")
	}
	name := w.stream.Consume()
	if name.Type != TOKEN_NAME {
		return w.unexpected(name, "an exception variable name")
	}
	// Declared in the enclosing function, renaming it apart from the
	// function's other names is enough.
	w.pass.catchParameter(w, scope, name)
	if token := w.stream.Consume(); token.Type != TOKEN_RP {
		return w.unexpected(token, "')' after the exception variable")
	}
	return nil
}

// Returns the scope the builder recorded at the token index.
func (w *walker) scopeAt(at int) (ScopeID, error) {
	scope, ok := w.tree.ScopeAt(at)
	if !ok {
		return NoScope, CompileErrorf(w.stream.Peek(-1), ErrScopeIndexMismatch, "token index %d", at)
	}
	return scope, nil
}
