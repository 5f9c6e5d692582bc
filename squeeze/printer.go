package squeeze

import "unicode/utf8"

// The printer is the last pass. It walks the tokens once more, following
// function scopes the same way the other passes do, and writes the compact
// code with every declared name replaced.
type printer struct {
	*walker
	out Output

	preserveSemis bool
	// Column after which a line break is inserted, negative for none.
	lineBreak int

	prevType TokenType
	// The last get, set or function token, a function right after an
	// accessor key is printed without its keyword.
	lastKeyword TokenType
}

func newPrinter(stream *TokenStream, tree *ScopeTree, diag *diagnostics, preserveSemis bool, lineBreak int) *printer {
	return &printer{
		walker:        newWalker(stream, tree, nil, diag),
		preserveSemis: preserveSemis,
		lineBreak:     lineBreak,
		prevType:      TOKEN_EOF,
		lastKeyword:   TOKEN_EOF,
	}
}

func (p *printer) print() (string, error) {
	ts := p.stream
	ts.Reset()
	p.braceNesting = 0
	p.scopes.erase()
	p.trace = nil
	p.scopes.push(GlobalScope)

	for !ts.AtEnd() {
		token := ts.Consume()
		scope := p.scopes.current()

		switch token.Type {
		case TOKEN_GET, TOKEN_SET:
			p.lastKeyword = token.Type
			p.add(token, literals[token.Type])

		case TOKEN_NAME:
			p.add(token, p.nameText(scope, token))

		case TOKEN_NUMBER:
			if ts.Peek(0).Type == TOKEN_DOT {
				p.add(token, "("+token.Value+")")
			} else {
				p.add(token, token.Value)
			}

		case TOKEN_STRING, TOKEN_REGEXP:
			p.add(token, token.Value)

		case TOKEN_FUNCTION:
			if err := p.printFunction(token); err != nil {
				return "", err
			}

		case TOKEN_LC:
			p.add(token, "{")
			p.braceNesting++

		case TOKEN_RC:
			p.add(token, "}")
			p.braceNesting--
			nesting := p.tree.Scope(scope).BraceNesting
			if p.braceNesting < 0 || p.braceNesting < nesting {
				return "", CompileErrorf(token, ErrUnbalancedBraces, "unmatched '}'")
			}
			if scope != GlobalScope && p.braceNesting == nesting {
				p.scopes.pop()
			}
			// A line break before ++ or -- would end the statement.
			if next := ts.Peek(0).Type; next != TOKEN_INC && next != TOKEN_DEC {
				p.wrapLine()
			}

		case TOKEN_SEMI:
			// Before a '}' the line is broken after the brace instead.
			if p.preserveSemis || (!ts.AtEnd() && ts.Peek(0).Type != TOKEN_RC) {
				p.add(token, ";")
				p.wrapLine()
			}

		case TOKEN_COMMA:
			// A trailing comma after an element is dropped, an elision
			// counts towards the length of an array and stays.
			next := ts.Peek(0).Type
			trailing := ts.AtEnd() || next == TOKEN_RC ||
				(next == TOKEN_RB && p.prevType != TOKEN_COMMA && p.prevType != TOKEN_LB)
			if !trailing {
				p.add(token, ",")
			}

		case TOKEN_CONDCOMMENT, TOKEN_KEEPCOMMENT:
			if p.inlineComment() {
				p.add(token, token.Text())
				continue
			}
			if p.out.Len() > 0 && p.out.LastChar() != '\n' {
				p.out.Newline()
			}
			p.out.AddString(token.Text())
			p.out.Newline()
			p.prevType = token.Type

		default:
			text := token.Text()
			if text == "" {
				p.warn("This symbol cannot be printed: %s", token)
				continue
			}
			p.add(token, text)
		}
	}

	if !p.preserveSemis && p.out.Len() > 0 {
		switch ts.Peek(-1).Type {
		case TOKEN_CONDCOMMENT, TOKEN_KEEPCOMMENT:
		default:
			if p.out.LastChar() == '\n' {
				p.out.ReplaceLast(';')
			} else {
				p.out.AddString(";")
			}
		}
	}
	return p.out.ReadAll(), nil
}

// Tells if the comment just consumed has to stay on the line. A line break
// after return, throw, break or continue, or before ++ and --, would end
// the statement.
func (p *printer) inlineComment() bool {
	ts := p.stream
	next := ts.Peek(0).Type
	for i := 1; next == TOKEN_CONDCOMMENT || next == TOKEN_KEEPCOMMENT; i++ {
		next = ts.Peek(i).Type
	}
	if next == TOKEN_INC || next == TOKEN_DEC {
		return true
	}

	prev := ts.Peek(-2).Type
	for i := -3; prev == TOKEN_CONDCOMMENT || prev == TOKEN_KEEPCOMMENT; i-- {
		prev = ts.Peek(i).Type
	}
	switch prev {
	case TOKEN_RETURN, TOKEN_THROW, TOKEN_BREAK, TOKEN_CONTINUE:
		return true
	}
	return false
}

// Prints a function from its keyword up to the opening brace of the body,
// entering the function's scope.
func (p *printer) printFunction(token *Token) error {
	ts := p.stream
	if p.lastKeyword != TOKEN_GET && p.lastKeyword != TOKEN_SET {
		p.add(token, "function")
	}
	p.lastKeyword = TOKEN_FUNCTION

	token = ts.Consume()
	if token.Type == TOKEN_NAME {
		p.add(token, p.nameText(p.scopes.current(), token))
		token = ts.Consume()
	}
	if token.Type != TOKEN_LP {
		return p.unexpected(token, "'(' after function")
	}
	p.add(token, "(")

	at := ts.Offset()
	p.trace = append(p.trace, at)
	fn, err := p.scopeAt(at)
	if err != nil {
		return err
	}
	p.scopes.push(fn)

	for token = ts.Consume(); token.Type != TOKEN_RP; token = ts.Consume() {
		switch token.Type {
		case TOKEN_NAME:
			id := p.tree.Scope(fn).Identifier(token.Value)
			if id == nil {
				return CompileErrorf(token, ErrScopeIndexMismatch, "parameter %s not declared", token.Value)
			}
			p.add(token, id.Replacement())
		case TOKEN_COMMA:
			p.add(token, ",")
		default:
			return p.unexpected(token, "a parameter name")
		}
	}
	p.add(token, ")")

	token = ts.Consume()
	if token.Type != TOKEN_LC {
		return p.unexpected(token, "'{' opening the function body")
	}
	p.add(token, "{")
	p.braceNesting++

	if atHints(ts) {
		ts.Consume()
		ts.Consume()
	}
	return nil
}

// Returns the printed form of a name, replaced unless it is a property.
func (p *printer) nameText(scope ScopeID, token *Token) string {
	if p.isProperty() {
		return token.Value
	}
	id := p.tree.Lookup(scope, token.Value)
	if id == nil {
		return token.Value
	}
	if scope != GlobalScope && id.Refcount == 0 {
		p.warn("The symbol %s is declared but is apparently never used.\nThis code can probably be written in a more compact way.", token.Value)
	}
	return id.Replacement()
}

func (p *printer) add(token *Token, text string) {
	if text == "" {
		return
	}
	if p.needsSpace(token, text) {
		p.out.AddString(" ")
	}
	p.out.AddString(text)
	p.prevType = token.Type
}

// Tells if gluing text to the output would merge it with what precedes it
// into a different token.
func (p *printer) needsSpace(token *Token, text string) bool {
	last := p.out.LastChar()
	first, _ := utf8.DecodeRuneInString(text)

	switch {
	case last == 0 || last == ' ' || last == '\n' || first == ' ':
		return false
	case isIdentPart(last) && isIdentPart(first):
		return true
	case last == '/' && (first == '/' || first == '*'):
		return true
	case last == '+' && first == '+':
		// a+++b reads as a++ + b.
		return !(p.prevType == TOKEN_INC && token.Type == TOKEN_ADD)
	case last == '-' && first == '-':
		return !(p.prevType == TOKEN_DEC && token.Type == TOKEN_SUB)
	case p.prevType == TOKEN_DEC && token.Type == TOKEN_GT:
		// No "-->" inside a script element.
		return true
	case p.prevType == TOKEN_LT && token.Type == TOKEN_NOT && p.stream.Peek(0).Type == TOKEN_DEC:
		// Nor "<!--".
		return true
	}
	return false
}

func (p *printer) wrapLine() {
	if p.lineBreak >= 0 && p.out.LineLength() > p.lineBreak {
		p.out.Newline()
	}
}
