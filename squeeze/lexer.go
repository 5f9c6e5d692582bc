package squeeze

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	gotoken "go/token"
)

type frameKind int

const (
	frameParen frameKind = iota
	frameBracket
	frameBlock
	frameObject
)

// One open delimiter.
type frame struct {
	kind frameKind
	// Open '?' still waiting for their ':'.
	ternaries int
	// Paren frames: condition of if/while/for/with/switch/catch.
	control bool
	// Paren frames: the condition closing a do-while loop.
	doTail bool
	// Paren frames: a parameter list. Block frames: a function body.
	function bool
	// The function is used as an expression, not declared as a statement.
	expr bool
}

type Lexer struct {
	// All characters, immutable.
	all []rune
	// Characters not processed yet.
	buf []rune
	// How many characters we've processed.
	skipped int
	// Byte offset of buf[0] in the file.
	byteOffset int
	// Byte offset of currently processed token.
	curTokenPos int

	tfile *gotoken.File

	tokens []*Token
	// Last two tokens that aren't comments.
	prev, beforePrev *Token
	// Preserved comments waiting to be emitted before the next token.
	comments []*Token
	frames   []frame
	// Frame closed by the last ')', ']' or '}'.
	closed frame
	// A line terminator was crossed since the last token.
	newline bool
	// The last ':' closed a conditional expression.
	lastColonTernary bool
	// Frame depths of "do" loops whose body is still open.
	dos []int
	// A do-while condition just closed, a terminator has to follow.
	needSemi bool
	// A "function" keyword waits for its parameter list.
	fnPending bool
	fnExpr    bool
	// An accessor property name comes next.
	accessorKey bool
	done        bool
}

func NewLexer(buf []rune, tfile *gotoken.File) *Lexer {
	// The bottom frame is the program itself and is never closed.
	return &Lexer{all: buf, buf: buf, tfile: tfile, frames: []frame{{kind: frameBlock}}}
}

// Tokenize turns JavaScript source into the token list the compressor works
// on. The file is registered in fset under the given name.
func Tokenize(fset *gotoken.FileSet, name, src string) ([]*Token, error) {
	if !utf8.ValidString(src) {
		src = strings.ToValidUTF8(src, "\uFFFD")
	}
	return tokenize(fset.AddFile(name, fset.Base(), len(src)), src)
}

func tokenize(tfile *gotoken.File, src string) ([]*Token, error) {
	l := NewLexer([]rune(src), tfile)
	for {
		err := l.Next()
		if err == io.EOF {
			return l.tokens, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func isLineTerminator(ch rune) bool {
	return ch == '\n' || ch == '\r' || ch == '\u2028' || ch == '\u2029'
}

func isWhiteChar(ch rune) bool {
	return !isLineTerminator(ch) && (unicode.IsSpace(ch) || ch == '\uFEFF')
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch) || unicode.Is(unicode.Mn, ch) || unicode.Is(unicode.Mc, ch)
}

// Advance lexer's buffer by one character.
func (l *Lexer) skip() {
	l.skipBy(1)
}

// Advance lexer's buffer by N characters.
func (l *Lexer) skipBy(n int) {
	for _, ch := range l.buf[:n] {
		l.byteOffset += utf8.RuneLen(ch)
		if ch == '\n' {
			l.tfile.AddLine(l.byteOffset)
		}
	}
	l.skipped += n
	l.buf = l.buf[n:]
}

// Tells if we've reached the end of the buffer.
func (l *Lexer) isEnd() bool {
	return len(l.buf) == 0
}

func (l *Lexer) peekChar(i int) rune {
	if i < len(l.buf) {
		return l.buf[i]
	}
	return 0
}

// Check which token is currently at the beginning of the buffer.
// Returns the first token matched, NOT the longest one, so order matters.
func (l *Lexer) checkAlt(alts ...string) (alt string, ok bool) {
	for _, alt := range alts {
		n := utf8.RuneCountInString(alt)
		if len(l.buf) >= n && string(l.buf[:n]) == alt {
			l.skipBy(n)
			return alt, true
		}
	}
	return "", false
}

// Read an identifier from the buffer, advancing it.
func (l *Lexer) scanWord() string {
	i := 0
	for i < len(l.buf) && isIdentPart(l.buf[i]) {
		i++
	}
	word := string(l.buf[:i])
	l.skipBy(i)
	return word
}

func (l *Lexer) skipLine() {
	c := 0
	for c < len(l.buf) && !isLineTerminator(l.buf[c]) {
		c++
	}
	l.skipBy(c)
}

func (l *Lexer) skipMultilineComment() (string, error) {
	for c := 0; c < len(l.buf)-1; c++ {
		if l.buf[c] == '*' && l.buf[c+1] == '/' {
			comment := string(l.buf[:c])
			if strings.ContainsAny(comment, "\n\r\u2028\u2029") {
				l.newline = true
			}
			l.skipBy(c + 2) // +2 to include the "*/"
			return comment, nil
		}
	}
	return "", l.errorf("unterminated comment")
}

// Skip whitespace and comments, keeping the ones that have to survive.
func (l *Lexer) skipFluff() error {
	for !l.isEnd() {
		ch := l.buf[0]
		switch {
		case isLineTerminator(ch):
			l.newline = true
			l.skip()
		case isWhiteChar(ch):
			l.skip()
		case ch == '/' && l.peekChar(1) == '/':
			l.skipLine()
		case ch == '/' && l.peekChar(1) == '*':
			l.curTokenPos = l.byteOffset
			l.skipBy(2)
			comment, err := l.skipMultilineComment()
			if err != nil {
				return err
			}
			switch {
			case strings.HasPrefix(comment, "!"):
				l.comments = append(l.comments, l.newToken(TOKEN_KEEPCOMMENT, comment[1:]))
			case len(comment) >= 2 && comment[0] == '@' && comment[len(comment)-1] == '@':
				l.comments = append(l.comments, l.newToken(TOKEN_CONDCOMMENT, comment))
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) newToken(typ TokenType, val string) *Token {
	return &Token{Type: typ, Value: val, Pos: l.tfile.Pos(l.curTokenPos)}
}

func (l *Lexer) emit(t *Token) {
	if t.Type == TOKEN_FUNCTION {
		l.fnPending = true
		l.fnExpr = !l.atStatementStart()
	}
	if t.Type == TOKEN_DO {
		l.dos = append(l.dos, len(l.frames))
	}
	l.tokens = append(l.tokens, t)
	l.beforePrev, l.prev = l.prev, t
	l.newline = false

	if l.accessorKey && t.Type != TOKEN_GET && t.Type != TOKEN_SET {
		// Accessors are printed without the keyword, but scoped as functions.
		l.accessorKey = false
		l.emit(&Token{Type: TOKEN_FUNCTION, Value: literals[TOKEN_FUNCTION], Pos: t.Pos})
	}
}

func (l *Lexer) emitType(typ TokenType) {
	l.emit(l.newToken(typ, literals[typ]))
}

func (l *Lexer) flushComments() {
	for _, c := range l.comments {
		l.tokens = append(l.tokens, c)
	}
	l.comments = nil
}

func (l *Lexer) insertSemi() {
	l.emit(&Token{Type: TOKEN_SEMI, Value: ";", Pos: l.tfile.Pos(l.curTokenPos)})
}

func (l *Lexer) top() *frame {
	return &l.frames[len(l.frames)-1]
}

func (l *Lexer) push(f frame) {
	l.frames = append(l.frames, f)
}

func (l *Lexer) pop(kinds ...frameKind) (frame, error) {
	if f := l.top(); len(l.frames) > 1 {
		for _, k := range kinds {
			if f.kind == k {
				closed := *f
				l.frames = l.frames[:len(l.frames)-1]
				return closed, nil
			}
		}
	}
	return frame{}, l.errorf("unbalanced %q", string(l.buf[0]))
}

// Statements can only be terminated automatically directly inside a block
// or at the top level.
func (l *Lexer) inStatementList() bool {
	return l.top().kind == frameBlock
}

func (l *Lexer) closedExpression() bool {
	return l.closed.kind == frameObject || (l.closed.function && l.closed.expr)
}

// Tells if the previous token can be the last one of a statement.
func (l *Lexer) prevEndsStatement() bool {
	if l.prev == nil {
		return false
	}
	switch l.prev.Type {
	case TOKEN_RETURN, TOKEN_BREAK, TOKEN_CONTINUE, TOKEN_THROW, TOKEN_DEBUGGER:
		return true
	case TOKEN_RP:
		return !l.closed.control && !l.closed.function
	case TOKEN_RC:
		return l.closedExpression()
	}
	return l.prev.endsExpression()
}

// Tells if an operand is expected next, as opposed to an operator.
func (l *Lexer) expectsOperand() bool {
	if l.prev == nil {
		return true
	}
	switch l.prev.Type {
	case TOKEN_RP:
		return l.closed.control
	case TOKEN_RC:
		return !l.closedExpression()
	}
	return !l.prev.endsExpression()
}

func (l *Lexer) atStatementStart() bool {
	if l.prev == nil {
		return true
	}
	switch l.prev.Type {
	case TOKEN_SEMI, TOKEN_ELSE, TOKEN_DO:
		return true
	case TOKEN_LC:
		return l.inStatementList()
	case TOKEN_RC:
		return !l.closedExpression()
	case TOKEN_RP:
		return l.closed.control
	case TOKEN_COLON:
		return !l.lastColonTernary
	}
	return false
}

func (l *Lexer) braceOpensObject() bool {
	if l.prev == nil {
		return false
	}
	switch l.prev.Type {
	case TOKEN_SEMI, TOKEN_LC, TOKEN_RC, TOKEN_RP, TOKEN_ELSE, TOKEN_DO, TOKEN_TRY, TOKEN_FINALLY:
		return false
	case TOKEN_COLON:
		return l.lastColonTernary
	}
	return !l.prev.endsExpression()
}

// Tells if the characters ahead continue the expression of the previous
// line, in which case no terminator gets inserted at the line break.
func (l *Lexer) continuesExpression() bool {
	switch ch := l.buf[0]; ch {
	case '(', '[', '.', ',', '?', ':', '=', '*', '/', '%', '<', '>', '&', '|', '^':
		return true
	case '+', '-':
		return l.peekChar(1) != ch
	case '!':
		return l.peekChar(1) == '='
	case 'i':
		for _, kw := range []string{"instanceof", "in"} {
			n := len(kw)
			if len(l.buf) >= n && string(l.buf[:n]) == kw && !isIdentPart(l.peekChar(n)) {
				return true
			}
		}
	}
	return false
}

// Next scans the following token, together with any terminators inserted
// before it. Returns io.EOF after the whole input has been processed.
func (l *Lexer) Next() error {
	if l.done {
		return io.EOF
	}
	if err := l.skipFluff(); err != nil {
		return err
	}
	l.curTokenPos = l.byteOffset

	if l.isEnd() {
		if len(l.frames) > 1 {
			return l.errorf("unexpected end of input, missing %s", closerOf(l.top().kind))
		}
		if l.needSemi || l.prevEndsStatement() {
			l.insertSemi()
		}
		l.flushComments()
		l.done = true
		return io.EOF
	}

	switch {
	case l.needSemi:
		if l.buf[0] != ';' {
			l.insertSemi()
		}
	case !l.inStatementList():
	case l.buf[0] == '}' && l.prevEndsStatement():
		l.insertSemi()
	case l.newline && l.prevEndsStatement():
		switch l.prev.Type {
		case TOKEN_RETURN, TOKEN_BREAK, TOKEN_CONTINUE, TOKEN_THROW:
			if l.buf[0] != ';' {
				l.insertSemi()
			}
		default:
			if l.buf[0] != ';' && !l.continuesExpression() {
				l.insertSemi()
			}
		}
	}
	l.needSemi = false
	if what, ok := l.adjacentOperand(); ok {
		return l.errorf("missing an operator or ';' before %s", what)
	}
	l.flushComments()

	return l.scan()
}

// Tells if an operand starts right after the end of another one, with no
// line break to terminate the statement in between. Returns the start of
// the offending operand.
func (l *Lexer) adjacentOperand() (string, bool) {
	if l.prev == nil || l.prev.Type == TOKEN_INC || l.prev.Type == TOKEN_DEC || l.expectsOperand() {
		return "", false
	}
	ch := l.buf[0]
	switch {
	case ch == '"' || ch == '\'':
		return "string literal", true
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peekChar(1))):
		return "number", true
	case isIdentStart(ch):
		n := 1
		for n < len(l.buf) && isIdentPart(l.buf[n]) {
			n++
		}
		word := string(l.buf[:n])
		return fmt.Sprintf("%q", word), word != "in" && word != "instanceof"
	}
	return "", false
}

func (l *Lexer) scan() error {
	ch := l.buf[0]

	switch {
	case isIdentStart(ch) || ch == '\\':
		if ch == '\\' {
			return l.errorf("escape sequences in identifiers are not supported")
		}
		l.scanIdentifier()
		return nil
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peekChar(1))):
		lit, err := l.scanNumber()
		if err != nil {
			return err
		}
		l.emit(l.newToken(TOKEN_NUMBER, lit))
		return nil
	case ch == '"' || ch == '\'':
		s, err := l.scanString(ch)
		if err != nil {
			return err
		}
		l.emit(l.newToken(TOKEN_STRING, s))
		return nil
	}

	switch ch {
	case '(':
		f := frame{kind: frameParen}
		if l.prev != nil {
			switch l.prev.Type {
			case TOKEN_IF, TOKEN_FOR, TOKEN_WITH, TOKEN_SWITCH, TOKEN_CATCH:
				f.control = true
			case TOKEN_WHILE:
				if n := len(l.dos); n > 0 && l.dos[n-1] == len(l.frames) && l.beforePrev != nil &&
					(l.beforePrev.Type == TOKEN_SEMI || l.beforePrev.Type == TOKEN_RC) {
					l.dos = l.dos[:n-1]
					f.doTail = true
				} else {
					f.control = true
				}
			}
		}
		if l.fnPending {
			f.function, f.expr = true, l.fnExpr
			l.fnPending = false
		}
		l.push(f)
		l.skip()
		l.emitType(TOKEN_LP)
	case ')':
		f, err := l.pop(frameParen)
		if err != nil {
			return err
		}
		l.skip()
		l.emitType(TOKEN_RP)
		l.closed = f
		l.needSemi = f.doTail
	case '[':
		l.push(frame{kind: frameBracket})
		l.skip()
		l.emitType(TOKEN_LB)
	case ']':
		f, err := l.pop(frameBracket)
		if err != nil {
			return err
		}
		l.skip()
		l.emitType(TOKEN_RB)
		l.closed = f
	case '{':
		f := frame{kind: frameBlock}
		switch {
		case l.prev != nil && l.prev.Type == TOKEN_RP && l.closed.function:
			f.function, f.expr = true, l.closed.expr
		case l.braceOpensObject():
			f.kind = frameObject
		}
		l.push(f)
		l.skip()
		l.emitType(TOKEN_LC)
	case '}':
		f, err := l.pop(frameBlock, frameObject)
		if err != nil {
			return err
		}
		l.skip()
		l.emitType(TOKEN_RC)
		l.closed = f
	case ';':
		l.skip()
		if l.prev != nil && (l.prev.Type == TOKEN_ELSE || l.prev.Type == TOKEN_DO ||
			(l.prev.Type == TOKEN_RP && l.closed.control)) {
			// An empty statement as a loop or branch body would vanish in
			// front of a '}', a block can't.
			l.emitType(TOKEN_LC)
			l.emitType(TOKEN_RC)
			l.closed = frame{kind: frameBlock}
			return nil
		}
		l.emitType(TOKEN_SEMI)
	case ',':
		l.skip()
		l.emitType(TOKEN_COMMA)
	case '?':
		l.skip()
		l.top().ternaries++
		l.emitType(TOKEN_HOOK)
	case ':':
		l.skip()
		l.scanColon()
	case '.':
		l.skip()
		l.emitType(TOKEN_DOT)
	case '~':
		l.skip()
		l.emitType(TOKEN_BITNOT)
	case '=':
		alt, _ := l.checkAlt("===", "==", "=")
		l.emitType(map[string]TokenType{"===": TOKEN_SHEQ, "==": TOKEN_EQ, "=": TOKEN_ASSIGN}[alt])
	case '!':
		alt, _ := l.checkAlt("!==", "!=", "!")
		l.emitType(map[string]TokenType{"!==": TOKEN_SHNE, "!=": TOKEN_NE, "!": TOKEN_NOT}[alt])
	case '+', '-':
		operand := l.expectsOperand()
		alt, _ := l.checkAlt(string(ch)+string(ch), string(ch)+"=", string(ch))
		switch {
		case alt == "++":
			l.emitType(TOKEN_INC)
		case alt == "--":
			l.emitType(TOKEN_DEC)
		case alt == "+=":
			l.emitType(TOKEN_ASSIGN_ADD)
		case alt == "-=":
			l.emitType(TOKEN_ASSIGN_SUB)
		case alt == "+" && operand:
			l.emitType(TOKEN_POS)
		case alt == "+":
			l.emitType(TOKEN_ADD)
		case operand:
			l.emitType(TOKEN_NEG)
		default:
			l.emitType(TOKEN_SUB)
		}
	case '*':
		alt, _ := l.checkAlt("*=", "*")
		l.emitType(map[string]TokenType{"*=": TOKEN_ASSIGN_MUL, "*": TOKEN_MUL}[alt])
	case '%':
		alt, _ := l.checkAlt("%=", "%")
		l.emitType(map[string]TokenType{"%=": TOKEN_ASSIGN_MOD, "%": TOKEN_MOD}[alt])
	case '/':
		if l.expectsOperand() {
			re, err := l.scanRegexp()
			if err != nil {
				return err
			}
			l.emit(l.newToken(TOKEN_REGEXP, re))
			return nil
		}
		alt, _ := l.checkAlt("/=", "/")
		l.emitType(map[string]TokenType{"/=": TOKEN_ASSIGN_DIV, "/": TOKEN_DIV}[alt])
	case '<':
		alt, _ := l.checkAlt("<<=", "<<", "<=", "<")
		l.emitType(map[string]TokenType{"<<=": TOKEN_ASSIGN_LSH, "<<": TOKEN_LSH, "<=": TOKEN_LE, "<": TOKEN_LT}[alt])
	case '>':
		alt, _ := l.checkAlt(">>>=", ">>>", ">>=", ">>", ">=", ">")
		l.emitType(map[string]TokenType{
			">>>=": TOKEN_ASSIGN_URSH, ">>>": TOKEN_URSH, ">>=": TOKEN_ASSIGN_RSH,
			">>": TOKEN_RSH, ">=": TOKEN_GE, ">": TOKEN_GT,
		}[alt])
	case '&':
		alt, _ := l.checkAlt("&&", "&=", "&")
		l.emitType(map[string]TokenType{"&&": TOKEN_AND, "&=": TOKEN_ASSIGN_BITAND, "&": TOKEN_BITAND}[alt])
	case '|':
		alt, _ := l.checkAlt("||", "|=", "|")
		l.emitType(map[string]TokenType{"||": TOKEN_OR, "|=": TOKEN_ASSIGN_BITOR, "|": TOKEN_BITOR}[alt])
	case '^':
		alt, _ := l.checkAlt("^=", "^")
		l.emitType(map[string]TokenType{"^=": TOKEN_ASSIGN_BITXOR, "^": TOKEN_BITXOR}[alt])
	default:
		return l.errorf("unexpected character %q", ch)
	}
	return nil
}

func (l *Lexer) atPropertyKey() bool {
	return l.top().kind == frameObject && l.prev != nil &&
		(l.prev.Type == TOKEN_LC || l.prev.Type == TOKEN_COMMA)
}

// Returns the first character ahead that isn't whitespace.
func (l *Lexer) nextSignificant() rune {
	for _, ch := range l.buf {
		if !isWhiteChar(ch) && !isLineTerminator(ch) {
			return ch
		}
	}
	return 0
}

func (l *Lexer) scanIdentifier() {
	word := l.scanWord()

	if l.prev != nil {
		switch l.prev.Type {
		case TOKEN_DOT, TOKEN_GET, TOKEN_SET:
			// Property names can be keywords.
			l.emit(l.newToken(TOKEN_NAME, word))
			return
		}
	}
	if l.atPropertyKey() {
		next := l.nextSignificant()
		if next == ':' {
			l.emit(l.newToken(TOKEN_NAME, word))
			return
		}
		if (word == "get" || word == "set") &&
			(isIdentStart(next) || unicode.IsDigit(next) || next == '"' || next == '\'') {
			l.accessorKey = true
			if word == "get" {
				l.emitType(TOKEN_GET)
			} else {
				l.emitType(TOKEN_SET)
			}
			return
		}
	}
	if typ, ok := keywords[word]; ok {
		l.emitType(typ)
		return
	}
	l.emit(l.newToken(TOKEN_NAME, word))
}

func (l *Lexer) scanColon() {
	f := l.top()
	switch {
	case f.ternaries > 0:
		f.ternaries--
		l.lastColonTernary = true
		l.emitType(TOKEN_COLON)
	case f.kind == frameObject:
		l.emitType(TOKEN_OBJECTLIT)
	default:
		l.lastColonTernary = false
		l.emitType(TOKEN_COLON)
	}
}

func closerOf(kind frameKind) string {
	switch kind {
	case frameParen:
		return "')'"
	case frameBracket:
		return "']'"
	}
	return "'}'"
}

func (l *Lexer) errorf(format string, args ...interface{}) *SyntaxError {
	pos := l.tfile.Position(l.tfile.Pos(l.byteOffset))
	return &SyntaxError{
		File:    pos.Filename,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
	}
}
