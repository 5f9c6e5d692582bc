package squeeze

// TokenStream is the token list of one unit with a read cursor. It can be
// edited until it is frozen, after which only the cursor moves.
type TokenStream struct {
	tokens []*Token
	offset int
	frozen bool
}

// NewTokenStream works on a copy of tokens, edits don't reach the caller's
// slice.
func NewTokenStream(tokens []*Token) *TokenStream {
	return &TokenStream{tokens: append([]*Token(nil), tokens...)}
}

// Consume returns the token at the cursor and advances it.
func (ts *TokenStream) Consume() *Token {
	t := ts.Peek(0)
	if ts.offset < len(ts.tokens) {
		ts.offset++
	}
	return t
}

// Peek returns the token delta positions away from the cursor, or an EOF
// token when that's outside of the stream.
func (ts *TokenStream) Peek(delta int) *Token {
	i := ts.offset + delta
	if i < 0 || i >= len(ts.tokens) {
		return eofToken
	}
	return ts.tokens[i]
}

func (ts *TokenStream) At(i int) *Token {
	if i < 0 || i >= len(ts.tokens) {
		return eofToken
	}
	return ts.tokens[i]
}

func (ts *TokenStream) Len() int {
	return len(ts.tokens)
}

func (ts *TokenStream) Offset() int {
	return ts.offset
}

func (ts *TokenStream) AtEnd() bool {
	return ts.offset >= len(ts.tokens)
}

// Reset moves the cursor back to the first token.
func (ts *TokenStream) Reset() {
	ts.offset = 0
}

func (ts *TokenStream) Set(i int, t *Token) error {
	if ts.frozen {
		return ErrStreamFrozen
	}
	ts.tokens[i] = t
	return nil
}

// Remove deletes n tokens starting at i.
func (ts *TokenStream) Remove(i, n int) error {
	if ts.frozen {
		return ErrStreamFrozen
	}
	ts.tokens = append(ts.tokens[:i], ts.tokens[i+n:]...)
	return nil
}

// Freeze forbids any further edits. Scopes are keyed by token indexes, so
// the list can't change once they're built.
func (ts *TokenStream) Freeze() {
	ts.frozen = true
}

func (ts *TokenStream) Frozen() bool {
	return ts.frozen
}

func (ts *TokenStream) Tokens() []*Token {
	return ts.tokens
}
