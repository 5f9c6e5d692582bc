package squeeze

import (
	"errors"
	"fmt"

	gotoken "go/token"
)

var (
	ErrUnbalancedBraces   = errors.New("unbalanced braces")
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrScopeIndexMismatch = errors.New("no scope recorded at token index")
	ErrSymbolsExhausted   = errors.New("ran out of replacement symbols")
	ErrStreamFrozen       = errors.New("token stream is frozen")
	ErrWrongStage         = errors.New("pipeline stage out of order")
)

// CompileError is a structural failure that aborts a unit. Err is one of the
// sentinel errors above.
type CompileError struct {
	Message string
	Pos     gotoken.Pos
	Err     error
}

func CompileErrorf(token *Token, err error, message string, args ...interface{}) *CompileError {
	var pos gotoken.Pos
	if token != nil {
		pos = token.Pos
	}
	return &CompileError{
		Message: fmt.Sprintf(message, args...),
		Pos:     pos,
		Err:     err,
	}
}

func (ce *CompileError) Error() string {
	if ce.Err == nil {
		return ce.Message
	}
	return fmt.Sprintf("%s: %s", ce.Err, ce.Message)
}

func (ce *CompileError) Unwrap() error {
	return ce.Err
}

func (ce *CompileError) PrettyString(fset *gotoken.FileSet) string {
	if fset == nil || !ce.Pos.IsValid() {
		return ce.Error()
	}
	position := fset.Position(ce.Pos)
	return fmt.Sprintf("%s:%d: %s", position.Filename, position.Line, ce.Error())
}

// SyntaxError is reported by the tokenizer, before any pass runs.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (se *SyntaxError) Error() string {
	if se.File == "" {
		return fmt.Sprintf("%d:%d: %s", se.Line, se.Column, se.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", se.File, se.Line, se.Column, se.Message)
}
