package squeeze

import (
	"errors"

	gotoken "go/token"
)

type Options struct {
	// Rename local identifiers.
	Munge                 bool
	PreserveAllSemiColons bool
	// Skip string merging and the quoted property rewrites.
	DisableOptimizations bool
	// Column after which a line is broken, -1 for a single line.
	LineBreak int
	// Report advisories.
	Verbose bool
	// Fill Result.Mapping.
	Mapping bool
}

func DefaultOptions() Options {
	return Options{Munge: true, LineBreak: -1}
}

type Result struct {
	Code    string
	Mapping string
}

// Compress minifies a tokenized unit. Advisories go to r, which may be nil.
// Structural failures are also passed to r before being returned.
func Compress(fset *gotoken.FileSet, tokens []*Token, opts Options, r Reporter) (*Result, error) {
	if r == nil {
		r = nopReporter{}
	}
	result, err := NewPipeline(fset, tokens, opts, r).Run()
	if err != nil {
		reportError(fset, r, err)
		return nil, err
	}
	return result, nil
}

// CompressString tokenizes src and compresses it.
func CompressString(name, src string, opts Options, r Reporter) (*Result, error) {
	if r == nil {
		r = nopReporter{}
	}
	fset := gotoken.NewFileSet()
	tokens, err := Tokenize(fset, name, src)
	if err != nil {
		reportError(fset, r, err)
		return nil, err
	}
	return Compress(fset, tokens, opts, r)
}

func reportError(fset *gotoken.FileSet, r Reporter, err error) {
	var se *SyntaxError
	var ce *CompileError
	switch {
	case errors.As(err, &se):
		r.Error(se.Message, se.Line, se.Column)
	case errors.As(err, &ce) && fset != nil && ce.Pos.IsValid():
		pos := fset.Position(ce.Pos)
		r.Error(ce.Error(), pos.Line, pos.Column)
	default:
		r.Error(err.Error(), 0, 0)
	}
}
