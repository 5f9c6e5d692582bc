package squeeze

import (
	"strings"
	"unicode/utf8"

	gotoken "go/token"
)

// Locator finds the source files of a batch.
type Locator interface {
	Locate(path string) ([]*File, error)
}

// File is one unit of compression.
type File struct {
	Name, Code string
	size       int

	tfile *gotoken.File
	// Set by Compress.
	Result *Result
}

func NewFile(name, code string) *File {
	if !utf8.ValidString(code) {
		code = strings.ToValidUTF8(code, "\uFFFD")
	}
	return &File{Name: name, Code: code, size: len(code)}
}

// Compress runs a fresh pipeline over the file. The file must have been
// added to a package first.
func (f *File) Compress(fset *gotoken.FileSet, opts Options, r Reporter) error {
	if r == nil {
		r = nopReporter{}
	}
	tokens, err := tokenize(f.tfile, f.Code)
	if err != nil {
		reportError(fset, r, err)
		return err
	}
	result, err := Compress(fset, tokens, opts, r)
	if err != nil {
		return err
	}
	f.Result = result
	return nil
}
