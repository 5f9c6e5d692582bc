package squeeze

import (
	"fmt"

	gotoken "go/token"
)

// Package is a batch of files compressed with the same options. Positions of
// all of them live in one file set.
type Package struct {
	path  string
	Files []*File
	Fset  *gotoken.FileSet
}

func NewPackage(path string, files ...*File) *Package {
	pkg := &Package{
		path: path,
		Fset: gotoken.NewFileSet(),
	}
	for _, f := range files {
		pkg.addFile(f)
	}
	return pkg
}

// LoadPackage creates a package using files from a Locator.
func LoadPackage(path string, locator Locator) (*Package, error) {
	files, err := locator.Locate(path)
	if err != nil {
		return nil, err
	}
	return NewPackage(path, files...), nil
}

func (p *Package) addFile(f *File) {
	f.tfile = p.Fset.AddFile(f.Name, p.Fset.Base(), f.size)
	p.Files = append(p.Files, f)
}

func (p *Package) Path() string {
	return p.path
}

// CompressAll compresses every file, each with its own pipeline, and
// returns the failures. A failing file doesn't stop the others. reporter
// picks the sink of each file, nil drops advisories.
func (p *Package) CompressAll(opts Options, reporter func(f *File) Reporter) []error {
	var errs []error
	for _, f := range p.Files {
		var r Reporter
		if reporter != nil {
			r = reporter(f)
		}
		if err := f.Compress(p.Fset, opts, r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
		}
	}
	return errs
}
