package squeeze

import (
	"fmt"

	gotoken "go/token"
)

type Stage int

const (
	StageLoaded Stage = iota
	StagePreOptimized
	StageScopesBuilt
	StageResolved
	StageMunged
	StagePrinted
)

func (s Stage) String() string {
	switch s {
	case StageLoaded:
		return "loaded"
	case StagePreOptimized:
		return "pre-optimized"
	case StageScopesBuilt:
		return "scopes built"
	case StageResolved:
		return "resolved"
	case StageMunged:
		return "munged"
	case StagePrinted:
		return "printed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Pipeline holds everything the compression of one unit needs. Its steps
// must be run in order, each one exactly once.
type Pipeline struct {
	stream *TokenStream
	tree   *ScopeTree
	words  *Words
	opts   Options
	diag   *diagnostics
	stage  Stage
	code   string

	// Token indexes at which each walking pass requested function scopes.
	builderTrace, resolverTrace, printerTrace []int
}

func NewPipeline(fset *gotoken.FileSet, tokens []*Token, opts Options, r Reporter) *Pipeline {
	if r == nil {
		r = nopReporter{}
	}
	return &Pipeline{
		stream: NewTokenStream(tokens),
		tree:   NewScopeTree(),
		words:  DefaultWords(),
		opts:   opts,
		diag: &diagnostics{
			reporter: r,
			fset:     fset,
			verbose:  opts.Verbose,
			munge:    opts.Munge,
		},
	}
}

func (p *Pipeline) Stage() Stage {
	return p.stage
}

func (p *Pipeline) Tree() *ScopeTree {
	return p.tree
}

func (p *Pipeline) Tokens() []*Token {
	return p.stream.Tokens()
}

func (p *Pipeline) expect(step string, stage Stage) error {
	if p.stage != stage {
		return fmt.Errorf("%w: %s needs stage %s, pipeline is at %s", ErrWrongStage, step, stage, p.stage)
	}
	return nil
}

// PreOptimize quotes every string literal and, unless optimizations are
// disabled, merges concatenated literals and shortens quoted property
// names.
func (p *Pipeline) PreOptimize() error {
	if err := p.expect("PreOptimize", StageLoaded); err != nil {
		return err
	}
	if !p.opts.DisableOptimizations {
		if err := mergeStrings(p.stream); err != nil {
			return err
		}
	}
	if err := quoteStrings(p.stream); err != nil {
		return err
	}
	if !p.opts.DisableOptimizations {
		if err := optimizeMemberAccess(p.stream, p.words); err != nil {
			return err
		}
		if err := optimizeObjectKeys(p.stream, p.words); err != nil {
			return err
		}
	}
	p.stage = StagePreOptimized
	return nil
}

// BuildScopes freezes the token list and runs the first pass.
func (p *Pipeline) BuildScopes() error {
	if err := p.expect("BuildScopes", StagePreOptimized); err != nil {
		return err
	}
	p.stream.Freeze()
	w := newWalker(p.stream, p.tree, &builder{tree: p.tree, diag: p.diag}, p.diag)
	if err := w.walk(); err != nil {
		return err
	}
	p.builderTrace = w.trace
	p.stage = StageScopesBuilt
	return nil
}

func (p *Pipeline) Resolve() error {
	if err := p.expect("Resolve", StageScopesBuilt); err != nil {
		return err
	}
	w := newWalker(p.stream, p.tree, &resolver{tree: p.tree, words: p.words}, p.diag)
	if err := w.walk(); err != nil {
		return err
	}
	p.resolverTrace = w.trace
	p.stage = StageResolved
	return nil
}

// Munge assigns replacement names, unless renaming is turned off.
func (p *Pipeline) Munge() error {
	if err := p.expect("Munge", StageResolved); err != nil {
		return err
	}
	if p.opts.Munge {
		if err := munge(p.tree, GlobalScope, p.words); err != nil {
			return err
		}
	}
	p.stage = StageMunged
	return nil
}

func (p *Pipeline) Print() (string, error) {
	if err := p.expect("Print", StageMunged); err != nil {
		return "", err
	}
	pr := newPrinter(p.stream, p.tree, p.diag, p.opts.PreserveAllSemiColons, p.opts.LineBreak)
	code, err := pr.print()
	if err != nil {
		return "", err
	}
	p.printerTrace = pr.trace
	p.code = code
	p.stage = StagePrinted
	return code, nil
}

// Mapping reports the replacement of every identifier. Available once
// names have been assigned.
func (p *Pipeline) Mapping() (string, error) {
	if p.stage < StageMunged {
		return "", fmt.Errorf("%w: Mapping needs stage %s, pipeline is at %s", ErrWrongStage, StageMunged, p.stage)
	}
	return p.tree.Mapping(), nil
}

// Run takes a freshly loaded pipeline through every stage.
func (p *Pipeline) Run() (*Result, error) {
	steps := []func() error{p.PreOptimize, p.BuildScopes, p.Resolve, p.Munge}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	code, err := p.Print()
	if err != nil {
		return nil, err
	}
	result := &Result{Code: code}
	if p.opts.Mapping {
		result.Mapping = p.tree.Mapping()
	}
	return result, nil
}
