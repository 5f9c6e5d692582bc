package squeeze

import (
	"fmt"
	"io"
	"strings"
	"sync"

	gotoken "go/token"
)

// Reporter receives diagnostics. A line <= 0 means the message is about the
// whole unit rather than a position in it.
type Reporter interface {
	Warning(msg string, line, col int)
	Error(msg string, line, col int)
}

// WriterReporter prints diagnostics the way the command line tool shows
// them.
type WriterReporter struct {
	W io.Writer
}

func (r *WriterReporter) Warning(msg string, line, col int) {
	r.print("WARNING", msg, line, col)
}

func (r *WriterReporter) Error(msg string, line, col int) {
	r.print("ERROR", msg, line, col)
}

func (r *WriterReporter) print(severity, msg string, line, col int) {
	if line <= 0 {
		fmt.Fprintf(r.W, "\n[%s] %s\n", severity, msg)
		return
	}
	fmt.Fprintf(r.W, "\n[%s] %d:%d:%s\n", severity, line, col, msg)
}

type Diagnostic struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// CollectingReporter keeps diagnostics in memory. Safe for concurrent use.
type CollectingReporter struct {
	mu       sync.Mutex
	warnings []Diagnostic
	errors   []Diagnostic
}

func (r *CollectingReporter) Warning(msg string, line, col int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, Diagnostic{Message: msg, Line: line, Column: col})
}

func (r *CollectingReporter) Error(msg string, line, col int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, Diagnostic{Message: msg, Line: line, Column: col})
}

func (r *CollectingReporter) Warnings() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.warnings...)
}

func (r *CollectingReporter) Errors() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.errors...)
}

type nopReporter struct{}

func (nopReporter) Warning(string, int, int) {}
func (nopReporter) Error(string, int, int)   {}

// Routes advisories of one unit to its reporter.
type diagnostics struct {
	reporter Reporter
	fset     *gotoken.FileSet
	verbose  bool
	munge    bool
}

func (d *diagnostics) position(t *Token) (line, col int) {
	if d.fset == nil || !t.Pos.IsValid() {
		return 0, 0
	}
	p := d.fset.Position(t.Pos)
	return p.Line, p.Column
}

// Warns about the token just consumed from the stream, quoting the tokens
// around it.
func (d *diagnostics) warnAt(ts *TokenStream, format string, args ...interface{}) {
	if !d.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...) + "\n" + debugString(ts, 10)
	line, col := d.position(ts.Peek(-1))
	d.reporter.Warning(msg, line, col)
}

// Compression level hint appended to warnings about renaming being blocked.
func (d *diagnostics) reducesCompression(what string) string {
	if !d.munge {
		return ""
	}
	return fmt.Sprintf(" Moreover, using %s reduces the level of compression!", what)
}

func debugString(ts *TokenStream, radius int) string {
	var sb strings.Builder
	offset := ts.Offset()
	start, end := offset-radius, offset+radius
	if start < 0 {
		start = 0
	}
	if end > ts.Len() {
		end = ts.Len()
	}
	for i := start; i < end; i++ {
		if i == offset-1 {
			sb.WriteString(" ---> ")
		}
		sb.WriteString(ts.At(i).Text())
		if i == offset-1 {
			sb.WriteString(" <--- ")
		}
	}
	return sb.String()
}
