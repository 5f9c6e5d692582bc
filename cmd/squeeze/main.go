package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/vrok/squeeze/internal/config"
	"github.com/vrok/squeeze/internal/server"
	"github.com/vrok/squeeze/squeeze"
)

const stdinName = "<stdin>"

// Implements squeeze.Locator
type FilesystemLocator struct {
	stdin io.Reader
}

func NewFilesystemLocator(stdin io.Reader) *FilesystemLocator {
	return &FilesystemLocator{stdin: stdin}
}

// Locate returns a single file, every .js file of a directory, or the
// standard input for "-".
func (fl *FilesystemLocator) Locate(p string) ([]*squeeze.File, error) {
	if p == "-" {
		code, err := io.ReadAll(fl.stdin)
		if err != nil {
			return nil, fmt.Errorf("Error reading standard input: %w", err)
		}
		return []*squeeze.File{squeeze.NewFile(stdinName, string(code))}, nil
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		code, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("Error reading %s: %w", p, err)
		}
		return []*squeeze.File{squeeze.NewFile(p, string(code))}, nil
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	var files []*squeeze.File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".js") {
			continue
		}
		name := filepath.Join(p, e.Name())
		code, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("Error reading %s: %w", name, err)
		}
		files = append(files, squeeze.NewFile(name, string(code)))
	}
	return files, nil
}

// Errors are printed once CompressAll returns, warnings as they come.
type warningReporter struct {
	*squeeze.WriterReporter
}

func (warningReporter) Error(string, int, int) {}

type minFlags struct {
	typ, charset, output, mapFile string
	lineBreak                     int
	verbose, noMunge              bool
	preserveSemi, disableOpt      bool
}

func minUsage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: squeeze min [options] [input files]\n\n")
		fmt.Fprintf(out, "If no input file is specified, it defaults to stdin.\n")
		fmt.Fprintf(out, "Multiple files can be processed using the following syntax:\n")
		fmt.Fprintf(out, "\tsqueeze min -o '.js$:-min.js' *.js\n\n")
		fs.PrintDefaults()
	}
}

func parseMinFlags(args []string, stderr io.Writer) (*minFlags, []string, error) {
	var mf minFlags
	fs := flag.NewFlagSet("min", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = minUsage(fs)
	fs.StringVar(&mf.typ, "type", "", "type of the input files, js or css")
	fs.StringVar(&mf.charset, "charset", "utf-8", "charset of the input files")
	fs.IntVar(&mf.lineBreak, "line-break", -1, "insert a line break after the specified column number")
	fs.StringVar(&mf.output, "o", "", "place the output into `file`, or rename with pattern:replacement")
	fs.StringVar(&mf.output, "output", "", "same as -o")
	fs.BoolVar(&mf.verbose, "v", false, "display informational messages and warnings")
	fs.BoolVar(&mf.verbose, "verbose", false, "same as -v")
	fs.BoolVar(&mf.noMunge, "nomunge", false, "minify only, do not obfuscate")
	fs.BoolVar(&mf.preserveSemi, "preserve-semi", false, "preserve all semicolons")
	fs.BoolVar(&mf.disableOpt, "disable-optimizations", false, "disable all micro optimizations")
	fs.StringVar(&mf.mapFile, "map", "", "write the renaming of every scope to `file`")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(mf.charset) {
	case "utf-8", "utf8":
	default:
		return nil, nil, fmt.Errorf("unsupported charset %s", mf.charset)
	}
	if err := checkType(mf.typ); err != nil {
		return nil, nil, err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	return &mf, inputs, nil
}

func checkType(typ string) error {
	switch strings.ToLower(typ) {
	case "", "js":
		return nil
	case "css":
		return errors.New("CSS compression is not supported")
	default:
		return fmt.Errorf("unknown input type %s", typ)
	}
}

func (mf *minFlags) options() squeeze.Options {
	return squeeze.Options{
		Munge:                 !mf.noMunge,
		PreserveAllSemiColons: mf.preserveSemi,
		DisableOptimizations:  mf.disableOpt,
		LineBreak:             mf.lineBreak,
		Verbose:               mf.verbose,
		Mapping:               mf.mapFile != "",
	}
}

// Names the output of every input. An empty name is the standard output.
type outputNamer struct {
	single  string
	pattern *regexp.Regexp
	repl    string
}

func newOutputNamer(output string, inputs int) (*outputNamer, error) {
	parts := strings.SplitN(output, ":", 2)
	if len(parts) < 2 || inputs < 2 {
		return &outputNamer{single: output}, nil
	}
	re, err := regexp.Compile(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid output pattern: %w", err)
	}
	return &outputNamer{pattern: re, repl: parts[1]}, nil
}

func (on *outputNamer) name(input string) string {
	if on.pattern == nil {
		return on.single
	}
	return replaceFirst(on.pattern, input, on.repl)
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + string(re.ExpandString(nil, repl, s, loc)) + s[loc[1]:]
}

func minify(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	mf, inputs, err := parseMinFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	locator := NewFilesystemLocator(stdin)
	var files []*squeeze.File
	for _, input := range inputs {
		if mf.typ == "" && strings.EqualFold(path.Ext(input), ".css") {
			fmt.Fprintf(stderr, "Error: %s: %s\n", input, checkType("css"))
			return 1
		}
		found, err := locator.Locate(input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
		files = append(files, found...)
	}

	namer, err := newOutputNamer(mf.output, len(files))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	pkg := squeeze.NewPackage("min", files...)
	errs := pkg.CompressAll(mf.options(), func(f *squeeze.File) squeeze.Reporter {
		return warningReporter{&squeeze.WriterReporter{W: stderr}}
	})

	exit := 0
	for _, err := range errs {
		var se *squeeze.SyntaxError
		var ce *squeeze.CompileError
		switch {
		case errors.As(err, &se):
			fmt.Fprintf(stderr, "ERROR: %s\n", se)
			exit = 2
			continue
		case errors.As(err, &ce):
			fmt.Fprintf(stderr, "ERROR: %s\n", ce.PrettyString(pkg.Fset))
		default:
			fmt.Fprintf(stderr, "ERROR: %s\n", err)
		}
		if exit == 0 {
			exit = 1
		}
	}

	if err := writeOutputs(pkg, namer, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if mf.mapFile != "" {
		if err := writeMapping(pkg, mf.mapFile); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
	}
	return exit
}

// Files sharing an output name are concatenated in input order.
func writeOutputs(pkg *squeeze.Package, namer *outputNamer, stdout io.Writer) error {
	var order []string
	outputs := map[string]*strings.Builder{}
	for _, f := range pkg.Files {
		if f.Result == nil {
			continue
		}
		name := namer.name(f.Name)
		if outputs[name] == nil {
			outputs[name] = &strings.Builder{}
			order = append(order, name)
		}
		outputs[name].WriteString(f.Result.Code)
	}

	for _, name := range order {
		if name == "" {
			if _, err := io.WriteString(stdout, outputs[name].String()); err != nil {
				return err
			}
			continue
		}
		if dir := filepath.Dir(name); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(name, []byte(outputs[name].String()), 0644); err != nil {
			return fmt.Errorf("Error writing file %s: %w", name, err)
		}
	}
	return nil
}

func writeMapping(pkg *squeeze.Package, name string) error {
	var sb strings.Builder
	for _, f := range pkg.Files {
		if f.Result == nil {
			continue
		}
		if len(pkg.Files) > 1 {
			fmt.Fprintf(&sb, "# %s\n", f.Name)
		}
		sb.WriteString(f.Result.Mapping)
	}
	if err := os.WriteFile(name, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("Error writing file %s: %w", name, err)
	}
	return nil
}

func serve(args []string, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	opts := squeeze.DefaultOptions()
	opts.LineBreak = cfg.LineBreak
	opts.Verbose = cfg.Verbose
	h, err := server.NewCompressHandler(opts, cfg.CacheSize)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	srv := server.New(cfg.Port, server.NewMux(h))

	failed := make(chan error, 1)
	go func() {
		failed <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-failed:
		if err != nil {
			log.Printf("Server error: %v", err)
			return 1
		}
		return 0
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return 1
	}
	log.Println("Server exiting")
	return 0
}

func main() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.Usage = func() {
		commands := []struct{ name, message string }{
			{"min", "Compress JavaScript files"},
			{"serve", "Start the compression server"},
			{"repl", "Compress JavaScript typed interactively"},
			{"help", "Print this help message"},
		}
		fmt.Printf("Usage: squeeze command [arguments]\n\n")
		fmt.Printf("The commands are: \n")
		for _, c := range commands {
			fmt.Printf("\t%s\t%s\n", c.name, c.message)
		}
	}
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	var args = flag.Args()

	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Arguments missing\n")
		flag.Usage()
		os.Exit(1)
	}

	switch args[0] {
	case "min":
		os.Exit(minify(args[1:], os.Stdin, os.Stdout, os.Stderr))
	case "serve":
		os.Exit(serve(args[1:], os.Stderr))
	case "repl":
		os.Exit(repl(args[1:]))
	case "help":
		flag.Usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		os.Exit(1)
	}
}
