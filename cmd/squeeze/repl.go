package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/vrok/squeeze/squeeze"
)

const (
	historyFile = ".squeeze_history"
	promptMain  = "js> "
	promptCont  = "... "
)

// liner.State satisfies it.
type prompter interface {
	Prompt(prompt string) (string, error)
}

type replSession struct {
	opts     squeeze.Options
	out, err io.Writer
}

func repl(_ []string) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("Type JavaScript, an empty line compresses it. :map toggles the renaming report, :quit exits.")

	s := &replSession{opts: squeeze.DefaultOptions(), out: os.Stdout, err: os.Stderr}
	s.opts.Verbose = true
	s.run(ln, func(unit string) {
		ln.AppendHistory(strings.ReplaceAll(unit, "\n", " "))
	})
	return 0
}

func (s *replSession) run(p prompter, remember func(unit string)) {
	for {
		unit, ok := readUnit(p)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}

		switch strings.ToLower(strings.TrimSpace(unit)) {
		case "":
			continue
		case ":quit":
			return
		case ":map":
			s.opts.Mapping = !s.opts.Mapping
			fmt.Fprintf(s.out, "mapping %s\n", onOff(s.opts.Mapping))
			continue
		}

		if remember != nil {
			remember(unit)
		}
		s.compress(unit)
	}
}

func (s *replSession) compress(unit string) {
	result, err := squeeze.CompressString("repl", unit, s.opts, &squeeze.WriterReporter{W: s.err})
	if err != nil {
		return
	}
	fmt.Fprintln(s.out, result.Code)
	if s.opts.Mapping {
		fmt.Fprint(s.out, result.Mapping)
	}
}

// Lines are collected until an empty one. Commands are taken right away.
func readUnit(p prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the unit.
			return "", true
		}

		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
