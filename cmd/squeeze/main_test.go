package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"
	"testing"
)

// Compare a directory against a model directory and return the differences as
// a list of human-readable errors.
func compareDirs(src, model string) (errs []error) {
	srcList, err := os.ReadDir(src)
	if err != nil {
		errs = append(errs, err)
		return
	}

	modelList, err := os.ReadDir(model)
	if err != nil {
		errs = append(errs, err)
		return
	}

	set := map[string]bool{}
	for _, d := range srcList {
		set[d.Name()] = true
	}

	for _, d := range modelList {
		if !set[d.Name()] {
			errs = append(errs, fmt.Errorf("Directory %s is missing %s", src, d.Name()))
		}
	}

	if len(errs) > 0 {
		return
	}

	if len(modelList) < len(srcList) {
		errs = append(errs, fmt.Errorf("Directory %s has excessive files", src))
		return
	}

	for _, d := range srcList {
		srcFile, modelFile := path.Join(src, d.Name()), path.Join(model, d.Name())

		srcContent, err := os.ReadFile(srcFile)
		if err != nil {
			errs = append(errs, err)
		}
		modelContent, err := os.ReadFile(modelFile)
		if err != nil {
			errs = append(errs, err)
		}

		if string(srcContent) != string(modelContent) {
			errs = append(errs, fmt.Errorf("File %s has different content from %s:\n%s\n%s",
				srcFile, modelFile, srcContent, modelContent))
		}
	}
	return
}

func runMin(stdin string, args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = minify(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestMinBatch(t *testing.T) {
	cases := []struct {
		name string
		args func(input, output string) []string
	}{
		{"batch",
			func(input, output string) []string {
				return []string{"-o", `^.*/([a-z]+)\.js$:` + output + "/${1}-min.js", input}
			},
		},
		{"batch",
			func(input, output string) []string {
				return []string{"--output", `^.*/([a-z]+)\.js$:` + output + "/${1}-min.js",
					path.Join(input, "add.js"), path.Join(input, "greet.js")}
			},
		},
	}

	for _, c := range cases {
		testCaseDir := path.Join("testdata", c.name)
		output := t.TempDir()

		code, _, stderr := runMin("", c.args(path.Join(testCaseDir, "input"), output)...)
		if code != 0 {
			fmt.Printf("Case %s exited with %d: %s\n", c.name, code, stderr)
			t.Fail()
			continue
		}

		errs := compareDirs(output, path.Join(testCaseDir, "target"))
		if len(errs) > 0 {
			t.Fail()

			fmt.Printf("Differences for case %s:\n", c.name)
			for _, e := range errs {
				fmt.Printf("    %s\n", e)
			}
		}
	}
}

func TestMinStdin(t *testing.T) {
	cases := []struct {
		args     []string
		input    string
		code     int
		expected string
	}{
		{nil, "function f(x) { return x }", 0, "function f(a){return a};"},
		{[]string{"-"}, "function f(x) { return x }", 0, "function f(a){return a};"},
		{[]string{"--nomunge"}, "function f(x) { return x }", 0, "function f(x){return x};"},
		{[]string{"--preserve-semi"}, "function f() { return 1 }", 0, "function f(){return 1;}"},
		{[]string{"--disable-optimizations"}, `x = "a" + "b"`, 0, `x="a"+"b";`},
		{[]string{"--line-break", "0"}, "var a = 1; var b = 2", 0, "var a=1;\nvar b=2;"},
		{[]string{"--type", "js", "--charset", "UTF8"}, "a()", 0, "a();"},
		{nil, "var a = 'open", 2, ""},
		{nil, "var = 1", 1, ""},
		{nil, "x = y z", 2, ""},
		{[]string{"--type", "css"}, "a { color: red }", 1, ""},
		{[]string{"--type", "coffee"}, "a()", 1, ""},
		{[]string{"--charset", "latin1"}, "a()", 1, ""},
		{[]string{"--unknown"}, "a()", 1, ""},
	}

	for _, c := range cases {
		code, stdout, stderr := runMin(c.input, c.args...)
		if code != c.code || stdout != c.expected {
			fmt.Printf("Args %v, input %q: expected %d %q, got %d %q (%s)\n",
				c.args, c.input, c.code, c.expected, code, stdout, stderr)
			t.Fail()
		}
	}
}

func TestMinErrors(t *testing.T) {
	code, _, stderr := runMin("var a = 'open")
	if code != 2 || !strings.Contains(stderr, "ERROR: <stdin>:1:9: ") {
		fmt.Printf("Wrong syntax error report %d: %s\n", code, stderr)
		t.Fail()
	}

	code, _, stderr = runMin("var = 1")
	if code != 1 || !strings.HasPrefix(stderr, "ERROR: <stdin>:1: ") {
		fmt.Printf("Wrong error report %d: %s\n", code, stderr)
		t.Fail()
	}

	code, _, stderr = runMin("", "styles.css")
	if code != 1 || !strings.Contains(stderr, "CSS compression is not supported") {
		fmt.Printf("CSS input should be refused, got %d: %s\n", code, stderr)
		t.Fail()
	}

	code, _, _ = runMin("", path.Join(t.TempDir(), "missing.js"))
	if code != 1 {
		fmt.Printf("A missing input should fail, got %d\n", code)
		t.Fail()
	}

	code, _, stderr = runMin("function f() {\n  var unused = 1\n}", "-v")
	if code != 0 || !strings.Contains(stderr, "[WARNING] 2:7:") {
		fmt.Printf("Expected a warning, got %d: %s\n", code, stderr)
		t.Fail()
	}
}

func TestMinOutputFiles(t *testing.T) {
	dir := t.TempDir()
	out, mapping := path.Join(dir, "out", "min.js"), path.Join(dir, "map.txt")

	code, stdout, stderr := runMin("function f(x, y) { return x + y }", "-o", out, "--map", mapping)
	if code != 0 || stdout != "" {
		fmt.Printf("Exited with %d: %s %s\n", code, stdout, stderr)
		t.FailNow()
	}

	expected := map[string]string{
		out:     "function f(a,b){return a+b};",
		mapping: "f: f\n\ta: x\n\tb: y\n",
	}
	for name, content := range expected {
		got, err := os.ReadFile(name)
		if err != nil || string(got) != content {
			fmt.Printf("File %s: expected %q, got %q (%v)\n", name, content, got, err)
			t.Fail()
		}
	}
}

func TestReplaceFirst(t *testing.T) {
	cases := []struct {
		pattern, input, repl, expected string
	}{
		{`\.js$`, "lib/app.js", "-min.js", "lib/app-min.js"},
		{`js`, "js/app.js", "out", "out/app.js"},
		{`^src/(.*)$`, "src/a.js", "dist/$1", "dist/a.js"},
		{`\.css$`, "app.js", "-min.css", "app.js"},
	}

	for _, c := range cases {
		if got := replaceFirst(regexp.MustCompile(c.pattern), c.input, c.repl); got != c.expected {
			fmt.Printf("Replacing %s in %s: expected %s, got %s\n", c.pattern, c.input, c.expected, got)
			t.Fail()
		}
	}

	// A single input ignores the pattern syntax.
	namer, err := newOutputNamer(`\.js$:-min.js`, 1)
	if err != nil || namer.name("a.js") != `\.js$:-min.js` {
		fmt.Printf("Unexpected name for a single input\n")
		t.Fail()
	}
	if _, err := newOutputNamer(`(:x`, 2); err == nil {
		fmt.Printf("An invalid pattern should be refused\n")
		t.Fail()
	}
}

type fakePrompter struct {
	lines []string
}

func (fp *fakePrompter) Prompt(string) (string, error) {
	if len(fp.lines) == 0 {
		return "", io.EOF
	}
	line := fp.lines[0]
	fp.lines = fp.lines[1:]
	return line, nil
}

func TestReplSession(t *testing.T) {
	var out, errOut bytes.Buffer
	s := &replSession{out: &out, err: &errOut}
	s.opts.Munge = true
	s.opts.LineBreak = -1

	var history []string
	s.run(&fakePrompter{lines: []string{
		"function f(x) {",
		"  return x",
		"}",
		"",
		"var a = 'open",
		"",
		":map",
		"function g(y) { return y }",
		"",
		":quit",
		"h()",
		"",
	}}, func(unit string) { history = append(history, unit) })

	expected := "function f(a){return a};\nmapping on\nfunction g(a){return a};\ng: g\n\ta: y\n"
	if out.String() != expected {
		fmt.Printf("Expected output %q, got %q\n", expected, out.String())
		t.Fail()
	}
	if !strings.Contains(errOut.String(), "[ERROR] 1:9:") {
		fmt.Printf("The syntax error wasn't reported: %q\n", errOut.String())
		t.Fail()
	}
	if len(history) != 3 || history[0] != "function f(x) {\n  return x\n}" {
		fmt.Printf("Wrong history %q\n", history)
		t.Fail()
	}
}

func TestReadUnitAtEOF(t *testing.T) {
	unit, ok := readUnit(&fakePrompter{lines: []string{"a()", "b()"}})
	if !ok || unit != "a()\nb()" {
		fmt.Printf("Unfinished unit should be returned at EOF, got %q %v\n", unit, ok)
		t.Fail()
	}
	if _, ok := readUnit(&fakePrompter{}); ok {
		fmt.Printf("EOF on an empty unit ends the session\n")
		t.Fail()
	}
}
