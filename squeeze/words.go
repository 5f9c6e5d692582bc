package squeeze

import "sync"

// Words holds the candidate replacement names and the reserved words. It's
// read-only once built and shared by every compression.
type Words struct {
	Ones   []string
	Twos   []string
	Threes []string

	builtin  map[string]bool
	reserved map[string]bool
}

var (
	defaultWords     *Words
	defaultWordsOnce sync.Once
)

// DefaultWords returns the shared tables, building them on first use.
func DefaultWords() *Words {
	defaultWordsOnce.Do(func() {
		defaultWords = NewWords()
	})
	return defaultWords
}

// Short globals that browsers define.
var builtinNames = []string{"NaN", "top"}

var reservedNames = []string{
	"break", "case", "catch", "continue", "default", "delete", "do", "else",
	"finally", "for", "function", "if", "in", "instanceof", "new", "return",
	"switch", "this", "throw", "try", "typeof", "var", "void", "while", "with",

	// Reserved for future use.
	"abstract", "boolean", "byte", "char", "class", "const", "debugger",
	"double", "enum", "export", "extends", "final", "float", "goto",
	"implements", "import", "int", "interface", "long", "native", "package",
	"private", "protected", "public", "short", "static", "super",
	"synchronized", "throws", "transient", "volatile",

	// Predefined names that must never be shadowed.
	"arguments", "eval", "true", "false", "Infinity", "NaN", "null", "undefined",
}

func NewWords() *Words {
	w := &Words{builtin: map[string]bool{}, reserved: map[string]bool{}}
	for _, name := range builtinNames {
		w.builtin[name] = true
	}
	for _, name := range reservedNames {
		w.reserved[name] = true
	}

	var letters, alnum []string
	for c := 'a'; c <= 'z'; c++ {
		letters = append(letters, string(c))
	}
	for c := 'A'; c <= 'Z'; c++ {
		letters = append(letters, string(c))
	}
	alnum = append(alnum, letters...)
	for c := '0'; c <= '9'; c++ {
		alnum = append(alnum, string(c))
	}

	w.Ones = letters
	w.Twos = w.extend(w.Ones, alnum, "as", "is", "do", "if", "in")
	w.Threes = w.extend(w.Twos, alnum, "for", "int", "new", "try", "use", "var", "let")
	return w
}

// Appends every suffix to every prefix, dropping keywords and builtins.
func (w *Words) extend(prefixes, suffixes []string, keywords ...string) []string {
	skip := map[string]bool{}
	for _, k := range keywords {
		skip[k] = true
	}
	result := make([]string, 0, len(prefixes)*len(suffixes))
	for _, p := range prefixes {
		for _, s := range suffixes {
			if word := p + s; !skip[word] && !w.builtin[word] {
				result = append(result, word)
			}
		}
	}
	return result
}

// Pool returns the candidates of the given length, 1 to 3.
func (w *Words) Pool(size int) []string {
	switch size {
	case 1:
		return w.Ones
	case 2:
		return w.Twos
	case 3:
		return w.Threes
	}
	return nil
}

func (w *Words) IsBuiltin(name string) bool {
	return w.builtin[name]
}

func (w *Words) IsReserved(name string) bool {
	return w.reserved[name]
}
