package squeeze

type ScopeID int

const (
	NoScope     ScopeID = -1
	GlobalScope ScopeID = 0
)

// Identifier is a name declared in a scope.
type Identifier struct {
	Name     string
	Scope    ScopeID
	Refcount int
	// Replacement name, empty until the muncher assigns one.
	Munged  string
	noMunge bool
}

func (id *Identifier) PreventMunging() {
	id.noMunge = true
}

func (id *Identifier) MarkedForMunging() bool {
	return !id.noMunge
}

// Replacement returns the name the identifier is printed with.
func (id *Identifier) Replacement() string {
	if id.Munged != "" {
		return id.Munged
	}
	return id.Name
}

type Hint struct {
	Name      string
	Directive string
}

// Scope is the top level of a program or the body of a function.
type Scope struct {
	ID ScopeID
	// Brace nesting at the point the scope was created, the scope ends
	// when the nesting drops back to it.
	BraceNesting int
	Parent       ScopeID
	Children     []ScopeID

	names map[string]*Identifier
	// Declaration order.
	identifiers []*Identifier
	hints       []Hint
	safe        bool
	varCount    int
}

func (s *Scope) Identifier(name string) *Identifier {
	return s.names[name]
}

// Identifiers returns the identifiers in declaration order.
func (s *Scope) Identifiers() []*Identifier {
	return s.identifiers
}

func (s *Scope) Hints() []Hint {
	return s.hints
}

func (s *Scope) AddHint(name, directive string) {
	s.hints = append(s.hints, Hint{Name: name, Directive: directive})
}

// Safe tells if the identifiers of the scope may be renamed.
func (s *Scope) Safe() bool {
	return s.safe
}

func (s *Scope) IncrementVarCount() int {
	s.varCount++
	return s.varCount
}

// ScopeTree is an arena of scopes, the global scope always at index 0.
type ScopeTree struct {
	scopes []*Scope
	// Token index right after a parameter list's '(' to the function scope.
	indexed map[int]ScopeID
}

func NewScopeTree() *ScopeTree {
	t := &ScopeTree{indexed: map[int]ScopeID{}}
	t.NewScope(NoScope, -1)
	return t
}

func (t *ScopeTree) NewScope(parent ScopeID, braceNesting int) ScopeID {
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, &Scope{
		ID:           id,
		BraceNesting: braceNesting,
		Parent:       parent,
		names:        map[string]*Identifier{},
		safe:         true,
	})
	if parent != NoScope {
		p := t.scopes[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

func (t *ScopeTree) Scope(id ScopeID) *Scope {
	return t.scopes[id]
}

func (t *ScopeTree) Global() *Scope {
	return t.scopes[GlobalScope]
}

func (t *ScopeTree) Len() int {
	return len(t.scopes)
}

// Declare adds the name to the scope. Declaring a name twice returns the
// existing identifier and false.
func (t *ScopeTree) Declare(scope ScopeID, name string) (*Identifier, bool) {
	s := t.scopes[scope]
	if id, ok := s.names[name]; ok {
		return id, false
	}
	id := &Identifier{Name: name, Scope: scope}
	s.names[name] = id
	s.identifiers = append(s.identifiers, id)
	return id, true
}

// Lookup finds the identifier visible under the name in the scope, walking
// up the parents. Returns nil when not found.
func (t *ScopeTree) Lookup(scope ScopeID, name string) *Identifier {
	for scope != NoScope {
		s := t.scopes[scope]
		if id, ok := s.names[name]; ok {
			return id
		}
		scope = s.Parent
	}
	return nil
}

// Protect stops renaming in the outermost function containing the scope,
// which covers everything nested in it.
func (t *ScopeTree) Protect(scope ScopeID) {
	if scope == GlobalScope || scope == NoScope {
		return
	}
	for t.scopes[scope].Parent != GlobalScope {
		scope = t.scopes[scope].Parent
	}
	t.scopes[scope].safe = false
}

// Depth returns the number of ancestors of the scope.
func (t *ScopeTree) Depth(scope ScopeID) int {
	depth := 0
	for t.scopes[scope].Parent != NoScope {
		scope = t.scopes[scope].Parent
		depth++
	}
	return depth
}

func (t *ScopeTree) Index(at int, scope ScopeID) {
	t.indexed[at] = scope
}

func (t *ScopeTree) ScopeAt(at int) (ScopeID, bool) {
	id, ok := t.indexed[at]
	return id, ok
}

// Used returns the printed names of every identifier in the scope and its
// ancestors.
func (t *ScopeTree) Used(scope ScopeID) map[string]bool {
	used := map[string]bool{}
	for scope != NoScope {
		s := t.scopes[scope]
		for _, id := range s.identifiers {
			used[id.Replacement()] = true
		}
		scope = s.Parent
	}
	return used
}

// Kept returns the names of the identifiers below the scope that keep their
// original name.
func (t *ScopeTree) Kept(scope ScopeID) map[string]bool {
	kept := map[string]bool{}
	var walk func(ScopeID)
	walk = func(scope ScopeID) {
		for _, child := range t.scopes[scope].Children {
			for _, id := range t.scopes[child].identifiers {
				if !id.MarkedForMunging() {
					kept[id.Name] = true
				}
			}
			walk(child)
		}
	}
	walk(scope)
	return kept
}
