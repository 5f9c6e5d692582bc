package squeeze

// Stack of scopes enclosing the token that is currently being walked. Scopes
// are pushed when a function body starts and popped when its closing brace
// is reached.
type ScopeStack []ScopeID

func (ss *ScopeStack) erase() {
	*ss = ScopeStack{}
}

func (ss *ScopeStack) push(scope ScopeID) {
	*ss = append(*ss, scope)
}

func (ss *ScopeStack) pop() {
	*ss = (*ss)[:len(*ss)-1]
}

func (ss *ScopeStack) empty() bool {
	return len(*ss) == 0
}

// Returns NoScope when empty.
func (ss *ScopeStack) current() ScopeID {
	if ss.empty() {
		return NoScope
	}
	return (*ss)[len(*ss)-1]
}
