package squeeze

// The resolver is the second pass. It counts references to every declared
// name, applies the hints recorded by the builder, and reserves short
// undeclared names so that no replacement can shadow them.
type resolver struct {
	tree  *ScopeTree
	words *Words
}

func (r *resolver) functionName(w *walker, scope ScopeID, name *Token) {}

func (r *resolver) functionScope(w *walker, at int) (ScopeID, error) {
	return w.scopeAt(at)
}

func (r *resolver) parameter(w *walker, fn ScopeID, name *Token, position int) {}

func (r *resolver) hint(w *walker, fn ScopeID, name, directive, raw string) {
	id := r.tree.Scope(fn).Identifier(name)
	switch {
	case id == nil:
		w.warn("Hint refers to an unknown identifier: %s", raw)
	case directive == "nomunge":
		id.PreventMunging()
	default:
		w.warn("Unsupported hint value: %s", raw)
	}
}

// Already reported by the builder.
func (r *resolver) invalidHint(w *walker, raw string) {}

func (r *resolver) varStatement(w *walker, scope ScopeID) {}

func (r *resolver) variable(w *walker, scope ScopeID, name *Token) {}

func (r *resolver) catchParameter(w *walker, scope ScopeID, name *Token) {
	if id := r.tree.Lookup(scope, name.Value); id != nil {
		id.Refcount++
	}
}

func (r *resolver) unsafe(w *walker, scope ScopeID, construct string) {}

func (r *resolver) name(w *walker, scope ScopeID, name *Token) {
	if w.isProperty() {
		return
	}
	id := r.tree.Lookup(scope, name.Value)
	if id != nil {
		id.Refcount++
		return
	}
	// Longer names can't collide with replacements.
	if len(name.Value) <= 3 && !r.words.IsBuiltin(name.Value) {
		r.tree.Declare(GlobalScope, name.Value)
	}
}
