package squeeze

// The builder is the first pass. It creates a scope for every function,
// declares the names each scope owns and marks the scopes where renaming
// would be unsafe.
type builder struct {
	tree *ScopeTree
	diag *diagnostics
}

func (b *builder) functionName(w *walker, scope ScopeID, name *Token) {
	if b.tree.Scope(scope).Identifier(name.Value) != nil {
		w.warn("The function %s has already been declared in the same scope...", name.Value)
	}
	b.tree.Declare(scope, name.Value)
}

func (b *builder) functionScope(w *walker, at int) (ScopeID, error) {
	fn := b.tree.NewScope(w.scopes.current(), w.braceNesting)
	b.tree.Index(at, fn)
	return fn, nil
}

func (b *builder) parameter(w *walker, fn ScopeID, name *Token, position int) {
	id, _ := b.tree.Declare(fn, name.Value)
	if name.Value == "$super" && position == 0 {
		// Prototype 1.6 finds the superclass method by this parameter name.
		id.PreventMunging()
	}
}

func (b *builder) hint(w *walker, fn ScopeID, name, directive, raw string) {
	b.tree.Scope(fn).AddHint(name, directive)
}

func (b *builder) invalidHint(w *walker, raw string) {
	w.warn("Invalid hint syntax: %s", raw)
}

func (b *builder) varStatement(w *walker, scope ScopeID) {
	if b.tree.Scope(scope).IncrementVarCount() > 1 {
		w.warn("Try to use a single 'var' statement per scope.")
	}
}

func (b *builder) variable(w *walker, scope ScopeID, name *Token) {
	if _, fresh := b.tree.Declare(scope, name.Value); !fresh {
		w.warn("The variable %s has already been declared in the same scope...", name.Value)
	}
}

func (b *builder) catchParameter(w *walker, scope ScopeID, name *Token) {
	b.tree.Declare(scope, name.Value)
}

func (b *builder) unsafe(w *walker, scope ScopeID, construct string) {
	b.tree.Protect(scope)
	switch construct {
	case "with":
		w.warn("Using 'with' is not recommended.%s", b.diag.reducesCompression("'with'"))
	case "eval":
		w.warn("Using 'eval' is not recommended.%s", b.diag.reducesCompression("'eval'"))
	default:
		w.warn("Using JScript conditional comments is not recommended.%s", b.diag.reducesCompression("JScript conditional comments"))
	}
}

func (b *builder) name(w *walker, scope ScopeID, name *Token) {
	if name.Value == "eval" && !w.isProperty() {
		b.unsafe(w, scope, "eval")
	}
}
