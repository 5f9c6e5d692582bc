package squeeze

// Returns the candidates that aren't used.
func freeSymbols(pool []string, used map[string]bool) []string {
	free := make([]string, 0, len(pool))
	for _, name := range pool {
		if !used[name] {
			free = append(free, name)
		}
	}
	return free
}

// munge assigns replacement names to the identifiers of the scope and then
// to those of its descendants. Identifiers are renamed in declaration
// order. Names of the scope and its ancestors, original or replaced, are
// never reused. Neither are names kept further down, they would hide the
// replacement. The top level is never renamed.
func munge(tree *ScopeTree, scope ScopeID, words *Words) error {
	s := tree.Scope(scope)
	if !s.Safe() {
		return nil
	}

	if scope != GlobalScope {
		kept := tree.Kept(scope)
		taken := func() map[string]bool {
			used := tree.Used(scope)
			for name := range kept {
				used[name] = true
			}
			return used
		}

		size := 1
		free := freeSymbols(words.Pool(size), taken())

		for _, id := range s.Identifiers() {
			if !id.MarkedForMunging() {
				continue
			}
			for len(free) == 0 {
				size++
				if size > 3 {
					return &CompileError{
						Message: "no unused name of up to three characters left",
						Err:     ErrSymbolsExhausted,
					}
				}
				// Names assigned so far count as used too.
				free = freeSymbols(words.Pool(size), taken())
			}
			id.Munged, free = free[0], free[1:]
		}
	}

	for _, child := range s.Children {
		if err := munge(tree, child, words); err != nil {
			return err
		}
	}
	return nil
}
