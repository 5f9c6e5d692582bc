package squeeze

import (
	"fmt"
	"testing"

	"github.com/kr/pretty"
)

func TestDeclare(t *testing.T) {
	tree := NewScopeTree()
	fn := tree.NewScope(GlobalScope, 0)

	first, fresh := tree.Declare(fn, "x")
	if !fresh {
		fmt.Printf("First declaration of x should be fresh\n")
		t.Fail()
	}
	second, fresh := tree.Declare(fn, "x")
	if fresh || first != second {
		fmt.Printf("Declaring x again should return the same identifier\n")
		t.Fail()
	}
	tree.Declare(fn, "y")

	var names []string
	for _, id := range tree.Scope(fn).Identifiers() {
		names = append(names, id.Name)
	}
	if diff := pretty.Diff([]string{"x", "y"}, names); len(diff) > 0 {
		fmt.Printf("Wrong identifiers: %v\n", diff)
		t.Fail()
	}
}

func TestLookup(t *testing.T) {
	tree := NewScopeTree()
	outer := tree.NewScope(GlobalScope, 0)
	inner := tree.NewScope(outer, 1)

	g, _ := tree.Declare(GlobalScope, "g")
	x, _ := tree.Declare(outer, "x")
	shadow, _ := tree.Declare(inner, "x")

	cases := []struct {
		scope    ScopeID
		name     string
		expected *Identifier
	}{
		{inner, "x", shadow},
		{outer, "x", x},
		{inner, "g", g},
		{GlobalScope, "x", nil},
		{inner, "missing", nil},
	}
	for _, c := range cases {
		if got := tree.Lookup(c.scope, c.name); got != c.expected {
			fmt.Printf("Lookup of %s in %d: expected %# v, got %# v\n", c.name, c.scope, pretty.Formatter(c.expected), pretty.Formatter(got))
			t.Fail()
		}
	}

	if tree.Depth(inner) != 2 || tree.Depth(GlobalScope) != 0 {
		fmt.Printf("Wrong depths %d, %d\n", tree.Depth(inner), tree.Depth(GlobalScope))
		t.Fail()
	}
}

func TestProtect(t *testing.T) {
	tree := NewScopeTree()
	a := tree.NewScope(GlobalScope, 0)
	b := tree.NewScope(a, 1)
	c := tree.NewScope(b, 2)
	sibling := tree.NewScope(GlobalScope, 0)

	tree.Protect(c)

	// The flag lands on the outermost function, the whole subtree is
	// skipped through it.
	if tree.Scope(a).Safe() || !tree.Scope(b).Safe() || !tree.Scope(c).Safe() {
		fmt.Printf("Wrong scope flags: %# v\n", pretty.Formatter(tree.scopes))
		t.Fail()
	}
	if !tree.Scope(sibling).Safe() || !tree.Global().Safe() {
		fmt.Printf("Protecting a scope affected unrelated ones\n")
		t.Fail()
	}

	tree.Protect(GlobalScope)
	if !tree.Global().Safe() {
		fmt.Printf("The top level can't be protected, it's never renamed anyway\n")
		t.Fail()
	}
}

func TestUsed(t *testing.T) {
	tree := NewScopeTree()
	outer := tree.NewScope(GlobalScope, 0)
	inner := tree.NewScope(outer, 1)
	other := tree.NewScope(GlobalScope, 0)

	tree.Declare(GlobalScope, "g")
	x, _ := tree.Declare(outer, "x")
	x.Munged = "a"
	tree.Declare(inner, "y")
	tree.Declare(other, "z")

	expected := map[string]bool{"g": true, "a": true, "y": true}
	if diff := pretty.Diff(expected, tree.Used(inner)); len(diff) > 0 {
		fmt.Printf("Wrong used names: %v\n", diff)
		t.Fail()
	}
}

func TestScopeStack(t *testing.T) {
	var ss ScopeStack
	if ss.current() != NoScope {
		fmt.Printf("Empty stack should have no current scope\n")
		t.Fail()
	}
	ss.push(GlobalScope)
	ss.push(3)
	if ss.current() != 3 {
		fmt.Printf("Expected scope 3, got %d\n", ss.current())
		t.Fail()
	}
	ss.pop()
	if ss.current() != GlobalScope {
		fmt.Printf("Expected the global scope, got %d\n", ss.current())
		t.Fail()
	}
	ss.erase()
	if !ss.empty() {
		fmt.Printf("Stack should be empty\n")
		t.Fail()
	}
}

func TestKept(t *testing.T) {
	tree := NewScopeTree()
	outer := tree.NewScope(GlobalScope, 0)
	inner := tree.NewScope(outer, 1)
	deeper := tree.NewScope(inner, 2)

	own, _ := tree.Declare(outer, "own")
	own.PreventMunging()
	tree.Declare(inner, "renamed")
	super, _ := tree.Declare(inner, "$super")
	super.PreventMunging()
	deep, _ := tree.Declare(deeper, "deep")
	deep.PreventMunging()

	expected := map[string]bool{"$super": true, "deep": true}
	if diff := pretty.Diff(expected, tree.Kept(outer)); len(diff) > 0 {
		fmt.Printf("Wrong kept names: %v\n", diff)
		t.Fail()
	}
	if kept := tree.Kept(deeper); len(kept) != 0 {
		fmt.Printf("A leaf scope keeps nothing below it: %v\n", kept)
		t.Fail()
	}
}
