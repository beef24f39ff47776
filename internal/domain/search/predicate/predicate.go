// Package predicate defines the boolean expression tree handed to index engines.
package predicate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Op is the comparison a Term applies to its field.
type Op int

const (
	// OpMatch is a case-insensitive token/substring match on an indexed text field.
	OpMatch Op = iota
	// OpEqual is exact field equality.
	OpEqual
)

func (o Op) String() string {
	if o == OpEqual {
		return "=="
	}
	return "=~"
}

// Node is one of Term, And, Or or All.
type Node interface {
	node()
	String() string
}

// Term compares a single field against a value.
type Term struct {
	Field string
	Op    Op
	Value string
}

// And matches when every child matches.
type And struct {
	Children []Node
}

// Or matches when any child matches.
type Or struct {
	Children []Node
}

// All matches every record. It is what an empty expression compiles to.
type All struct{}

func (Term) node() {}
func (And) node()  {}
func (Or) node()   {}
func (All) node()  {}

func (t Term) String() string { return fmt.Sprintf("%s %s %q", t.Field, t.Op, t.Value) }
func (a And) String() string  { return join("&", a.Children) }
func (o Or) String() string   { return join("|", o.Children) }
func (All) String() string    { return "*" }

func join(sep string, children []Node) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " "+sep+" ") + ")"
}

// Match builds an OpMatch term.
func Match(field, value string) Term { return Term{Field: field, Op: OpMatch, Value: value} }

// Equal builds an OpEqual term.
func Equal(field, value string) Term { return Term{Field: field, Op: OpEqual, Value: value} }

// AllOf conjoins nodes. All children are dropped; an empty or single-child
// conjunction collapses to All or the child itself.
func AllOf(nodes ...Node) Node {
	kept := compact(nodes)
	switch len(kept) {
	case 0:
		return All{}
	case 1:
		return kept[0]
	}
	return And{Children: kept}
}

// AnyOf disjoins nodes. Same collapsing rules as AllOf; note that an Or
// containing All is still returned as an Or, engines treat All as true.
func AnyOf(nodes ...Node) Node {
	kept := compact(nodes)
	switch len(kept) {
	case 0:
		return All{}
	case 1:
		return kept[0]
	}
	return Or{Children: kept}
}

func compact(nodes []Node) []Node {
	kept := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, ok := n.(All); ok {
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

// IsAll reports whether n selects every record.
func IsAll(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(All)
	return ok
}

// Terms returns every Term in n, depth first.
func Terms(n Node) []Term {
	var out []Term
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case Term:
			out = append(out, v)
		case And:
			for _, c := range v.Children {
				walk(c)
			}
		case Or:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// Fold maps s to the form OpMatch compares in: Unicode case folding (so
// "Straße" and "STRASSE" agree) followed by NFC composition. Engines store
// folded copies of text fields and fold the term the same way.
func Fold(s string) string {
	// A Caser keeps state, so each call gets its own.
	return norm.NFC.String(cases.Fold().String(s))
}

// Eval evaluates n against a flat record using Go string semantics.
// Engines without native boolean search, and tests, use it as the reference.
func Eval(n Node, fields map[string]string) bool {
	switch v := n.(type) {
	case nil, All:
		return true
	case Term:
		got := fields[v.Field]
		if v.Op == OpEqual {
			return got == v.Value
		}
		return strings.Contains(Fold(got), Fold(v.Value))
	case And:
		for _, c := range v.Children {
			if !Eval(c, fields) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range v.Children {
			if Eval(c, fields) {
				return true
			}
		}
		return false
	}
	return false
}
