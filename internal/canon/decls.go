package canon

import (
	"strings"

	"github.com/tinyrange/canonbounds/internal/decl"
)

// CompareDecl orders declarations by enclosing scope chain, then name, then
// category, then position within the scope. Redeclarations compare as their
// first declaration. The order never depends on where declarations live in
// memory.
func (l *Lexicographic) CompareDecl(d1, d2 *decl.Decl) Result {
	d1, d2 = d1.Canonical(), d2.Canonical()
	if d1 == d2 {
		return Equal
	}
	switch {
	case d1 == nil:
		return l.decide("Decl.null", LessThan, d1, d2)
	case d2 == nil:
		return l.decide("Decl.null", GreaterThan, d1, d2)
	}
	if r := l.compareScope(d1.Scope, d2.Scope); r != Equal {
		return l.decide("Decl.scope", r, d1, d2)
	}
	if r := l.decide("Decl.name", Result(strings.Compare(d1.Name, d2.Name)), d1, d2); r != Equal {
		return r
	}
	if r := l.decide("Decl.kind", compareOrdered(d1.Kind, d2.Kind), d1, d2); r != Equal {
		return r
	}
	return l.decide("Decl.seq", compareOrdered(d1.Seq, d2.Seq), d1, d2)
}

// ownerSeq tells apart function and record scopes whose owners share a
// name, such as two anonymous structs. Unowned scopes report -1.
func ownerSeq(s *decl.Scope) int {
	if s.Owner == nil {
		return -1
	}
	return s.Owner.Canonical().Seq
}

// compareScope walks both chains from the innermost scope outwards. When one
// chain runs out first it is the shorter one and orders first.
func (l *Lexicographic) compareScope(s1, s2 *decl.Scope) Result {
	for s1 != nil && s2 != nil {
		if s1 == s2 {
			return Equal
		}
		if r := compareOrdered(s1.Kind, s2.Kind); r != Equal {
			return r
		}
		if r := Result(strings.Compare(s1.Name, s2.Name)); r != Equal {
			return r
		}
		if r := compareOrdered(s1.Seq, s2.Seq); r != Equal {
			return r
		}
		if r := compareOrdered(ownerSeq(s1), ownerSeq(s2)); r != Equal {
			return r
		}
		s1, s2 = s1.Parent, s2.Parent
	}
	switch {
	case s1 == nil && s2 == nil:
		return Equal
	case s1 == nil:
		return LessThan
	default:
		return GreaterThan
	}
}
