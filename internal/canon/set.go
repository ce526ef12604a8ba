package canon

import (
	"slices"

	"github.com/tinyrange/canonbounds/internal/ast"
)

// Sort orders exprs in canonical order. Equal expressions keep their
// relative order.
func (l *Lexicographic) Sort(exprs []ast.Expr) {
	slices.SortStableFunc(exprs, func(a, b ast.Expr) int { return l.CompareExpr(a, b).Int() })
}

// Dedup returns the canonically sorted expressions of exprs with one
// representative per Equal group, the first one seen. exprs is not modified.
func (l *Lexicographic) Dedup(exprs []ast.Expr) []ast.Expr {
	out := slices.Clone(exprs)
	l.Sort(out)
	return slices.CompactFunc(out, func(a, b ast.Expr) bool { return l.CompareExpr(a, b) == Equal })
}

// Set is a sorted collection of distinct bounds expressions. Fingerprints
// let most lookups of absent expressions skip the search.
type Set struct {
	cmp    *Lexicographic
	items  []ast.Expr
	hashes map[uint64]int
}

func NewSet(l *Lexicographic) *Set {
	return &Set{cmp: l, hashes: map[uint64]int{}}
}

func (s *Set) search(e ast.Expr) (int, bool) {
	return slices.BinarySearchFunc(s.items, e, func(a, b ast.Expr) int { return s.cmp.CompareExpr(a, b).Int() })
}

// Insert adds e unless an Equal expression is already present, and reports
// whether it was added.
func (s *Set) Insert(e ast.Expr) bool {
	i, found := s.search(e)
	if found {
		return false
	}
	s.items = slices.Insert(s.items, i, e)
	s.hashes[s.cmp.Fingerprint(e)]++
	return true
}

// Contains reports whether an expression Equal to e is in the set.
func (s *Set) Contains(e ast.Expr) bool {
	if s.hashes[s.cmp.Fingerprint(e)] == 0 {
		return false
	}
	_, found := s.search(e)
	return found
}

func (s *Set) Len() int { return len(s.items) }

// Items returns the members in canonical order. The slice must not be
// modified.
func (s *Set) Items() []ast.Expr { return s.items }
