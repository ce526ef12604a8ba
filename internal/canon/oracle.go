package canon

import (
	"slices"

	"github.com/tinyrange/canonbounds/internal/decl"
)

// EqualityRelation reports which variables are currently known to be equal.
// Representative must return the same declaration for every member of an
// equivalence class, and must stay stable for the duration of a comparison.
type EqualityRelation interface {
	Representative(v *decl.Decl) *decl.Decl
}

// MapRelation is an explicit representative table. Variables missing from
// the map represent themselves.
type MapRelation map[*decl.Decl]*decl.Decl

func (m MapRelation) Representative(v *decl.Decl) *decl.Decl {
	if r, ok := m[v]; ok {
		return r
	}
	return v
}

// Classes is an EqualityRelation built from sets of equal variables. The
// representative of a class is the first member of the first set that
// introduced it; merging two classes keeps the representative of the class
// named first.
type Classes struct {
	rep     map[*decl.Decl]*decl.Decl
	members map[*decl.Decl][]*decl.Decl
}

// NewClasses builds classes from sets, merging sets that share members.
func NewClasses(sets ...[]*decl.Decl) *Classes {
	c := &Classes{
		rep:     map[*decl.Decl]*decl.Decl{},
		members: map[*decl.Decl][]*decl.Decl{},
	}
	for _, s := range sets {
		c.Add(s...)
	}
	return c
}

// Add records that all of vs are equal.
func (c *Classes) Add(vs ...*decl.Decl) {
	if len(vs) == 0 {
		return
	}
	r := c.Representative(vs[0].Canonical())
	if _, ok := c.members[r]; !ok {
		c.rep[r] = r
		c.members[r] = []*decl.Decl{r}
	}
	for _, v := range vs[1:] {
		old := c.Representative(v.Canonical())
		if old == r {
			continue
		}
		moved, ok := c.members[old]
		if !ok {
			moved = []*decl.Decl{old}
		}
		for _, m := range moved {
			c.rep[m] = r
		}
		c.members[r] = append(c.members[r], moved...)
		delete(c.members, old)
	}
}

func (c *Classes) Representative(v *decl.Decl) *decl.Decl {
	if r, ok := c.rep[v]; ok {
		return r
	}
	return v
}

// Members returns a copy of the class of v, v alone if it has no recorded
// facts.
func (c *Classes) Members(v *decl.Decl) []*decl.Decl {
	if ms, ok := c.members[c.Representative(v)]; ok {
		return slices.Clone(ms)
	}
	return []*decl.Decl{v}
}
