package types

import (
	lru "github.com/hashicorp/golang-lru"
)

// Resolver is the canonical type authority: it maps a type to the
// structural form used for identity.
type Resolver interface {
	Canonical(t QualType) QualType
}

// Canonicalizer strips typedef sugar, folding the typedef's qualifiers into
// the use site, through pointer, array, function and annotated shapes.
type Canonicalizer struct{}

func (Canonicalizer) Canonical(t QualType) QualType { return canonical(t) }

func canonical(t QualType) QualType {
	switch ty := t.Type.(type) {
	case *Typedef:
		u := canonical(ty.Underlying)
		u.Quals |= t.Quals
		return u
	case *Pointer:
		e := canonical(ty.Elem)
		if e == ty.Elem {
			return t
		}
		return QualType{Type: &Pointer{Elem: e, Checked: ty.Checked}, Quals: t.Quals}
	case *Array:
		e := canonical(ty.Elem)
		if e == ty.Elem {
			return t
		}
		return QualType{Type: &Array{Elem: e, Size: ty.Size, Checked: ty.Checked}, Quals: t.Quals}
	case *Function:
		changed := false
		r := canonical(ty.Result)
		if r != ty.Result {
			changed = true
		}
		params := make([]QualType, len(ty.Params))
		for i, p := range ty.Params {
			params[i] = canonical(p)
			if params[i] != p {
				changed = true
			}
		}
		if !changed {
			return t
		}
		return QualType{Type: &Function{Result: r, Params: params, Variadic: ty.Variadic}, Quals: t.Quals}
	case *Annotated:
		b := canonical(ty.Base)
		if b == ty.Base {
			return t
		}
		return QualType{Type: &Annotated{Base: b, Bounds: ty.Bounds}, Quals: t.Quals}
	}
	return t
}

// CachedResolver memoizes another Resolver. Types are immutable once built,
// so a resolution never goes stale.
type CachedResolver struct {
	next  Resolver
	cache *lru.Cache
}

// NewCachedResolver wraps r with an LRU of the given size. A size of zero or
// less returns r unchanged.
func NewCachedResolver(r Resolver, size int) (Resolver, error) {
	if size <= 0 {
		return r, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedResolver{next: r, cache: c}, nil
}

func (c *CachedResolver) Canonical(t QualType) QualType {
	if v, ok := c.cache.Get(t); ok {
		return v.(QualType)
	}
	r := c.next.Canonical(t)
	c.cache.Add(t, r)
	return r
}

// Len reports the number of cached resolutions.
func (c *CachedResolver) Len() int { return c.cache.Len() }
