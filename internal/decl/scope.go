package decl

// ScopeKind classifies an enclosing context.
type ScopeKind int

const (
	UnitScope ScopeKind = iota
	FunctionScope
	RecordScope
	BlockScope
)

func (k ScopeKind) String() string {
	switch k {
	case UnitScope:
		return "unit"
	case FunctionScope:
		return "function"
	case RecordScope:
		return "record"
	case BlockScope:
		return "block"
	}
	return "?"
}

// Scope is one link of a scope chain. Function and record scopes are owned
// by the declaration that opened them; block scopes are numbered among their
// parent's child blocks.
type Scope struct {
	Kind   ScopeKind
	Name   string
	Owner  *Decl
	Parent *Scope
	Seq    int

	decls  []*Decl
	blocks int
}

// NewTranslationUnit returns the outermost scope for a unit.
func NewTranslationUnit(name string) *Scope {
	return &Scope{Kind: UnitScope, Name: name}
}

// Declare adds a new declaration to s.
func (s *Scope) Declare(kind Kind, name string) *Decl {
	d := &Decl{Kind: kind, Name: name, Scope: s, Seq: len(s.decls)}
	s.decls = append(s.decls, d)
	return d
}

// Redeclare adds a later declaration of prev's entity to s.
func (s *Scope) Redeclare(prev *Decl) *Decl {
	d := s.Declare(prev.Kind, prev.Name)
	d.Prev = prev
	return d
}

// Open creates the body scope of a function or record declaration. Opening
// the same entity twice returns the existing scope.
func (s *Scope) Open(owner *Decl) *Scope {
	c := owner.Canonical()
	if c.body != nil {
		return c.body
	}
	kind := FunctionScope
	if c.Kind == Record {
		kind = RecordScope
	}
	c.body = &Scope{Kind: kind, Name: c.Name, Owner: c, Parent: s}
	return c.body
}

// Block opens a nested anonymous block scope.
func (s *Scope) Block() *Scope {
	b := &Scope{Kind: BlockScope, Parent: s, Seq: s.blocks}
	s.blocks++
	return b
}

// Decls returns the declarations of s in declaration order.
func (s *Scope) Decls() []*Decl { return s.decls }

// Lookup finds name in s or its enclosing scopes, innermost first. Record
// scopes are skipped when walking outwards: fields are only visible through
// member access.
func (s *Scope) Lookup(name string) *Decl {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.Kind == RecordScope && sc != s {
			continue
		}
		if d := sc.Local(name); d != nil {
			return d
		}
	}
	return nil
}

// Local finds the latest declaration of name in s itself.
func (s *Scope) Local(name string) *Decl {
	for i := len(s.decls) - 1; i >= 0; i-- {
		if s.decls[i].Name == name {
			return s.decls[i]
		}
	}
	return nil
}

// Chain returns s and its ancestors, innermost first.
func (s *Scope) Chain() []*Scope {
	var out []*Scope
	for sc := s; sc != nil; sc = sc.Parent {
		out = append(out, sc)
	}
	return out
}

// Depth is the number of scopes in s's chain.
func (s *Scope) Depth() int {
	n := 0
	for sc := s; sc != nil; sc = sc.Parent {
		n++
	}
	return n
}
