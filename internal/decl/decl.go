package decl

// Kind is the declaration category. The order of the constants is the
// tie-break order used when two declarations share scope and name.
type Kind int

const (
	Var Kind = iota
	Param
	Field
	Function
	Record
	Enum
	EnumConstant
	Typedef
	Block
)

func (k Kind) String() string {
	names := []string{"var", "param", "field", "function", "record", "enum", "enumconst", "typedef", "block"}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// IsVariable reports whether declarations of this kind can take part in
// equality facts.
func (k Kind) IsVariable() bool { return k == Var || k == Param }

// Decl is a named entity: variable, parameter, field, function, tag or
// typedef. Decls are created through Scope and never modified afterwards.
type Decl struct {
	Kind  Kind
	Name  string
	Scope *Scope // enclosing scope
	Seq   int    // position among the enclosing scope's declarations
	Prev  *Decl  // earlier declaration of the same entity, nil for the first

	body *Scope // scope opened by a function or record
}

// Canonical returns the first declaration of the entity.
func (d *Decl) Canonical() *Decl {
	if d == nil {
		return nil
	}
	for d.Prev != nil {
		d = d.Prev
	}
	return d
}

// Body returns the function or record scope opened for d, if any.
func (d *Decl) Body() *Scope { return d.Canonical().body }

// Qualified renders d with its enclosing named scopes, e.g. "f::p".
func (d *Decl) Qualified() string {
	if d == nil {
		return "<nil>"
	}
	name := d.Name
	for s := d.Scope; s != nil; s = s.Parent {
		if s.Kind == FunctionScope || s.Kind == RecordScope {
			name = s.Name + "::" + name
		}
	}
	return name
}

func (d *Decl) String() string { return d.Qualified() }
