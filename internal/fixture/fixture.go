// Package fixture describes a translation unit in YAML and builds the
// declarations, types and equality facts that bounds expressions refer to.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/canonbounds/internal/canon"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/parser"
	"github.com/tinyrange/canonbounds/internal/types"
)

// File is the YAML document layout.
type File struct {
	Unit       string     `yaml:"unit"`
	Records    []Record   `yaml:"records"`
	Enums      []Enum     `yaml:"enums"`
	Typedefs   []Typed    `yaml:"typedefs"`
	Globals    []Typed    `yaml:"globals"`
	Functions  []Function `yaml:"functions"`
	Equalities [][]string `yaml:"equalities"`
}

// Typed is a name with a type written in bounds notation.
type Typed struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Record struct {
	Name   string  `yaml:"name"`
	Union  bool    `yaml:"union"`
	Fields []Typed `yaml:"fields"`
}

type Enum struct {
	Name      string   `yaml:"name"`
	Constants []string `yaml:"constants"`
}

type Function struct {
	Name     string    `yaml:"name"`
	Result   string    `yaml:"result"`
	Variadic bool      `yaml:"variadic"`
	Params   []Typed   `yaml:"params"`
	Locals   []Typed   `yaml:"locals"`
	Blocks   [][]Typed `yaml:"blocks"`
}

// Unit is a built translation unit.
type Unit struct {
	Name  string
	Scope *decl.Scope

	tags     map[string]types.QualType
	typedefs map[string]types.QualType
	typeOf   map[*decl.Decl]types.QualType
	blocks   map[*decl.Scope][]*decl.Scope
	classes  *canon.Classes
}

// Load reads and builds the fixture at path.
func Load(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	u, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// Parse builds a unit from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Unit, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return Build(&f)
}

// Build declares everything f describes. Records are declared before any
// type is parsed so fields may point to any record in the unit.
func Build(f *File) (*Unit, error) {
	name := f.Unit
	if name == "" {
		name = "unit"
	}
	u := &Unit{
		Name:     name,
		Scope:    decl.NewTranslationUnit(name),
		tags:     map[string]types.QualType{},
		typedefs: map[string]types.QualType{},
		typeOf:   map[*decl.Decl]types.QualType{},
		blocks:   map[*decl.Scope][]*decl.Scope{},
	}

	records := make([]*decl.Decl, len(f.Records))
	for i, r := range f.Records {
		if _, dup := u.tags[r.Name]; dup {
			return nil, fmt.Errorf("record %s declared twice", r.Name)
		}
		d := u.Scope.Declare(decl.Record, r.Name)
		records[i] = d
		u.tags[r.Name] = types.QualType{Type: &types.Record{Decl: d, Union: r.Union}}
	}
	for _, e := range f.Enums {
		if _, dup := u.tags[e.Name]; dup {
			return nil, fmt.Errorf("tag %s declared twice", e.Name)
		}
		d := u.Scope.Declare(decl.Enum, e.Name)
		u.tags[e.Name] = types.QualType{Type: &types.Enum{Decl: d}}
		for _, c := range e.Constants {
			u.typeOf[u.Scope.Declare(decl.EnumConstant, c)] = u.tags[e.Name]
		}
	}
	for _, td := range f.Typedefs {
		t, err := u.parseType(td)
		if err != nil {
			return nil, err
		}
		d := u.Scope.Declare(decl.Typedef, td.Name)
		u.typedefs[td.Name] = types.QualType{Type: &types.Typedef{Decl: d, Underlying: t}}
	}
	for i, r := range f.Records {
		body := u.Scope.Open(records[i])
		if err := u.declareAll(body, decl.Field, r.Fields); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.Name, err)
		}
	}
	if err := u.declareAll(u.Scope, decl.Var, f.Globals); err != nil {
		return nil, err
	}
	for _, fn := range f.Functions {
		if err := u.declareFunction(fn); err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}

	u.classes = canon.NewClasses()
	for i, names := range f.Equalities {
		set := make([]*decl.Decl, 0, len(names))
		for _, n := range names {
			d, err := u.Lookup(n)
			if err != nil {
				// A bare local name resolves as it would in an expression.
				if d = (&env{u: u}).Value(n); d == nil {
					return nil, fmt.Errorf("equalities[%d]: %w", i, err)
				}
			}
			if !d.Kind.IsVariable() {
				return nil, fmt.Errorf("equalities[%d]: %s is a %s, not a variable", i, n, d.Kind)
			}
			set = append(set, d)
		}
		u.classes.Add(set...)
	}
	return u, nil
}

func (u *Unit) parseType(t Typed) (types.QualType, error) {
	qt, err := parser.ParseType(t.Type, u.Env())
	if err != nil {
		return types.QualType{}, fmt.Errorf("type of %s: %w", t.Name, err)
	}
	return qt, nil
}

func (u *Unit) declareAll(s *decl.Scope, kind decl.Kind, list []Typed) error {
	for _, v := range list {
		if s.Local(v.Name) != nil && s.Kind != decl.UnitScope {
			return fmt.Errorf("%s declared twice", v.Name)
		}
		t, err := u.parseType(v)
		if err != nil {
			return err
		}
		var d *decl.Decl
		if prev := s.Local(v.Name); prev != nil && prev.Kind == kind {
			d = s.Redeclare(prev)
		} else {
			d = s.Declare(kind, v.Name)
		}
		u.typeOf[d] = t
	}
	return nil
}

func (u *Unit) declareFunction(fn Function) error {
	ft := &types.Function{Result: types.IntT(), Variadic: fn.Variadic}
	if fn.Result != "" {
		r, err := u.parseType(Typed{Name: "result", Type: fn.Result})
		if err != nil {
			return err
		}
		ft.Result = r
	}
	for _, p := range fn.Params {
		t, err := u.parseType(p)
		if err != nil {
			return err
		}
		ft.Params = append(ft.Params, t)
	}
	var d *decl.Decl
	if prev := u.Scope.Local(fn.Name); prev != nil && prev.Kind == decl.Function {
		d = u.Scope.Redeclare(prev)
	} else {
		d = u.Scope.Declare(decl.Function, fn.Name)
	}
	u.typeOf[d] = types.QualType{Type: ft}

	body := u.Scope.Open(d)
	if err := u.declareAll(body, decl.Param, fn.Params); err != nil {
		return err
	}
	if err := u.declareAll(body, decl.Var, fn.Locals); err != nil {
		return err
	}
	for _, locals := range fn.Blocks {
		b := body.Block()
		u.blocks[body] = append(u.blocks[body], b)
		if err := u.declareAll(b, decl.Var, locals); err != nil {
			return err
		}
	}
	return nil
}

// Relation returns the equality facts as an oracle.
func (u *Unit) Relation() *canon.Classes { return u.classes }

// TypeOf returns the declared type of a variable, field or function.
func (u *Unit) TypeOf(d *decl.Decl) (types.QualType, bool) {
	t, ok := u.typeOf[d]
	return t, ok
}

// Lookup finds a declaration by name. "f::x" searches function f's
// parameters, locals and blocks; "S::x" searches the fields of record S.
func (u *Unit) Lookup(name string) (*decl.Decl, error) {
	owner, local, qualified := strings.Cut(name, "::")
	if !qualified {
		if d := u.Scope.Local(name); d != nil {
			return d, nil
		}
		return nil, fmt.Errorf("undeclared %q", name)
	}
	od := u.Scope.Local(owner)
	if od == nil || (od.Kind != decl.Function && od.Kind != decl.Record) {
		return nil, fmt.Errorf("no function or record %q", owner)
	}
	body := od.Body()
	if body != nil {
		if d := body.Local(local); d != nil {
			return d, nil
		}
		for _, b := range u.blocks[body] {
			if d := b.Local(local); d != nil {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("no %q in %s", local, owner)
}

// Env resolves names at unit scope, falling back to the locals of every
// function when a name is declared in exactly one of them.
func (u *Unit) Env() parser.Env { return &env{u: u} }

// In resolves names as seen from inside function fn.
func (u *Unit) In(fn string) (parser.Env, error) {
	d := u.Scope.Local(fn)
	if d == nil || d.Kind != decl.Function {
		return nil, fmt.Errorf("no function %q", fn)
	}
	return &env{u: u, fn: d.Body()}, nil
}

type env struct {
	u  *Unit
	fn *decl.Scope
}

func isValue(d *decl.Decl) bool {
	switch d.Kind {
	case decl.Var, decl.Param, decl.Function, decl.EnumConstant:
		return true
	}
	return false
}

func (e *env) Value(name string) *decl.Decl {
	if owner, _, ok := strings.Cut(name, "::"); ok && owner != "" {
		if d, err := e.u.Lookup(name); err == nil && isValue(d) {
			return d
		}
		return nil
	}
	if e.fn != nil {
		if d := e.fn.Lookup(name); d != nil && isValue(d) {
			return d
		}
		// Block locals are not visible from the function body; they are
		// reachable only when nothing in scope declares the name.
		for _, b := range e.u.blocks[e.fn] {
			if d := b.Local(name); d != nil && isValue(d) {
				return d
			}
		}
		return nil
	}
	if d := e.u.Scope.Local(name); d != nil && isValue(d) {
		return d
	}
	var found *decl.Decl
	for _, d := range e.u.Scope.Decls() {
		if d.Kind != decl.Function || d.Body() == nil {
			continue
		}
		if v := d.Body().Local(name); v != nil {
			if found != nil && found != v {
				return nil
			}
			found = v
		}
	}
	return found
}

func (e *env) Typedef(name string) (types.QualType, bool) {
	t, ok := e.u.typedefs[name]
	return t, ok
}

func (e *env) Tag(name string) (types.QualType, bool) {
	t, ok := e.u.tags[name]
	return t, ok
}

func (e *env) RecordOf(d *decl.Decl) *decl.Decl {
	t, ok := e.u.typeOf[d]
	if !ok {
		return nil
	}
	var c types.Canonicalizer
	for {
		switch ty := c.Canonical(t).Type.(type) {
		case *types.Record:
			return ty.Decl
		case *types.Pointer:
			t = ty.Elem
		case *types.Array:
			t = ty.Elem
		default:
			return nil
		}
	}
}
