package checker

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/mna/gox/lang/ast"
	"github.com/mna/gox/lang/token"
)

// Decl is a name bound in a Symtab: a variable, a parameter, or a function.
type Decl struct {
	Name  string
	Type  token.Token // declared/inferred type; the function's return type for a *ast.FuncDecl (ILLEGAL if void)
	Const bool
	Node  ast.Node // *ast.VarDecl, *ast.ParamDecl or *ast.FuncDecl

	// ParamTypes is set only for function declarations.
	ParamTypes []token.Token
}

// Symtab is a lexically scoped environment with a parent link and an owner
// node identifying the construct that introduced the scope (a *ast.FuncDecl,
// *ast.If or *ast.While; nil for the root).
type Symtab struct {
	// Name is a human-readable scope name ("if_then", "while_body", a
	// function's name, or "" for the root), possibly suffixed with a unique
	// counter when the checker runs with NameBlocks.
	Name string
	// Kind is Name's un-suffixed form, used for structural checks (e.g.
	// whether a scope is a loop body) that must not be confused by the
	// NameBlocks counter suffix.
	Kind   string
	Parent *Symtab
	Owner  ast.Node

	entries map[string]*Decl
}

func newSymtab(name, kind string, parent *Symtab, owner ast.Node) *Symtab {
	return &Symtab{Name: name, Kind: kind, Parent: parent, Owner: owner, entries: map[string]*Decl{}}
}

// Define binds name to d in s, reporting false if name is already bound in
// this scope (shadowing a parent scope's binding is allowed).
func (s *Symtab) Define(name string, d *Decl) bool {
	if _, ok := s.entries[name]; ok {
		return false
	}
	s.entries[name] = d
	return true
}

// Lookup walks s and its ancestors looking for name, returning the
// declaration and the scope that owns it, or (nil, nil) if undefined.
func (s *Symtab) Lookup(name string) (*Decl, *Symtab) {
	for e := s; e != nil; e = e.Parent {
		if d, ok := e.entries[name]; ok {
			return d, e
		}
	}
	return nil, nil
}

// InLoop reports whether s or an ancestor scope is a while body.
func (s *Symtab) InLoop() bool {
	for e := s; e != nil; e = e.Parent {
		if e.Kind == "while_body" {
			return true
		}
	}
	return false
}

// EnclosingFunc walks s and its ancestors looking for the nearest function
// scope, returning its declaration and scope.
func (s *Symtab) EnclosingFunc() (*ast.FuncDecl, *Symtab) {
	for e := s; e != nil; e = e.Parent {
		if fd, ok := e.Owner.(*ast.FuncDecl); ok {
			return fd, e
		}
	}
	return nil, nil
}

// Names returns the names bound directly in s, sorted for deterministic
// dumps (scope iteration order is otherwise randomized by Go's map).
func (s *Symtab) Names() []string {
	names := maps.Keys(s.entries)
	sort.Strings(names)
	return names
}

// entry looks name up in s only, without consulting its ancestors.
func (s *Symtab) entry(name string) (*Decl, bool) {
	d, ok := s.entries[name]
	return d, ok
}
