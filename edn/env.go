/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package edn

import (
	"github.com/google/btree"
	"tinygo.org/x/go-llvm"
)

// Binding is a symbol table entry: a storage slot plus its declared type
// tag. Type is a string so struct names and pointer-suffixed tags ("foo*")
// fit in the same field as primitive names. Direct marks a binding whose
// Slot is the value itself rather than an alloca to load from — used for
// pointer-typed function parameters, which are bound straight to the
// incoming argument with no local copy.
type Binding struct {
	Slot   llvm.Value
	Type   string
	Direct bool
}

// Scope is one frame of the symbol table. Scopes chain through Outer. The
// lowerer pushes a fresh Scope for every function-body emission and
// discards it on return, rather than mutating one shared global table.
type Scope struct {
	Vars  map[string]Binding
	Outer *Scope
}

func newScope(outer *Scope) *Scope {
	return &Scope{Vars: make(map[string]Binding), Outer: outer}
}

// Find resolves a symbol through the scope chain, innermost first.
func (s *Scope) Find(name string) (Binding, bool) {
	for sc := s; sc != nil; sc = sc.Outer {
		if b, ok := sc.Vars[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Define binds name in the current (innermost) scope only.
func (s *Scope) Define(name string, b Binding) {
	s.Vars[name] = b
}

// FuncDef is a recorded "defn": it is stored at definition time and only
// lowered into backend IR on first call. DeclNode anchors diagnostics raised
// while building the function's signature, before any body node is in hand.
type FuncDef struct {
	Name       string
	ReturnType string
	Params     []FieldDef
	Body       []Node
	DeclNode   Node
}

func funcDefLess(a, b *FuncDef) bool { return a.Name < b.Name }

// emittedFunc caches a lowered function definition's value together with its
// LLVM function type, since opaque pointers mean call sites need the callee
// type alongside the callee value.
type emittedFunc struct {
	Fn   llvm.Value
	Type llvm.Type
}

// Env bundles the scoped symbol table (Scope, above) and the (unscoped,
// module-wide) function definition table, plus the lazy emission cache that
// makes a function's second call reuse its first lowering.
type Env struct {
	Root    *Scope
	Current *Scope
	Defs    *btree.BTreeG[*FuncDef]
	emitted map[string]emittedFunc
}

// NewEnv builds a fresh environment. The symbol table and function
// definition table both start empty.
func NewEnv() *Env {
	root := newScope(nil)
	return &Env{
		Root:    root,
		Current: root,
		Defs:    btree.NewG(32, funcDefLess),
		emitted: make(map[string]emittedFunc),
	}
}

// PushScope enters a fresh child scope, used when lowering a function body,
// and returns a restore closure that leaves it again. Any bindings defined
// inside (including a lazily-emitted function's parameters) are discarded
// once restore is called.
func (e *Env) PushScope() (restore func()) {
	saved := e.Current
	e.Current = newScope(saved)
	return func() { e.Current = saved }
}

func (e *Env) DefineFunc(def *FuncDef) {
	e.Defs.ReplaceOrInsert(def)
}

func (e *Env) LookupFunc(name string) (*FuncDef, bool) {
	return e.Defs.Get(&FuncDef{Name: name})
}

func (e *Env) Emitted(name string) (llvm.Value, llvm.Type, bool) {
	v, ok := e.emitted[name]
	return v.Fn, v.Type, ok
}

func (e *Env) SetEmitted(name string, fn llvm.Value, fnType llvm.Type) {
	e.emitted[name] = emittedFunc{Fn: fn, Type: fnType}
}

// EachFunc calls fn for every recorded function definition in name order;
// used by the driver's verbose dump.
func (e *Env) EachFunc(fn func(*FuncDef)) {
	e.Defs.Ascend(func(d *FuncDef) bool {
		fn(d)
		return true
	})
}
