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
	"strings"

	"github.com/google/btree"
	"tinygo.org/x/go-llvm"
)

// FieldDef is one struct field: declaration order is the field's dense index.
type FieldDef struct {
	Name string
	Type string
}

// StructDef is a user-defined aggregate registered by a "struct" form.
type StructDef struct {
	Name   string
	Fields []FieldDef
}

func (s *StructDef) FieldIndex(name string) (int, FieldDef, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, f, true
		}
	}
	return 0, FieldDef{}, false
}

// TypeRegistry maps struct names to their field layout and backend type
// descriptor. Structs are kept in a google/btree ordered map (instead of a
// bare Go map) so the driver's verbose module dump lists struct names in
// deterministic, sorted order across runs. Fields keep declaration order.
type TypeRegistry struct {
	structs *btree.BTreeG[*StructDef]
}

func structLess(a, b *StructDef) bool { return a.Name < b.Name }

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{structs: btree.NewG(32, structLess)}
}

// RegisterStruct adds a new struct definition. Redefinition is a fatal error.
func (r *TypeRegistry) RegisterStruct(source string, n Node, name string, fields []FieldDef) *StructDef {
	if _, ok := r.structs.Get(&StructDef{Name: name}); ok {
		fail(source, n, "struct %s already defined", name)
	}
	def := &StructDef{Name: name, Fields: fields}
	r.structs.ReplaceOrInsert(def)
	return def
}

func (r *TypeRegistry) Struct(name string) (*StructDef, bool) {
	return r.structs.Get(&StructDef{Name: name})
}

// Each calls fn for every registered struct in name order; used by the
// driver's verbose dump.
func (r *TypeRegistry) Each(fn func(*StructDef)) {
	r.structs.Ascend(func(s *StructDef) bool {
		fn(s)
		return true
	})
}

// IsPointer reports whether tag is a "base*" pointer-to-base spelling.
func IsPointer(tag string) bool { return strings.HasSuffix(tag, "*") }

// Deref strips one trailing "*" from tag, defaulting to int32 if tag has no
// pointer suffix.
func Deref(tag string) string {
	if IsPointer(tag) {
		return tag[:len(tag)-1]
	}
	return "int32"
}

func IsFloatTag(tag string) bool { return tag == "float32" || tag == "float64" }

func IsIntTag(tag string) bool {
	switch tag {
	case "int8", "int16", "int32", "int64":
		return true
	}
	return false
}

// IntWidth returns the bit width of an integer tag, defaulting to 32 for any
// other tag. Binary-operator promotion (lowerBinOp) reads widths from the
// lowered LLVM values instead of calling this.
func IntWidth(tag string) int {
	switch tag {
	case "int8":
		return 8
	case "int16":
		return 16
	case "int32":
		return 32
	case "int64":
		return 64
	}
	return 32
}

// LLVMType resolves a declared-type tag (primitive, "base*" pointer, or
// struct name) to its backend IR type. An unknown name is a fatal error.
func (r *TypeRegistry) LLVMType(source string, n Node, tag string) llvm.Type {
	if IsPointer(tag) {
		return llvm.PointerType(r.LLVMType(source, n, Deref(tag)), 0)
	}
	switch tag {
	case "int8":
		return llvm.Int8Type()
	case "int16":
		return llvm.Int16Type()
	case "int32":
		return llvm.Int32Type()
	case "int64":
		return llvm.Int64Type()
	case "float32":
		return llvm.FloatType()
	case "float64":
		return llvm.DoubleType()
	case "void":
		return llvm.VoidType()
	}
	if def, ok := r.Struct(tag); ok {
		fields := make([]llvm.Type, len(def.Fields))
		for i, f := range def.Fields {
			fields[i] = r.LLVMType(source, n, f.Type)
		}
		return llvm.StructType(fields, false)
	}
	fail(source, n, "unknown type %q", tag)
	panic("unreachable")
}
