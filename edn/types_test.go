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

import "testing"

func TestRegisterStruct_DuplicateFails(t *testing.T) {
	r := NewTypeRegistry()
	n := Node{Kind: KindSymbol, Text: "Point", Line: 1, Col: 1}
	r.RegisterStruct("t", n, "Point", []FieldDef{{Name: "x", Type: "int32"}})

	defer func() {
		if recover() == nil {
			t.Fatal("expected a duplicate struct registration to fail")
		}
	}()
	r.RegisterStruct("t", n, "Point", []FieldDef{{Name: "y", Type: "int32"}})
}

func TestStructDef_FieldIndex(t *testing.T) {
	r := NewTypeRegistry()
	n := Node{Kind: KindSymbol, Text: "Point", Line: 1, Col: 1}
	r.RegisterStruct("t", n, "Point", []FieldDef{
		{Name: "x", Type: "int32"},
		{Name: "y", Type: "int32"},
	})
	def, _ := r.Struct("Point")

	idx, f, ok := def.FieldIndex("y")
	if !ok || idx != 1 || f.Type != "int32" {
		t.Fatalf("FieldIndex(y) = %d, %+v, %v", idx, f, ok)
	}
	if _, _, ok := def.FieldIndex("z"); ok {
		t.Fatal("expected FieldIndex(z) to miss")
	}
}

func TestIsPointerAndDeref(t *testing.T) {
	if !IsPointer("int32*") || IsPointer("int32") {
		t.Fatal("IsPointer misclassified")
	}
	if got := Deref("int32*"); got != "int32" {
		t.Fatalf("Deref(int32*) = %q", got)
	}
	if got := Deref("int32"); got != "int32" {
		t.Fatalf("Deref of a non-pointer tag should default to int32, got %q", got)
	}
}

func TestIsFloatTagAndIsIntTag(t *testing.T) {
	for _, tag := range []string{"float32", "float64"} {
		if !IsFloatTag(tag) {
			t.Errorf("%q should be a float tag", tag)
		}
	}
	for _, tag := range []string{"int8", "int16", "int32", "int64"} {
		if !IsIntTag(tag) {
			t.Errorf("%q should be an int tag", tag)
		}
	}
	if IsFloatTag("int32") || IsIntTag("float64") {
		t.Fatal("tag predicates overlap")
	}
}

func TestIntWidth_Ordering(t *testing.T) {
	widths := []string{"int8", "int16", "int32", "int64"}
	prev := 0
	for _, w := range widths {
		got := IntWidth(w)
		if got <= prev {
			t.Fatalf("IntWidth(%s) = %d did not increase from %d", w, got, prev)
		}
		prev = got
	}
	if got := IntWidth("unknown"); got != 32 {
		t.Fatalf("IntWidth defaults to 32 for unknown tags, got %d", got)
	}
}

func TestLLVMType_UnknownTagFails(t *testing.T) {
	r := NewTypeRegistry()
	n := Node{Kind: KindSymbol, Text: "Bogus", Line: 1, Col: 1}
	defer func() {
		if recover() == nil {
			t.Fatal("expected an unknown type tag to fail")
		}
	}()
	r.LLVMType("t", n, "Bogus")
}

func TestLLVMType_StructResolvesWithoutPanicking(t *testing.T) {
	r := NewTypeRegistry()
	n := Node{Kind: KindSymbol, Text: "Point", Line: 1, Col: 1}
	r.RegisterStruct("t", n, "Point", []FieldDef{
		{Name: "x", Type: "int32"},
		{Name: "y", Type: "float64"},
	})
	// resolving a struct's LLVM type recurses into each field's type; this
	// only verifies that resolution completes for a struct made of plain
	// primitive fields.
	_ = r.LLVMType("t", n, "Point")
}
