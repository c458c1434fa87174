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

func runOK(t *testing.T, src string) float64 {
	t.Helper()
	d := NewDriver()
	result, err := d.RunSource("t", src)
	if err != nil {
		t.Fatalf("RunSource(%q) failed: %v", src, err)
	}
	return result
}

func TestEndToEnd_Arithmetic(t *testing.T) {
	if got := runOK(t, "(+ 2 3)"); got != 5 {
		t.Fatalf("got %v, want 5", got)
	}
}

func TestEndToEnd_NestedArithmetic(t *testing.T) {
	if got := runOK(t, "(* 2 (+ 3 4))"); got != 14 {
		t.Fatalf("got %v, want 14", got)
	}
}

func TestEndToEnd_TypedAssignment(t *testing.T) {
	src := "(= x :int32 10) (= y :int32 (+ x 5)) (+ x y)"
	if got := runOK(t, src); got != 25 {
		t.Fatalf("got %v, want 25", got)
	}
}

func TestEndToEnd_FunctionDefinitionAndCall(t *testing.T) {
	src := "(defn :int32 add ((a :int32) (b :int32)) (+ a b)) (add 4 6)"
	if got := runOK(t, src); got != 10 {
		t.Fatalf("got %v, want 10", got)
	}
}

func TestEndToEnd_StructConstructAndFieldAccess(t *testing.T) {
	src := "(struct Point ((x :int32) (y :int32))) (= p (Point (3 4))) (+ (. p :x) (. p :y))"
	if got := runOK(t, src); got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestEndToEnd_WhileLoop(t *testing.T) {
	src := "(= n :int32 0) (= i :int32 0) (while (< i 5) ((= n :int32 (+ n i)) (= i :int32 (+ i 1)))) n"
	if got := runOK(t, src); got != 10 {
		t.Fatalf("got %v, want 10", got)
	}
}

func TestEndToEnd_PointerPutAndRef(t *testing.T) {
	src := "(defn :float64 f ((p :int32*)) (put p :int32 42)) (= x :int32 0) (f (ref x)) x"
	if got := runOK(t, src); got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestEndToEnd_CondElse(t *testing.T) {
	src := "(cond ((> 1 2) 10) ((< 1 2) 20) (else 30))"
	if got := runOK(t, src); got != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestLowering_NumericPromotionMixesIntAndFloat(t *testing.T) {
	if got := runOK(t, "(+ 2 3.5)"); got != 5.5 {
		t.Fatalf("got %v, want 5.5", got)
	}
}

func TestLowering_CondTotalityAlwaysYieldsFromJoin(t *testing.T) {
	if got := runOK(t, "(cond ((> 1 2) 10) (else 99))"); got != 99 {
		t.Fatalf("got %v, want 99", got)
	}
}

func TestLowering_LazyEmissionIdempotence(t *testing.T) {
	src := "(defn :int32 inc ((a :int32)) (+ a 1)) (+ (inc 1) (inc (inc 1)))"
	if got := runOK(t, src); got != 5 {
		t.Fatalf("got %v, want 5", got)
	}
}

func TestLowering_UnknownFunctionFails(t *testing.T) {
	d := NewDriver()
	if _, err := d.RunSource("t", "(bogus 1 2)"); err == nil {
		t.Fatal("expected an unknown-function call to fail")
	}
}

func TestLowering_UnknownSymbolFails(t *testing.T) {
	d := NewDriver()
	if _, err := d.RunSource("t", "(+ missing 1)"); err == nil {
		t.Fatal("expected an unbound symbol reference to fail")
	}
}

func TestLowering_DuplicateStructFails(t *testing.T) {
	d := NewDriver()
	src := "(struct Point ((x :int32))) (struct Point ((y :int32)))"
	if _, err := d.RunSource("t", src); err == nil {
		t.Fatal("expected redefining a struct to fail")
	}
}
