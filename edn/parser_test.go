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

func TestParse_Collections(t *testing.T) {
	n := Parse("t", "(1 [2 3] {:a 1})")
	top := n.Children[0]
	if top.Kind != KindList || len(top.Children) != 3 {
		t.Fatalf("unexpected top form: %+v", top)
	}
	if top.Children[1].Kind != KindVector || len(top.Children[1].Children) != 2 {
		t.Fatalf("unexpected vector: %+v", top.Children[1])
	}
	if top.Children[2].Kind != KindMap || len(top.Children[2].Children) != 2 {
		t.Fatalf("unexpected map: %+v", top.Children[2])
	}
}

func TestParse_TaggedSetAndDiscard(t *testing.T) {
	n := Parse("t", "#{1 2} #_(3 4) 5")
	forms := n.Children
	if len(forms) != 3 {
		t.Fatalf("got %d top forms, want 3: %+v", len(forms), forms)
	}
	if forms[0].Kind != KindSet || len(forms[0].Children) != 2 {
		t.Fatalf("unexpected set: %+v", forms[0])
	}
	if forms[1].Kind != KindDiscard {
		t.Fatalf("unexpected discard: %+v", forms[1])
	}
	if forms[2].Kind != KindInt || forms[2].Text != "5" {
		t.Fatalf("unexpected trailing form: %+v", forms[2])
	}
}

func TestParse_GenericTagged(t *testing.T) {
	n := Parse("t", "#inst \"2024\"")
	form := n.Children[0]
	if form.Kind != KindTagged || len(form.Children) != 2 {
		t.Fatalf("unexpected tagged node: %+v", form)
	}
	if form.Children[0].Text != "inst" {
		t.Fatalf("unexpected tag name: %+v", form.Children[0])
	}
}

func TestParse_MultipleTopLevelFormsWrapInSyntheticList(t *testing.T) {
	n := Parse("t", "(= x :int32 1) (+ x 1)")
	if n.Kind != KindList || len(n.Children) != 2 {
		t.Fatalf("expected a synthetic wrapping list with 2 forms, got %+v", n)
	}
}

func TestClassifyAtom_Totality(t *testing.T) {
	cases := map[string]NodeKind{
		"nil":      KindNil,
		"true":     KindBool,
		"false":    KindBool,
		`\a`:       KindChar,
		"42":       KindInt,
		"-42N":     KindInt,
		"3.14":     KindFloat,
		".5":       KindFloat,
		"5.":       KindFloat,
		"1e10":     KindFloat,
		"1.5M":     KindFloat,
		":kw":      KindKeyword,
		"foo":      KindSymbol,
		"foo/bar":  KindSymbol,
		"/":        KindSymbol,
		".":        KindSymbol,
		"+":        KindSymbol,
		"-":        KindSymbol,
	}
	for atom, want := range cases {
		ps := &parserState{source: "t"}
		got := ps.classifyAtom(Token{Kind: TokAtom, Text: atom, Line: 1, Col: 1})
		if got.Kind != want {
			t.Errorf("classifyAtom(%q) = %s, want %s", atom, got.Kind, want)
		}
	}
}

func TestClassifyAtom_RejectsUnclassifiable(t *testing.T) {
	for _, atom := range []string{"1/2/3", "1abc", "#bare"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("classifyAtom(%q) should have failed", atom)
				}
			}()
			ps := &parserState{source: "t"}
			ps.classifyAtom(Token{Kind: TokAtom, Text: atom, Line: 1, Col: 1})
		}()
	}
}

func TestLexPrintIdempotence(t *testing.T) {
	sources := []string{
		`(defn :int32 add ((a :int32) (b :int32)) (+ a b))`,
		`(struct Point ((x :int32) (y :int32)))`,
		`[1 2 3] {:a 1 :b 2} #{1 2}`,
		`"quo\"ted" \x nil true false`,
	}
	for _, src := range sources {
		n1 := Parse("t", src)
		printed := Print(n1)
		n2 := Parse("t", printed)
		if Print(n2) != printed {
			t.Errorf("round-trip mismatch for %q: got %q then %q", src, printed, Print(n2))
		}
	}
}

func TestIsValidSymbol(t *testing.T) {
	valid := []string{"foo", "foo-bar", "foo?", "foo!", "a/b", "/", "+", "-", "*", "..."}
	for _, s := range valid {
		if !isValidSymbol(s) {
			t.Errorf("expected %q to be a valid symbol", s)
		}
	}
	invalid := []string{"", "1foo", ":foo", "#foo", "a/b/c", "-1", "+1", ".1"}
	for _, s := range invalid {
		if isValidSymbol(s) {
			t.Errorf("expected %q to be an invalid symbol", s)
		}
	}
}

func TestIsFloatLiteral_RejectsBareDot(t *testing.T) {
	if isFloatLiteral(".") {
		t.Fatal("bare \".\" must not classify as a float")
	}
	if !isFloatLiteral(".5") || !isFloatLiteral("5.") {
		t.Fatal("digit-adjacent decimal points must classify as floats")
	}
}
