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

func TestTokenize_AtomsAndParens(t *testing.T) {
	toks := NewLexer("t", "(+ 1 2)").Tokenize()
	want := []struct {
		kind TokenKind
		text string
	}{
		{TokParen, "("}, {TokAtom, "+"}, {TokAtom, "1"}, {TokAtom, "2"}, {TokParen, ")"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Fatalf("token %d: got %+v, want %+v", i, toks[i], w)
		}
	}
}

func TestTokenize_StringEscapes(t *testing.T) {
	toks := NewLexer("t", `"a\tb\nc\zd"`).Tokenize()
	if len(toks) != 1 || toks[0].Kind != TokString {
		t.Fatalf("expected a single string token, got %+v", toks)
	}
	if got, want := toks[0].Text, "a\\tb\\nczd"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTokenize_DiscardAndCharLiteralEarlyTermination(t *testing.T) {
	toks := NewLexer("t", "#_1 \\a").Tokenize()
	want := []string{"#_", "1", "\\a"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Text != w {
			t.Fatalf("token %d: got %q, want %q", i, toks[i].Text, w)
		}
	}
}

func TestTokenize_LineComment(t *testing.T) {
	toks := NewLexer("t", "1 ; comment\n2").Tokenize()
	if len(toks) != 2 || toks[0].Text != "1" || toks[1].Text != "2" {
		t.Fatalf("comment not stripped: %+v", toks)
	}
}

func TestTokenize_LineCommentFlushesAdjacentAtom(t *testing.T) {
	toks := NewLexer("t", "abc;c\n2").Tokenize()
	if len(toks) != 2 || toks[0].Text != "abc" || toks[1].Text != "2" {
		t.Fatalf("comment immediately after an atom should flush it and start a comment, got %+v", toks)
	}
}

func TestTokenize_UnterminatedStringFails(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unterminated string")
		}
	}()
	NewLexer("t", `"abc`).Tokenize()
}

func TestTokenize_Positions(t *testing.T) {
	toks := NewLexer("t", "1\n  22").Tokenize()
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[0].Line != 1 || toks[0].Col != 1 {
		t.Fatalf("first token position wrong: %+v", toks[0])
	}
	if toks[1].Line != 2 || toks[1].Col != 3 {
		t.Fatalf("second token position wrong: %+v", toks[1])
	}
}
