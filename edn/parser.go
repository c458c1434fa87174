/*
Copyright (C) 2023-2026  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

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

import "strings"

// parserState walks a flat token slice, building typed Node values.
type parserState struct {
	source string
	tokens []Token
	pos    int
}

// Parse reads every top-level form out of s and wraps them in a synthetic
// List so the lowerer's sequence rule applies uniformly whether the source
// has one top-level form or many.
func Parse(source, s string) Node {
	lx := NewLexer(source, s)
	ps := &parserState{source: source, tokens: lx.Tokenize()}
	var forms []Node
	for ps.pos < len(ps.tokens) {
		forms = append(forms, ps.parseOne())
	}
	return compound(KindList, 1, 1, forms...)
}

func (p *parserState) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

var closerFor = map[string]string{"(": ")", "[": "]", "{": "}"}
var kindForOpener = map[string]NodeKind{"(": KindList, "[": KindVector, "{": KindMap}

func (p *parserState) parseOne() Node {
	tok, ok := p.peek()
	if !ok {
		failAt(p.source, 0, 0, "unexpected end of input")
	}

	switch tok.Kind {
	case TokString:
		p.pos++
		return leaf(KindString, tok.Text, tok.Line, tok.Col)
	case TokParen:
		switch tok.Text {
		case "(", "[", "{":
			return p.parseCollection(tok)
		default:
			failAt(p.source, tok.Line, tok.Col, "unexpected closing bracket %q", tok.Text)
		}
	case TokAtom:
		p.pos++
		if strings.HasPrefix(tok.Text, "#") {
			return p.parseTagged(tok)
		}
		return p.classifyAtom(tok)
	}
	panic("unreachable")
}

func (p *parserState) parseCollection(open Token) Node {
	p.pos++ // consume opener
	closer := closerFor[open.Text]
	kind := kindForOpener[open.Text]
	var children []Node
	for {
		tok, ok := p.peek()
		if !ok {
			failAt(p.source, open.Line, open.Col, "expecting matching %q", closer)
		}
		if tok.Kind == TokParen && tok.Text == closer {
			p.pos++
			return compound(kind, open.Line, open.Col, children...)
		}
		if tok.Kind == TokParen {
			if _, isCloser := closerFor[tok.Text]; !isCloser {
				if _, isOpener := kindForOpener[tok.Text]; !isOpener {
					failAt(p.source, tok.Line, tok.Col, "unexpected closing bracket %q inside %q", tok.Text, open.Text)
				}
			}
		}
		children = append(children, p.parseOne())
	}
}

// parseTagged handles a "#..." atom: the remainder of the atom is the tag
// name, and the next parsed node is the payload. "#" with a "{}" payload
// becomes a Set; "#_" becomes a Discard.
func (p *parserState) parseTagged(tok Token) Node {
	tagName := tok.Text[1:]
	if tagName == "_" {
		payload := p.parseOne()
		return compound(KindDiscard, tok.Line, tok.Col, payload)
	}
	payload := p.parseOne()
	if tagName == "" {
		if payload.Kind != KindMap {
			failAt(p.source, tok.Line, tok.Col, "#{} set tag requires a {} payload")
		}
		return Node{Kind: KindSet, Line: tok.Line, Col: tok.Col, Children: payload.Children}
	}
	if !isValidSymbol(tagName) {
		failAt(p.source, tok.Line, tok.Col, "invalid tag name %q", tagName)
	}
	tagSym := leaf(KindSymbol, tagName, tok.Line, tok.Col)
	return compound(KindTagged, tok.Line, tok.Col, tagSym, payload)
}

// classifyAtom runs the atom predicates in order and returns the first
// match, or raises a parse error if none match.
func (p *parserState) classifyAtom(tok Token) Node {
	s := tok.Text
	switch {
	case s == "nil":
		return leaf(KindNil, s, tok.Line, tok.Col)
	case s == "true" || s == "false":
		return leaf(KindBool, s, tok.Line, tok.Col)
	case len(s) == 2 && s[0] == '\\':
		return leaf(KindChar, s, tok.Line, tok.Col)
	case isIntLiteral(s):
		return leaf(KindInt, s, tok.Line, tok.Col)
	case isFloatLiteral(s):
		return leaf(KindFloat, s, tok.Line, tok.Col)
	case len(s) > 1 && s[0] == ':' && isValidSymbol(s[1:]):
		return leaf(KindKeyword, s, tok.Line, tok.Col)
	case isValidSymbol(s):
		return leaf(KindSymbol, s, tok.Line, tok.Col)
	}
	failAt(p.source, tok.Line, tok.Col, "unclassifiable atom %q", s)
	panic("unreachable")
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigitByte(s[i]) {
			return false
		}
	}
	return true
}

// isIntLiteral matches a signed integer literal, optionally suffixed N or M.
func isIntLiteral(s string) bool {
	if s == "" {
		return false
	}
	if last := s[len(s)-1]; last == 'N' || last == 'M' {
		s = s[:len(s)-1]
	}
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	return i < len(s) && allDigits(s[i:])
}

// isFloatLiteral matches a float literal: optional sign, decimal point,
// optional E exponent, optional M suffix. A bare "." never qualifies: at
// least one digit must appear before or after the decimal point.
func isFloatLiteral(s string) bool {
	if s == "" {
		return false
	}
	if s[len(s)-1] == 'M' {
		s = s[:len(s)-1]
	}
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	mantissa := s[i:]
	if mantissa == "" {
		return false
	}

	expIdx := -1
	for j := 0; j < len(mantissa); j++ {
		if mantissa[j] == 'e' || mantissa[j] == 'E' {
			expIdx = j
			break
		}
	}
	beforeExp, exp := mantissa, ""
	hasExp := expIdx >= 0
	if hasExp {
		beforeExp, exp = mantissa[:expIdx], mantissa[expIdx+1:]
	}

	hasDot := strings.Contains(beforeExp, ".")
	switch {
	case hasDot:
		parts := strings.SplitN(beforeExp, ".", 2)
		intPart, fracPart := parts[0], parts[1]
		if intPart == "" && fracPart == "" {
			return false // bare "."
		}
		if intPart != "" && !allDigits(intPart) {
			return false
		}
		if fracPart != "" && !allDigits(fracPart) {
			return false
		}
	default:
		// no decimal point: only a float if an exponent is present,
		// otherwise this is an integer literal (checked earlier).
		if !hasExp || !allDigits(beforeExp) {
			return false
		}
	}

	if hasExp {
		e := exp
		if e != "" && (e[0] == '+' || e[0] == '-') {
			e = e[1:]
		}
		if !allDigits(e) {
			return false
		}
	}
	return true
}

// isValidSymbol implements the symbol grammar.
func isValidSymbol(s string) bool {
	if s == "" {
		return false
	}
	if s == "/" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !isSymbolChar(s[i]) {
			return false
		}
	}
	c0 := s[0]
	if c0 >= '0' && c0 <= '9' {
		return false
	}
	if c0 == ':' || c0 == '#' {
		return false
	}
	if (c0 == '+' || c0 == '-' || c0 == '.') && len(s) > 1 && isDigitByte(s[1]) {
		return false
	}
	if strings.Count(s, "/") > 1 {
		return false
	}
	return true
}

func isSymbolChar(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '.', '*', '+', '!', '-', '_', '?', '$', '%', '&', '=', ':', '#', '/', '>', '<', ';':
		return true
	}
	return false
}
