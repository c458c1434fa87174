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

// Print renders n in canonical single-line mode, used for the offending
// fragment of a diagnostic.
func Print(n Node) string {
	var b strings.Builder
	print1(&b, n)
	return b.String()
}

func print1(b *strings.Builder, n Node) {
	switch n.Kind {
	case KindNil:
		b.WriteString("nil")
	case KindBool, KindInt, KindFloat, KindSymbol, KindKeyword, KindChar:
		b.WriteString(n.Text)
	case KindString:
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(n.Text))
		b.WriteByte('"')
	case KindList:
		printSeq(b, "(", ")", n.Children)
	case KindVector:
		printSeq(b, "[", "]", n.Children)
	case KindMap:
		printSeq(b, "{", "}", n.Children)
	case KindSet:
		b.WriteString("#")
		printSeq(b, "{", "}", n.Children)
	case KindDiscard:
		b.WriteString("#_")
		if len(n.Children) > 0 {
			print1(b, n.Children[0])
		}
	case KindTagged:
		b.WriteString("#")
		if len(n.Children) > 0 {
			b.WriteString(n.Children[0].Text)
		}
		if len(n.Children) > 1 {
			b.WriteByte(' ')
			print1(b, n.Children[1])
		}
	default:
		b.WriteString("?")
	}
}

func printSeq(b *strings.Builder, open, close string, children []Node) {
	b.WriteString(open)
	for i, c := range children {
		if i > 0 {
			b.WriteByte(' ')
		}
		print1(b, c)
	}
	b.WriteString(close)
}
