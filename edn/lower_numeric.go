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
	"strconv"
	"strings"

	"tinygo.org/x/go-llvm"
)

func trimIntSuffix(s string) string {
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case 'N', 'M':
		return s[:len(s)-1]
	}
	return s
}

func trimFloatSuffix(s string) string {
	if strings.HasSuffix(s, "M") {
		return s[:len(s)-1]
	}
	return s
}

func parseIntLiteralValue(source string, n Node) int64 {
	v, err := strconv.ParseInt(trimIntSuffix(n.Text), 10, 64)
	if err != nil {
		fail(source, n, "invalid integer literal %q", n.Text)
	}
	return v
}

func parseFloatLiteralValue(source string, n Node) float64 {
	v, err := strconv.ParseFloat(trimFloatSuffix(n.Text), 64)
	if err != nil {
		fail(source, n, "invalid float literal %q", n.Text)
	}
	return v
}

func isFloatKind(t llvm.Type) bool {
	switch t.TypeKind() {
	case llvm.FloatTypeKind, llvm.DoubleTypeKind:
		return true
	}
	return false
}

func isIntKind(t llvm.Type) bool { return t.TypeKind() == llvm.IntegerTypeKind }

func isPointerKind(t llvm.Type) bool { return t.TypeKind() == llvm.PointerTypeKind }

// toDouble widens/converts v to float64, used to join cond's branch values
// and a floating comparison's boolean result into one numeric type.
func toDouble(ctx *Ctx, v llvm.Value) llvm.Value {
	t := v.Type()
	if t.TypeKind() == llvm.DoubleTypeKind {
		return v
	}
	if t.TypeKind() == llvm.FloatTypeKind {
		return ctx.Builder.CreateFPExt(v, llvm.DoubleType(), "")
	}
	return ctx.Builder.CreateSIToFP(v, llvm.DoubleType(), "")
}

// toBool reduces a numeric value to a one-bit condition: an i1 is used
// as-is, any other integer is compared against zero, and a float is
// compared against 0.0 with an ordered not-equal.
func toBool(ctx *Ctx, v llvm.Value) llvm.Value {
	t := v.Type()
	if t.TypeKind() == llvm.IntegerTypeKind {
		if t.IntTypeWidth() == 1 {
			return v
		}
		return ctx.Builder.CreateICmp(llvm.IntNE, v, llvm.ConstInt(t, 0, false), "")
	}
	return ctx.Builder.CreateFCmp(llvm.FloatONE, v, llvm.ConstFloat(t, 0), "")
}

// coerceValue converts v to wantType according to wantTag's numeric family:
// int<->float via signed conversion, same-family width adjusted via a
// signed extend/truncate. Pointer and struct values are passed through
// unchanged; the caller is responsible for checking those match exactly.
func coerceValue(ctx *Ctx, v llvm.Value, wantType llvm.Type, wantTag string) llvm.Value {
	vt := v.Type()
	if vt == wantType {
		return v
	}
	if IsFloatTag(wantTag) {
		if isIntKind(vt) {
			return ctx.Builder.CreateSIToFP(v, wantType, "")
		}
		if vt.TypeKind() == llvm.FloatTypeKind && wantType.TypeKind() == llvm.DoubleTypeKind {
			return ctx.Builder.CreateFPExt(v, wantType, "")
		}
		if vt.TypeKind() == llvm.DoubleTypeKind && wantType.TypeKind() == llvm.FloatTypeKind {
			return ctx.Builder.CreateFPTrunc(v, wantType, "")
		}
		return v
	}
	if IsIntTag(wantTag) {
		if isFloatKind(vt) {
			return ctx.Builder.CreateFPToSI(v, wantType, "")
		}
		if isIntKind(vt) {
			srcWidth, dstWidth := vt.IntTypeWidth(), wantType.IntTypeWidth()
			switch {
			case dstWidth > srcWidth:
				return ctx.Builder.CreateSExt(v, wantType, "")
			case dstWidth < srcWidth:
				return ctx.Builder.CreateTrunc(v, wantType, "")
			}
		}
		return v
	}
	return v
}

func isLiteralNode(n Node) bool { return n.Kind == KindInt || n.Kind == KindFloat }

func stripColon(s string) string {
	if strings.HasPrefix(s, ":") {
		return s[1:]
	}
	return s
}
