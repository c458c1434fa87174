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

import "tinygo.org/x/go-llvm"

// lowerBinOp lowers one of + - * / == != < <= > >=. If either operand's
// lowered value is a float, both operands are widened to float64 and the
// float instruction family is used; comparisons in that path are further
// converted to float64 so the expression's value stays numeric. Otherwise
// both operands are integers: they're widened (via signed extend) to the
// larger of the two widths and the integer instruction family is used;
// comparisons in that path return their native i1 boolean result.
func lowerBinOp(ctx *Ctx, n Node, op string) llvm.Value {
	if len(n.Children) != 3 {
		fail(ctx.Source, n, "%s requires exactly two operands", op)
	}
	a := Lower(ctx, n.Children[1])
	b := Lower(ctx, n.Children[2])

	if isFloatKind(a.Type()) || isFloatKind(b.Type()) {
		a, b = toDouble(ctx, a), toDouble(ctx, b)
		switch op {
		case "+":
			return ctx.Builder.CreateFAdd(a, b, "")
		case "-":
			return ctx.Builder.CreateFSub(a, b, "")
		case "*":
			return ctx.Builder.CreateFMul(a, b, "")
		case "/":
			return ctx.Builder.CreateFDiv(a, b, "")
		}
		var pred llvm.FloatPredicate
		switch op {
		case "==":
			pred = llvm.FloatOEQ
		case "!=":
			pred = llvm.FloatONE
		case "<":
			pred = llvm.FloatOLT
		case "<=":
			pred = llvm.FloatOLE
		case ">":
			pred = llvm.FloatOGT
		case ">=":
			pred = llvm.FloatOGE
		default:
			fail(ctx.Source, n, "unknown operator %s", op)
		}
		cmp := ctx.Builder.CreateFCmp(pred, a, b, "")
		return ctx.Builder.CreateUIToFP(cmp, llvm.DoubleType(), "")
	}

	width := a.Type().IntTypeWidth()
	if bw := b.Type().IntTypeWidth(); bw > width {
		width = bw
	}
	wide := llvm.IntType(width)
	if a.Type().IntTypeWidth() < width {
		a = ctx.Builder.CreateSExt(a, wide, "")
	}
	if b.Type().IntTypeWidth() < width {
		b = ctx.Builder.CreateSExt(b, wide, "")
	}
	switch op {
	case "+":
		return ctx.Builder.CreateAdd(a, b, "")
	case "-":
		return ctx.Builder.CreateSub(a, b, "")
	case "*":
		return ctx.Builder.CreateMul(a, b, "")
	case "/":
		return ctx.Builder.CreateSDiv(a, b, "")
	}
	var pred llvm.IntPredicate
	switch op {
	case "==":
		pred = llvm.IntEQ
	case "!=":
		pred = llvm.IntNE
	case "<":
		pred = llvm.IntSLT
	case "<=":
		pred = llvm.IntSLE
	case ">":
		pred = llvm.IntSGT
	case ">=":
		pred = llvm.IntSGE
	default:
		fail(ctx.Source, n, "unknown operator %s", op)
	}
	return ctx.Builder.CreateICmp(pred, a, b, "")
}
