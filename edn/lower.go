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

// Ctx carries everything a lowering call needs: the module being built, the
// builder's current insertion point, the function currently being emitted
// into (so special forms can add basic blocks to it), and the environment
// and type registry shared across the whole compile.
type Ctx struct {
	Source  string
	Module  llvm.Module
	Builder llvm.Builder
	Env     *Env
	Types   *TypeRegistry
	Fn      llvm.Value
}

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

// Lower dispatches a single node to backend IR and returns its value. List
// nodes with no useful result (defn, struct, =, put) return a nil (zero)
// llvm.Value; callers that need a value (binary operands, call arguments,
// cond/while tests) never hand those forms to Lower in value position.
func Lower(ctx *Ctx, n Node) llvm.Value {
	switch n.Kind {
	case KindInt:
		return lowerInt(ctx, n)
	case KindFloat:
		return lowerFloat(ctx, n)
	case KindSymbol:
		return lowerSymbol(ctx, n)
	case KindList:
		return lowerList(ctx, n)
	}
	fail(ctx.Source, n, "value expected, found %s", n.Kind)
	panic("unreachable")
}

func lowerInt(ctx *Ctx, n Node) llvm.Value {
	tag := "int32"
	if t, ok := n.MetaType(); ok {
		tag = t
	}
	return llvm.ConstInt(ctx.Types.LLVMType(ctx.Source, n, tag), uint64(parseIntLiteralValue(ctx.Source, n)), true)
}

func lowerFloat(ctx *Ctx, n Node) llvm.Value {
	tag := "float64"
	if t, ok := n.MetaType(); ok {
		tag = t
	}
	return llvm.ConstFloat(ctx.Types.LLVMType(ctx.Source, n, tag), parseFloatLiteralValue(ctx.Source, n))
}

// lowerSymbol resolves a variable reference. "else" is a reserved truthy
// literal usable as a cond test, independent of any binding.
func lowerSymbol(ctx *Ctx, n Node) llvm.Value {
	if n.Text == "else" {
		return llvm.ConstInt(llvm.Int32Type(), 1, true)
	}
	b, ok := ctx.Env.Current.Find(n.Text)
	if !ok {
		fail(ctx.Source, n, "unknown variable %s", n.Text)
	}
	if b.Direct {
		return b.Slot
	}
	return ctx.Builder.CreateLoad(ctx.Types.LLVMType(ctx.Source, n, b.Type), b.Slot, "")
}

// lowerList dispatches a compound form: a bare sequence of forms evaluated
// in order for their last value, one of the fixed special forms, a binary
// operator, or a call to a previously-defined function.
func lowerList(ctx *Ctx, n Node) llvm.Value {
	if len(n.Children) == 0 {
		return llvm.Value{}
	}
	if n.IsSeqOnly() {
		var last llvm.Value
		for _, c := range n.Children {
			last = Lower(ctx, c)
		}
		return last
	}
	head := n.Children[0]
	if head.Kind != KindSymbol {
		fail(ctx.Source, n, "expected a symbol in call position")
	}
	var result llvm.Value
	switch head.Text {
	case "defn":
		withFrame("defn", func() { result = lowerDefn(ctx, n) })
		return result
	case "struct":
		withFrame("struct", func() { result = lowerStruct(ctx, n) })
		return result
	case "=":
		withFrame("=", func() { result = lowerAssign(ctx, n) })
		return result
	case "put":
		withFrame("put", func() { result = lowerPut(ctx, n) })
		return result
	case "ref":
		withFrame("ref", func() { result = lowerRef(ctx, n) })
		return result
	case "deref":
		withFrame("deref", func() { result = lowerDeref(ctx, n) })
		return result
	case "cond":
		withFrame("cond", func() { result = lowerCond(ctx, n) })
		return result
	case "while":
		withFrame("while", func() { result = lowerWhile(ctx, n) })
		return result
	case ".":
		withFrame(".", func() {
			addr, fieldType := lowerFieldAddr(ctx, n)
			result = ctx.Builder.CreateLoad(ctx.Types.LLVMType(ctx.Source, n, fieldType), addr, "")
		})
		return result
	}
	if binaryOps[head.Text] {
		withFrame(head.Text, func() { result = lowerBinOp(ctx, n, head.Text) })
		return result
	}
	if _, ok := ctx.Env.LookupFunc(head.Text); ok {
		withFrame("call:"+head.Text, func() { result = lowerCall(ctx, n, head.Text) })
		return result
	}
	fail(ctx.Source, n, "unknown function %s", head.Text)
	panic("unreachable")
}
