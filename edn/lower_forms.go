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

// lowerDefn records a function definition without emitting any backend IR;
// the body is only lowered on the function's first call.
func lowerDefn(ctx *Ctx, n Node) llvm.Value {
	if len(n.Children) < 4 {
		fail(ctx.Source, n, "defn requires a return type, a name, and a parameter list")
	}
	retTypeNode := n.Children[1]
	if retTypeNode.Kind != KindKeyword {
		fail(ctx.Source, retTypeNode, "defn return type must be a keyword")
	}
	nameNode := n.Children[2]
	if nameNode.Kind != KindSymbol {
		fail(ctx.Source, nameNode, "defn name must be a symbol")
	}
	paramsNode := n.Children[3]
	if paramsNode.Kind != KindList {
		fail(ctx.Source, paramsNode, "defn parameter list must be a list")
	}

	params := make([]FieldDef, 0, len(paramsNode.Children))
	for _, p := range paramsNode.Children {
		switch p.Kind {
		case KindSymbol:
			params = append(params, FieldDef{Name: p.Text, Type: "int32"})
		case KindList:
			if len(p.Children) != 2 || p.Children[0].Kind != KindSymbol || p.Children[1].Kind != KindKeyword {
				fail(ctx.Source, p, "malformed typed parameter")
			}
			params = append(params, FieldDef{Name: p.Children[0].Text, Type: stripColon(p.Children[1].Text)})
		default:
			fail(ctx.Source, p, "parameter must be a symbol or a (symbol :type) pair")
		}
	}

	ctx.Env.DefineFunc(&FuncDef{
		Name:       nameNode.Text,
		ReturnType: stripColon(retTypeNode.Text),
		Params:     params,
		Body:       n.Children[4:],
		DeclNode:   n,
	})
	return llvm.Value{}
}

// lowerStruct registers a struct type: its fields are not themselves
// lowered, only read as (symbol :type) pairs.
func lowerStruct(ctx *Ctx, n Node) llvm.Value {
	if len(n.Children) != 3 {
		fail(ctx.Source, n, "struct requires a name and a field list")
	}
	nameNode, fieldsNode := n.Children[1], n.Children[2]
	if nameNode.Kind != KindSymbol {
		fail(ctx.Source, nameNode, "struct name must be a symbol")
	}
	if fieldsNode.Kind != KindList {
		fail(ctx.Source, fieldsNode, "struct field list must be a list")
	}
	fields := make([]FieldDef, 0, len(fieldsNode.Children))
	for _, f := range fieldsNode.Children {
		if f.Kind != KindList || len(f.Children) != 2 || f.Children[0].Kind != KindSymbol || f.Children[1].Kind != KindKeyword {
			fail(ctx.Source, f, "struct field must be a (symbol :type) pair")
		}
		fields = append(fields, FieldDef{Name: f.Children[0].Text, Type: stripColon(f.Children[1].Text)})
	}
	ctx.Types.RegisterStruct(ctx.Source, n, nameNode.Text, fields)
	return llvm.Value{}
}

// lowerAssign implements the three shapes of "=": a 4-child typed
// assignment/declaration, a 3-child struct construction (symbol target),
// and a 3-child struct field store (list target).
func lowerAssign(ctx *Ctx, n Node) llvm.Value {
	switch len(n.Children) {
	case 3:
		return lowerAssign3(ctx, n)
	case 4:
		return lowerAssign4(ctx, n)
	}
	fail(ctx.Source, n, "= requires 3 or 4 arguments")
	panic("unreachable")
}

func lowerAssign3(ctx *Ctx, n Node) llvm.Value {
	target, second := n.Children[1], n.Children[2]
	switch target.Kind {
	case KindSymbol:
		return lowerStructConstruct(ctx, n, target, second)
	case KindList:
		if len(target.Children) != 3 || target.Children[0].Kind != KindSymbol || target.Children[0].Text != "." {
			fail(ctx.Source, target, "3-argument = list target must be a (. target :field) form")
		}
		addr, fieldType := lowerFieldAddr(ctx, target)
		val := Lower(ctx, second)
		want := ctx.Types.LLVMType(ctx.Source, n, fieldType)
		if val.Type() != want {
			fail(ctx.Source, n, "field %s expects type %s", target.Children[2].Text, fieldType)
		}
		ctx.Builder.CreateStore(val, addr)
		return llvm.Value{}
	}
	fail(ctx.Source, target, "= target must be a symbol or a field-access list")
	panic("unreachable")
}

func lowerStructConstruct(ctx *Ctx, n, target, payload Node) llvm.Value {
	if payload.Kind != KindList || len(payload.Children) != 2 ||
		payload.Children[0].Kind != KindSymbol || payload.Children[1].Kind != KindList {
		fail(ctx.Source, payload, "struct construction must be (StructName (value...))")
	}
	structName := payload.Children[0].Text
	def, ok := ctx.Types.Struct(structName)
	if !ok {
		fail(ctx.Source, payload, "unknown struct type %s", structName)
	}
	values := payload.Children[1].Children
	if len(values) != len(def.Fields) {
		fail(ctx.Source, payload, "%s expects %d field values, got %d", structName, len(def.Fields), len(values))
	}
	structType := ctx.Types.LLVMType(ctx.Source, n, structName)
	slot := ctx.Builder.CreateAlloca(structType, target.Text)
	for i, v := range values {
		field := def.Fields[i]
		vn := v
		if isLiteralNode(vn) {
			vn = vn.WithMeta("type", field.Type)
		}
		val := Lower(ctx, vn)
		val = coerceValue(ctx, val, ctx.Types.LLVMType(ctx.Source, n, field.Type), field.Type)
		addr := ctx.Builder.CreateStructGEP(structType, slot, i, "")
		ctx.Builder.CreateStore(val, addr)
	}
	ctx.Env.Current.Define(target.Text, Binding{Slot: slot, Type: structName})
	return llvm.Value{}
}

func lowerAssign4(ctx *Ctx, n Node) llvm.Value {
	target, typeNode, valueNode := n.Children[1], n.Children[2], n.Children[3]
	if typeNode.Kind != KindKeyword {
		fail(ctx.Source, typeNode, "= declared type must be a keyword")
	}
	declaredType := stripColon(typeNode.Text)
	if isLiteralNode(valueNode) {
		valueNode = valueNode.WithMeta("type", declaredType)
	}
	val := Lower(ctx, valueNode)
	wantType := ctx.Types.LLVMType(ctx.Source, n, declaredType)
	val = coerceValue(ctx, val, wantType, declaredType)

	switch target.Kind {
	case KindSymbol:
		b, exists := ctx.Env.Current.Find(target.Text)
		if !exists {
			slot := ctx.Builder.CreateAlloca(wantType, target.Text)
			b = Binding{Slot: slot, Type: declaredType}
			ctx.Env.Current.Define(target.Text, b)
		}
		ctx.Builder.CreateStore(val, b.Slot)
	case KindList:
		ptr := lowerPointerTarget(ctx, target)
		ctx.Builder.CreateStore(val, ptr)
	default:
		fail(ctx.Source, target, "= target must be a symbol or a pointer-valued list")
	}
	return llvm.Value{}
}

// lowerPut stores a value through a pointer: target may be a symbol bound to
// a pointer type, or any list expression whose lowered value is a pointer.
func lowerPut(ctx *Ctx, n Node) llvm.Value {
	if len(n.Children) != 4 {
		fail(ctx.Source, n, "put requires a target, a type, and a value")
	}
	target, typeNode, valueNode := n.Children[1], n.Children[2], n.Children[3]
	if typeNode.Kind != KindKeyword {
		fail(ctx.Source, typeNode, "put type must be a keyword")
	}
	pointeeType := stripColon(typeNode.Text)
	ptr := lowerPointerTarget(ctx, target)
	if isLiteralNode(valueNode) {
		valueNode = valueNode.WithMeta("type", pointeeType)
	}
	val := Lower(ctx, valueNode)
	val = coerceValue(ctx, val, ctx.Types.LLVMType(ctx.Source, n, pointeeType), pointeeType)
	ctx.Builder.CreateStore(val, ptr)
	return llvm.Value{}
}

// lowerPointerTarget lowers n as an ordinary value and requires the result
// to be pointer-typed, the common case behind both put's target and a
// 4-argument ='s list-shaped target.
func lowerPointerTarget(ctx *Ctx, n Node) llvm.Value {
	v := Lower(ctx, n)
	if !isPointerKind(v.Type()) {
		fail(ctx.Source, n, "expected a pointer value")
	}
	return v
}

// lowerRef yields the storage slot of a bound symbol as a pointer value,
// without loading through it.
func lowerRef(ctx *Ctx, n Node) llvm.Value {
	if len(n.Children) != 2 || n.Children[1].Kind != KindSymbol {
		fail(ctx.Source, n, "ref requires a single symbol argument")
	}
	sym := n.Children[1]
	b, ok := ctx.Env.Current.Find(sym.Text)
	if !ok {
		fail(ctx.Source, sym, "unknown variable %s", sym.Text)
	}
	return b.Slot
}

// lowerDeref loads through a pointer. The pointee type is the operand's
// declared type with one "*" stripped, defaulting to int32 when the operand
// isn't a plain bound symbol.
func lowerDeref(ctx *Ctx, n Node) llvm.Value {
	if len(n.Children) != 2 {
		fail(ctx.Source, n, "deref requires a single argument")
	}
	operand := n.Children[1]
	ptr := Lower(ctx, operand)
	pointee := "int32"
	if operand.Kind == KindSymbol {
		if b, ok := ctx.Env.Current.Find(operand.Text); ok {
			pointee = Deref(b.Type)
		}
	}
	return ctx.Builder.CreateLoad(ctx.Types.LLVMType(ctx.Source, n, pointee), ptr, "")
}

// lowerFieldAddr resolves a (. target :field) form to the field's address
// and declared type, shared by field load and field-store lowering.
func lowerFieldAddr(ctx *Ctx, n Node) (llvm.Value, string) {
	if len(n.Children) != 3 {
		fail(ctx.Source, n, ". requires a target and a field keyword")
	}
	targetNode, fieldNode := n.Children[1], n.Children[2]
	if fieldNode.Kind != KindKeyword {
		fail(ctx.Source, fieldNode, "field name must be a keyword")
	}
	if targetNode.Kind != KindSymbol {
		fail(ctx.Source, targetNode, "field access target must be a symbol")
	}
	b, ok := ctx.Env.Current.Find(targetNode.Text)
	if !ok {
		fail(ctx.Source, targetNode, "unknown variable %s", targetNode.Text)
	}
	def, ok := ctx.Types.Struct(b.Type)
	if !ok {
		fail(ctx.Source, targetNode, "%s is not a struct value", targetNode.Text)
	}
	fieldName := stripColon(fieldNode.Text)
	idx, field, ok := def.FieldIndex(fieldName)
	if !ok {
		fail(ctx.Source, fieldNode, "%s has no field %s", b.Type, fieldName)
	}
	structType := ctx.Types.LLVMType(ctx.Source, n, b.Type)
	addr := ctx.Builder.CreateStructGEP(structType, b.Slot, idx, "")
	return addr, field.Type
}

// lowerCond chains conditional branches into a join block whose phi value is
// float64: every reachable clause's value is coerced up to that type so the
// result stays numeric regardless of which clause fired.
func lowerCond(ctx *Ctx, n Node) llvm.Value {
	clauses := n.Children[1:]
	if len(clauses) == 0 {
		fail(ctx.Source, n, "cond requires at least one clause")
	}
	join := llvm.AddBasicBlock(ctx.Fn, "cond.join")

	var incomingVals []llvm.Value
	var incomingBlocks []llvm.BasicBlock
	terminated := false

	for _, clause := range clauses {
		if terminated {
			fail(ctx.Source, clause, "unreachable cond clause after an unconditional one")
		}
		switch len(clause.Children) {
		case 1:
			val := toDouble(ctx, Lower(ctx, clause.Children[0]))
			ctx.Builder.CreateBr(join)
			incomingVals = append(incomingVals, val)
			incomingBlocks = append(incomingBlocks, ctx.Builder.GetInsertBlock())
			terminated = true
		case 2:
			test, expr := clause.Children[0], clause.Children[1]
			if test.Kind == KindSymbol && test.Text == "else" {
				val := toDouble(ctx, Lower(ctx, expr))
				ctx.Builder.CreateBr(join)
				incomingVals = append(incomingVals, val)
				incomingBlocks = append(incomingBlocks, ctx.Builder.GetInsertBlock())
				terminated = true
				continue
			}
			cond := toBool(ctx, Lower(ctx, test))
			thenBB := llvm.AddBasicBlock(ctx.Fn, "cond.then")
			elseBB := llvm.AddBasicBlock(ctx.Fn, "cond.else")
			ctx.Builder.CreateCondBr(cond, thenBB, elseBB)

			ctx.Builder.SetInsertPointAtEnd(thenBB)
			val := toDouble(ctx, Lower(ctx, expr))
			ctx.Builder.CreateBr(join)
			incomingVals = append(incomingVals, val)
			incomingBlocks = append(incomingBlocks, ctx.Builder.GetInsertBlock())

			ctx.Builder.SetInsertPointAtEnd(elseBB)
		default:
			fail(ctx.Source, clause, "cond clause must be (test expr) or (expr)")
		}
	}
	if !terminated {
		// fell through every conditional clause with no else: default to 0.0
		ctx.Builder.CreateBr(join)
		incomingVals = append(incomingVals, llvm.ConstFloat(llvm.DoubleType(), 0))
		incomingBlocks = append(incomingBlocks, ctx.Builder.GetInsertBlock())
	}

	ctx.Builder.SetInsertPointAtEnd(join)
	phi := ctx.Builder.CreatePHI(llvm.DoubleType(), "cond.val")
	phi.AddIncoming(incomingVals, incomingBlocks)
	return phi
}

// lowerWhile loops while its test is truthy, re-evaluating the test after
// every iteration of the body. Its own value is always 0.0.
func lowerWhile(ctx *Ctx, n Node) llvm.Value {
	if len(n.Children) != 3 {
		fail(ctx.Source, n, "while requires a test and a body")
	}
	testNode, bodyNode := n.Children[1], n.Children[2]

	condBB := llvm.AddBasicBlock(ctx.Fn, "while.cond")
	bodyBB := llvm.AddBasicBlock(ctx.Fn, "while.body")
	afterBB := llvm.AddBasicBlock(ctx.Fn, "while.after")

	ctx.Builder.CreateBr(condBB)
	ctx.Builder.SetInsertPointAtEnd(condBB)
	cond := toBool(ctx, Lower(ctx, testNode))
	ctx.Builder.CreateCondBr(cond, bodyBB, afterBB)

	ctx.Builder.SetInsertPointAtEnd(bodyBB)
	Lower(ctx, bodyNode)
	ctx.Builder.CreateBr(condBB)

	ctx.Builder.SetInsertPointAtEnd(afterBB)
	return llvm.ConstFloat(llvm.DoubleType(), 0)
}
