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

// lowerCall emits a call to a previously-defined function, lowering its
// body on first use and reusing the cached llvm.Value on every call after
// that.
func lowerCall(ctx *Ctx, n Node, name string) llvm.Value {
	def, _ := ctx.Env.LookupFunc(name)
	fn, fnType, ok := ctx.Env.Emitted(name)
	if !ok {
		fn, fnType = emitFunction(ctx, def)
		ctx.Env.SetEmitted(name, fn, fnType)
	}

	args := n.Children[1:]
	if len(args) != len(def.Params) {
		fail(ctx.Source, n, "%s expects %d arguments, got %d", name, len(def.Params), len(args))
	}
	argVals := make([]llvm.Value, len(args))
	for i, a := range args {
		param := def.Params[i]
		an := a
		if isLiteralNode(an) {
			an = an.WithMeta("type", param.Type)
		}
		v := Lower(ctx, an)
		argVals[i] = coerceValue(ctx, v, ctx.Types.LLVMType(ctx.Source, n, param.Type), param.Type)
	}

	call := ctx.Builder.CreateCall(fnType, fn, argVals, "")
	if def.ReturnType == "void" {
		return llvm.Value{}
	}
	return call
}

// emitFunction lowers a recorded function definition into a standalone
// backend function: a fresh scope holds its parameters, pointer-typed
// parameters bind directly to the incoming argument (no local copy) while
// every other parameter gets its own stack slot, and the final body value
// is coerced to the declared return type.
func emitFunction(ctx *Ctx, def *FuncDef) (llvm.Value, llvm.Type) {
	paramTypes := make([]llvm.Type, len(def.Params))
	for i, p := range def.Params {
		paramTypes[i] = ctx.Types.LLVMType(ctx.Source, def.DeclNode, p.Type)
	}
	retType := ctx.Types.LLVMType(ctx.Source, def.DeclNode, def.ReturnType)
	fnType := llvm.FunctionType(retType, paramTypes, false)
	fn := llvm.AddFunction(ctx.Module, def.Name, fnType)

	savedBlock := ctx.Builder.GetInsertBlock()
	savedFn := ctx.Fn
	restoreScope := ctx.Env.PushScope()
	defer func() {
		restoreScope()
		ctx.Fn = savedFn
		if !savedBlock.IsNil() {
			ctx.Builder.SetInsertPointAtEnd(savedBlock)
		}
	}()

	entry := llvm.AddBasicBlock(fn, "entry")
	ctx.Builder.SetInsertPointAtEnd(entry)
	ctx.Fn = fn

	for i, p := range def.Params {
		arg := fn.Param(i)
		arg.SetName(p.Name)
		if IsPointer(p.Type) {
			ctx.Env.Current.Define(p.Name, Binding{Slot: arg, Type: p.Type, Direct: true})
			continue
		}
		slot := ctx.Builder.CreateAlloca(paramTypes[i], p.Name)
		ctx.Builder.CreateStore(arg, slot)
		ctx.Env.Current.Define(p.Name, Binding{Slot: slot, Type: p.Type})
	}

	var last llvm.Value
	for _, stmt := range def.Body {
		last = Lower(ctx, stmt)
	}

	switch {
	case def.ReturnType == "void":
		ctx.Builder.CreateRetVoid()
	case last.IsNil():
		ctx.Builder.CreateRet(llvm.ConstNull(retType))
	default:
		ctx.Builder.CreateRet(coerceValue(ctx, last, retType, def.ReturnType))
	}
	return fn, fnType
}
