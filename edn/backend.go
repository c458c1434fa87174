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
	"sync"

	"github.com/google/uuid"
	"tinygo.org/x/go-llvm"
)

var nativeTargetOnce sync.Once

func initNativeTarget() {
	nativeTargetOnce.Do(func() {
		llvm.InitializeNativeTarget()
		llvm.InitializeNativeAsmPrinter()
		llvm.LinkInMCJIT()
	})
}

// Backend owns one compile's module and builder, plus the environment and
// type registry they were built against. A one-shot or -watch run gives it a
// fresh Env/TypeRegistry every time (NewBackend); a REPL session instead
// hands it the same Env/TypeRegistry across every line (NewBackendWithEnv),
// so a struct or function defined on one line, or a variable assigned on
// one line, is still visible on the next.
type Backend struct {
	Module llvm.Module
	Ctx    *Ctx
}

// NewBackend allocates a fresh module against a fresh environment and type
// registry. The module name carries a uuid suffix, so successive compiles in
// the same process get distinct module names.
func NewBackend(source string) *Backend {
	return NewBackendWithEnv(source, NewEnv(), NewTypeRegistry())
}

// NewBackendWithEnv allocates a fresh module, but lowers against the given
// env/types instead of empty ones, letting a caller (the REPL driver) carry
// definitions and variable bindings across repeated calls that each still
// get their own llvm.Module/Builder.
func NewBackendWithEnv(source string, env *Env, types *TypeRegistry) *Backend {
	initNativeTarget()
	// functions emitted for an earlier module are not callable from this
	// one; each is lowered again on its first call here
	env.emitted = make(map[string]emittedFunc)
	name := "edncc-" + uuid.NewString()
	mod := llvm.NewModule(name)
	builder := llvm.NewContext().NewBuilder()
	return &Backend{
		Module: mod,
		Ctx: &Ctx{
			Source:  source,
			Module:  mod,
			Builder: builder,
			Env:     env,
			Types:   types,
		},
	}
}

func (b *Backend) Dispose() {
	b.Ctx.Builder.Dispose()
	b.Module.Dispose()
}
