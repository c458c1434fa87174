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
	"fmt"

	"tinygo.org/x/go-llvm"
)

// JIT wraps the single slice of llvm.ExecutionEngine this compiler needs:
// register a completed module, look up a symbol, and invoke a zero-argument
// double-returning function by name.
type JIT struct {
	engine llvm.ExecutionEngine
}

// NewJIT registers mod with a fresh MCJIT execution engine. Registration
// failure is a backend error (category 4), reported with the JIT's own
// message and no source position.
func NewJIT(mod llvm.Module) (*JIT, error) {
	engine, err := llvm.NewExecutionEngine(mod)
	if err != nil {
		return nil, fmt.Errorf("jit registration failed: %w", err)
	}
	return &JIT{engine: engine}, nil
}

// RunEntry looks up name and invokes it as a "double (*)()" function,
// returning its float64 result.
func (j *JIT) RunEntry(name string) (float64, error) {
	fn := j.engine.FindFunction(name)
	if fn.IsNil() {
		return 0, fmt.Errorf("symbol lookup failed: %s", name)
	}
	result := j.engine.RunFunction(fn, nil)
	return result.Float(llvm.DoubleType()), nil
}

func (j *JIT) Dispose() {
	j.engine.Dispose()
}
