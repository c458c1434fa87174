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
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/dc0d/onexit"
	units "github.com/docker/go-units"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"tinygo.org/x/go-llvm"
)

// Driver runs one source file to completion: parse, lower, synthesize the
// entry function, submit to the JIT, invoke, report.
type Driver struct {
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer

	// Tag marks every Diagnostic and entry-function symbol from a REPL/watch
	// compile with a correlation id, so a multi-line session can tell which
	// compile a given error or JIT symbol belongs to.
	Tag bool

	// replEnv/replTypes are set once by REPL and reused by every RunSource
	// call it makes, so definitions and variables survive from one REPL
	// line to the next. One-shot Run/Watch calls leave these nil and get a
	// brand-new Env/TypeRegistry per compile from NewBackend.
	replEnv   *Env
	replTypes *TypeRegistry
}

func NewDriver() *Driver {
	return &Driver{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run compiles and executes filename once, returning the numeric result of
// the entry function. Any *Diagnostic panicked by the reader or lowerer is
// recovered here and turned into a returned error, matching the "first
// fatal error aborts the compile" rule.
func (d *Driver) Run(filename string) (result float64, err error) {
	src, readErr := os.ReadFile(filename)
	if readErr != nil {
		return 0, readErr
	}
	return d.RunSource(filename, string(src))
}

func (d *Driver) RunSource(source, text string) (result float64, err error) {
	id := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			if diag, ok := r.(*Diagnostic); ok {
				if d.Tag {
					diag.Correlation = id
				}
				err = diag
				return
			}
			panic(r)
		}
	}()

	tree := Parse(source, text)
	var backend *Backend
	if d.replEnv != nil {
		backend = NewBackendWithEnv(source, d.replEnv, d.replTypes)
	} else {
		backend = NewBackend(source)
	}
	defer backend.Dispose()

	entryName := "entry"
	if d.Tag {
		entryName = "entry_" + id
	}
	entryFn := d.buildEntry(backend, tree, entryName)

	if d.Verbose {
		ir := backend.Module.String()
		fmt.Fprintf(d.Stdout, "; %s of generated IR\n%s\n", units.HumanSize(float64(len(ir))), ir)
		backend.Ctx.Types.Each(func(s *StructDef) {
			fmt.Fprintf(d.Stdout, "; struct %s (%d fields)\n", s.Name, len(s.Fields))
		})
		backend.Ctx.Env.EachFunc(func(f *FuncDef) {
			fmt.Fprintf(d.Stdout, "; defn %s -> %s\n", f.Name, f.ReturnType)
		})
	}

	jit, jitErr := NewJIT(backend.Module)
	if jitErr != nil {
		return 0, jitErr
	}
	defer jit.Dispose()

	return jit.RunEntry(entryFn)
}

// buildEntry lowers the top-level tree inside a synthetic zero-argument
// float64-returning function. If lowering the top-level produced no value
// (e.g. the source is a single defn) and a "main" function was defined, its
// call result is returned instead; otherwise 0.0 is returned.
func (d *Driver) buildEntry(b *Backend, tree Node, entryName string) string {
	ctx := b.Ctx
	fnType := llvm.FunctionType(llvm.DoubleType(), nil, false)
	fn := llvm.AddFunction(b.Module, entryName, fnType)
	entry := llvm.AddBasicBlock(fn, "entry")
	ctx.Builder.SetInsertPointAtEnd(entry)
	ctx.Fn = fn

	top := Lower(ctx, tree)

	switch {
	case !top.IsNil():
		ctx.Builder.CreateRet(toDouble(ctx, top))
	default:
		if def, ok := ctx.Env.LookupFunc("main"); ok {
			mainFn, mainType, ok := ctx.Env.Emitted("main")
			if !ok {
				mainFn, mainType = emitFunction(ctx, def)
				ctx.Env.SetEmitted("main", mainFn, mainType)
			}
			call := ctx.Builder.CreateCall(mainType, mainFn, nil, "")
			if def.ReturnType == "void" {
				ctx.Builder.CreateRet(llvm.ConstFloat(llvm.DoubleType(), 0))
			} else {
				ctx.Builder.CreateRet(toDouble(ctx, call))
			}
		} else {
			ctx.Builder.CreateRet(llvm.ConstFloat(llvm.DoubleType(), 0))
		}
	}
	return entryName
}

// Watch recompiles and reruns filename every time it changes on disk, using
// fsnotify to wake on write events. It runs until an unrecoverable fsnotify
// setup error or the watcher channel closes.
func (d *Driver) Watch(filename string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filename); err != nil {
		return err
	}
	d.Tag = true

	run := func() {
		result, err := d.Run(filename)
		if err != nil {
			fmt.Fprintln(d.Stderr, err)
			return
		}
		fmt.Fprintln(d.Stdout, FormatResult(result))
	}
	run()
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				run()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(d.Stderr, werr)
		}
	}
}

// REPL reads successive forms from stdin (via chzyer/readline) and runs
// each one as its own compile against a shared Env/TypeRegistry, so a
// struct, function, or variable defined on one line stays visible on the
// next, echoing the numeric result or diagnostic.
func (d *Driver) REPL() error {
	const historyFile = ".edncc-history.tmp"
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "edncc> ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	onexit.Register(func() { os.Remove(historyFile) })
	rl.CaptureExitSignal()
	d.Tag = true
	d.replEnv = NewEnv()
	d.replTypes = NewTypeRegistry()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		result, err := d.RunSource("<repl>", line)
		if err != nil {
			fmt.Fprintln(d.Stderr, err)
			continue
		}
		fmt.Fprintln(d.Stdout, FormatResult(result))
	}
}

// FormatResult renders an entry function's float64 result the way the CLI
// prints it: as a bare integer when the value is whole, otherwise in %g.
func FormatResult(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
