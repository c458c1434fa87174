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
	"runtime"
	"strings"

	"github.com/jtolds/gls"
)

// Debug turns on compiler-site capture: every Diagnostic raised while
// Debug is true records the Go file:line that raised it, plus the chain of
// special-form handlers the lowerer was inside of at the time.
var Debug = false

var glsMgr = gls.NewContextManager()

const glsFramesKey = "edn.frames"

// withFrame pushes name onto the goroutine-local lowering call stack for the
// duration of fn. The lowerer itself never spawns goroutines, but gls keeps
// the breadcrumb trail keyed off the calling goroutine regardless, so nested
// handler frames compose naturally through ordinary recursive calls.
func withFrame(name string, fn func()) {
	if !Debug {
		fn()
		return
	}
	prev, _ := glsMgr.GetValue(glsFramesKey)
	frames, _ := prev.([]string)
	next := append(append([]string{}, frames...), name)
	glsMgr.SetValues(gls.Values{glsFramesKey: next}, fn)
}

func currentFrames() []string {
	v, ok := glsMgr.GetValue(glsFramesKey)
	if !ok {
		return nil
	}
	frames, _ := v.([]string)
	return frames
}

// Diagnostic is the sole error-reporting channel of the lowerer. It is always
// raised by panic, never returned as an error value.
type Diagnostic struct {
	Source      string // source file path
	Line        int
	Col         int
	Message     string
	Fragment    string // pretty-printed offending node, single-line mode
	Correlation string // compile id, set by the driver in REPL/watch mode

	// Debug-build provenance: which Go source line inside this compiler
	// raised the diagnostic, and the lowerer's handler call stack at that
	// point.
	CompilerFile string
	CompilerLine int
	Frames       []string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Correlation != "" {
		fmt.Fprintf(&b, "[%s] ", d.Correlation)
	}
	fmt.Fprintf(&b, "%s:%d:%d: %s", d.Source, d.Line, d.Col, d.Message)
	if d.Fragment != "" {
		fmt.Fprintf(&b, "\n  in: %s", d.Fragment)
	}
	if Debug && d.CompilerFile != "" {
		fmt.Fprintf(&b, "\n  (raised at %s:%d)", d.CompilerFile, d.CompilerLine)
		if len(d.Frames) > 0 {
			fmt.Fprintf(&b, "\n  (lowering: %s)", strings.Join(d.Frames, " > "))
		}
	}
	return b.String()
}

// fail raises a Diagnostic for node, formatted with the given message. It is
// the only way the lowerer signals a fatal error.
func fail(source string, n Node, format string, args ...any) {
	d := &Diagnostic{
		Source:   source,
		Line:     n.Line,
		Col:      n.Col,
		Message:  fmt.Sprintf(format, args...),
		Fragment: Print(n),
	}
	if Debug {
		if _, file, line, ok := runtime.Caller(1); ok {
			d.CompilerFile = file
			d.CompilerLine = line
		}
		d.Frames = currentFrames()
	}
	panic(d)
}

// failAt raises a Diagnostic not tied to a particular node (e.g. lex errors
// discovered before a Node exists).
func failAt(source string, line, col int, format string, args ...any) {
	d := &Diagnostic{Source: source, Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
	if Debug {
		if _, file, l, ok := runtime.Caller(1); ok {
			d.CompilerFile = file
			d.CompilerLine = l
		}
		d.Frames = currentFrames()
	}
	panic(d)
}
