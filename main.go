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
/*
	edncc - a just-in-time compiler front-end for a small, statically-typed,
	S-expression-based language, backed by LLVM.
*/
package main

import "os"
import "fmt"
import "flag"
import "github.com/launix-de/edncc/edn"

// arrayFlags allows -f to be repeated on the command line.
type arrayFlags []string

func (i *arrayFlags) String() string {
	return "dummy"
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func main() {
	var filenames arrayFlags
	flag.Var(&filenames, "f", "Source file to compile and run (repeatable; only the first is executed)")
	flag.Var(&filenames, "filename", "alias for -f")

	quiet := flag.Bool("q", false, "Suppress the generated backend IR dump (printed by default)")
	debug := flag.Bool("debug", false, "Capture compiler-site provenance in diagnostics")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: edncc -f FILE [-q] [-debug]")
		fmt.Fprintln(os.Stderr, "       edncc -repl")
		fmt.Fprintln(os.Stderr, "       edncc -watch -f FILE")
		flag.PrintDefaults()
	}

	repl := flag.Bool("repl", false, "Start an interactive read-eval-print loop instead of running a file")
	watch := flag.Bool("watch", false, "Recompile and rerun -f FILE whenever it changes on disk")

	flag.Parse()

	edn.Debug = *debug
	driver := edn.NewDriver()
	driver.Verbose = !*quiet

	if *repl {
		if err := driver.REPL(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if len(filenames) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	filename := filenames[0]

	if *watch {
		if err := driver.Watch(filename); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	result, err := driver.Run(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(edn.FormatResult(result))
}
