/*
Copyright © 2026 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/

// Command tinylox is a thin front end around package vm: it reads a
// source file (or a line-oriented REPL from stdin), runs it through a
// single VM, and maps the result to a process exit code. All the
// interesting work happens in the packages it calls.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/pdxjjb/tinylox/compiler"
	"github.com/pdxjjb/tinylox/vm"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-debug] [-tracecompile] [path]\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(64)
}

func main() {
	debug := flag.Bool("debug", false, "trace VM instruction dispatch")
	traceCompile := flag.Bool("tracecompile", false, "trace compiler output")
	flag.Usage = usage
	flag.Parse()

	vm.Debug = *debug
	compiler.Debug = *traceCompile

	args := flag.Args()
	switch len(args) {
	case 0:
		repl()
	case 1:
		runFile(args[0])
	default:
		usage()
	}
}

func repl() {
	v := vm.MakeVM()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		v.Interpret(scanner.Text())
	}
}

// runFile executes one file with a fresh VM and exits 65 for a compile
// error, 70 for a runtime error, 0 otherwise (the sysexits conventions).
func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(74)
	}

	v := vm.MakeVM()
	switch v.Interpret(string(source)) {
	case vm.CompileError:
		os.Exit(65)
	case vm.RuntimeError:
		os.Exit(70)
	default:
		os.Exit(0)
	}
}
