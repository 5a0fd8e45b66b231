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

// Package vm implements the stack-based virtual machine that executes a
// chunk.Chunk: opcode dispatch, a fixed-capacity value stack, and
// runtime-error reporting against the chunk's RLE source-location
// tables. Dispatch is a single switch, with one helper per opcode
// family (binaryNumeric, binaryCompare).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/pdxjjb/tinylox/chunk"
	"github.com/pdxjjb/tinylox/compiler"
	"github.com/pdxjjb/tinylox/intern"
	"github.com/pdxjjb/tinylox/value"
)

// Debug gates per-instruction tracing.
var Debug = false

func trace(format string, args ...any) {
	if Debug {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// Result is the outcome of an Interpret call.
type Result int

const (
	Ok Result = iota
	CompileError
	RuntimeError
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "Ok"
	case CompileError:
		return "CompileError"
	case RuntimeError:
		return "RuntimeError"
	default:
		return "Result(?)"
	}
}

// StackMax bounds the value stack. 256 entries is ample for an
// expression-only instruction set, where stack depth tracks expression
// nesting rather than call depth.
const StackMax = 256

// VM is a single stack machine over one chunk at a time. It is an
// explicit per-interpreter value - including the intern table and
// object heap - rather than a package singleton, so nothing here needs
// synchronization and nothing prevents running more than one VM in a
// process.
type VM struct {
	chunk *chunk.Chunk
	ip    int

	stack    [StackMax]value.Value
	stackTop int

	Heap    value.Heap
	Interns *intern.Table

	// Out receives the Return opcode's printed value; Err receives
	// runtime-error diagnostics. Both default to the real streams but
	// are overridable (tests point them at buffers).
	Out io.Writer
	Err io.Writer
}

// MakeVM returns a ready-to-use VM with its own intern table and object
// heap, writing program output to stdout and diagnostics to stderr.
func MakeVM() *VM {
	return &VM{
		Interns: intern.MakeTable(),
		Out:     os.Stdout,
		Err:     os.Stderr,
	}
}

func (vm *VM) resetStack() { vm.stackTop = 0 }

// Interpret compiles source into a fresh chunk and, on success,
// executes it. Each call compiles into a fresh chunk; the VM keeps a
// reference to the last executed chunk until the next successful
// compile replaces it.
func (vm *VM) Interpret(source string) Result {
	var c chunk.Chunk
	if !compiler.Compile(source, &c) {
		return CompileError
	}

	vm.chunk = &c
	vm.ip = 0
	vm.resetStack()
	return vm.run()
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) push(v value.Value) {
	if vm.stackTop >= StackMax {
		// Overflow aborts the process rather than returning an error
		// the caller might ignore.
		fmt.Fprintln(vm.Err, "Stack overflow.")
		os.Exit(1)
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

// peek looks distance entries below the top of the stack without
// popping. The index arithmetic is signed, so a distance that would
// underflow is caught explicitly rather than wrapping around to a huge
// unsigned offset.
func (vm *VM) peek(distance int) (value.Value, bool) {
	idx := vm.stackTop - 1 - distance
	if idx < 0 || idx >= vm.stackTop {
		return value.Nil, false
	}
	return vm.stack[idx], true
}

// run executes the current chunk from IP 0 until a Return or a runtime
// error. An empty chunk returns Ok without entering the loop.
func (vm *VM) run() Result {
	if len(vm.chunk.Code) == 0 {
		return Ok
	}

	for {
		trace("ip=%d stackTop=%d", vm.ip, vm.stackTop)
		op := chunk.OpCode(vm.readByte())

		switch op {
		case chunk.OpNil:
			vm.push(value.Nil)
		case chunk.OpTrue:
			vm.push(value.Bool(true))
		case chunk.OpFalse:
			vm.push(value.Bool(false))

		case chunk.OpConstant:
			idx := int(vm.readByte())
			vm.push(vm.chunk.Constants[idx])
		case chunk.OpConstantLong:
			idx := vm.chunk.ReadConstantLong(vm.ip)
			vm.ip += 3
			vm.push(vm.chunk.Constants[idx])

		case chunk.OpNegate:
			v, ok := vm.peek(0)
			if !ok || v.Kind() != value.KindNumber {
				return vm.runtimeError("Only numbers can be negated.")
			}
			vm.pop()
			vm.push(value.Number(-v.AsNumber()))

		case chunk.OpNot:
			v, ok := vm.peek(0)
			if !ok || v.Kind() != value.KindBool {
				return vm.runtimeError("Only booleans can be negated.")
			}
			vm.pop()
			vm.push(value.Bool(!v.AsBool()))

		case chunk.OpAdd, chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if r, ok := vm.binaryNumeric(op); !ok {
				return r
			}

		case chunk.OpLess, chunk.OpLessEqual, chunk.OpGreater, chunk.OpGreaterEqual:
			if r, ok := vm.binaryCompare(op); !ok {
				return r
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case chunk.OpNotEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(!value.Equal(a, b)))

		case chunk.OpReturn:
			v := vm.pop()
			fmt.Fprintf(vm.Out, "%s\n", value.Print(v))
			return Ok

		default:
			return vm.runtimeError("Unknown opcode 0x%02X", byte(op))
		}
	}
}

// binaryNumeric implements Add/Subtract/Multiply/Divide. Operands pop in
// reverse order - the top of stack is the right-hand side - and the
// type check peeks both operands before popping, so the stack is intact
// if a runtime error is raised.
func (vm *VM) binaryNumeric(op chunk.OpCode) (Result, bool) {
	bv, ok0 := vm.peek(0)
	av, ok1 := vm.peek(1)
	if !ok0 || !ok1 || bv.Kind() != value.KindNumber || av.Kind() != value.KindNumber {
		return vm.runtimeError("Operands must be numbers"), false
	}
	b := vm.pop()
	a := vm.pop()

	var result float64
	switch op {
	case chunk.OpAdd:
		result = a.AsNumber() + b.AsNumber()
	case chunk.OpSubtract:
		result = a.AsNumber() - b.AsNumber()
	case chunk.OpMultiply:
		result = a.AsNumber() * b.AsNumber()
	case chunk.OpDivide:
		result = a.AsNumber() / b.AsNumber()
	}
	vm.push(value.Number(result))
	return Ok, true
}

// binaryCompare implements Less/LessEqual/Greater/GreaterEqual.
func (vm *VM) binaryCompare(op chunk.OpCode) (Result, bool) {
	bv, ok0 := vm.peek(0)
	av, ok1 := vm.peek(1)
	if !ok0 || !ok1 || bv.Kind() != value.KindNumber || av.Kind() != value.KindNumber {
		return vm.runtimeError("Operands must be numbers"), false
	}
	b := vm.pop()
	a := vm.pop()

	var result bool
	switch op {
	case chunk.OpLess:
		result = a.AsNumber() < b.AsNumber()
	case chunk.OpLessEqual:
		result = a.AsNumber() <= b.AsNumber()
	case chunk.OpGreater:
		result = a.AsNumber() > b.AsNumber()
	case chunk.OpGreaterEqual:
		result = a.AsNumber() >= b.AsNumber()
	}
	vm.push(value.Bool(result))
	return Ok, true
}

// runtimeError reports a diagnostic citing the source location recorded
// for the byte at IP-1 (the opcode that failed), resets the stack, and
// returns RuntimeError.
func (vm *VM) runtimeError(format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	offset := vm.ip - 1
	line := vm.chunk.LineAt(offset)
	col := vm.chunk.ColAt(offset)
	fmt.Fprintf(vm.Err, "Runtime Error at [%d:%d]: %s\n", line, col, msg)
	vm.resetStack()
	return RuntimeError
}
