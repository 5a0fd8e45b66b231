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

// Package chunk implements the executable unit the compiler emits into
// and the VM executes: an opcode byte buffer, an append-only constant
// pool, and two run-length-encoded source-location tables.
package chunk

import (
	"fmt"

	"github.com/kylelemons/godebug/pretty"

	"github.com/pdxjjb/tinylox/rle"
	"github.com/pdxjjb/tinylox/value"
)

// OpCode is a single-byte bytecode instruction tag. The numeric
// assignment is stable; Constant and ConstantLong must keep their
// operand-size difference because the compiler and any disassembler
// depend on it.
type OpCode byte

const (
	OpNil OpCode = iota
	OpTrue
	OpFalse
	OpConstant     // 1-byte constant-pool index operand
	OpConstantLong // 3-byte little-endian constant-pool index operand
	OpNot
	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpNegate
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpReturn
)

// constantLongThreshold is the point at which emitConstant must switch
// from the 1-byte Constant form to the 3-byte ConstantLong form.
const constantLongThreshold = 255

// maxConstants is the number of constant-pool indices the 3-byte
// little-endian ConstantLong operand can address (2^24); the largest
// addressable index is maxConstants-1.
const maxConstants = 1 << 24

// Chunk is an executable unit: opcode buffer + constant pool + the two
// RLE location tables, indexed in lockstep by byte offset into Code.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Lines     rle.Table
	Columns   rle.Table
}

// Write appends one byte to the code array and records its source
// location in both RLE tables. Every emitted byte - opcode or operand -
// goes through this, so Lines/Columns stay indexed by byte offset.
func (c *Chunk) Write(b byte, line, col int) {
	c.Code = append(c.Code, b)
	c.Lines.Append(line)
	c.Columns.Append(col)
}

// AddConstant appends v to the append-only constant pool and returns its
// index.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// WriteConstant adds v to the constant pool and emits the opcode/operand
// bytes to load it: OpConstant + 1-byte index below the threshold,
// OpConstantLong + 3-byte little-endian index at or above it.
func (c *Chunk) WriteConstant(v value.Value, line, col int) {
	idx := c.AddConstant(v)
	if idx >= maxConstants {
		panic(fmt.Sprintf("chunk: constant pool overflow at index %d", idx))
	}
	if idx < constantLongThreshold {
		c.Write(byte(OpConstant), line, col)
		c.Write(byte(idx), line, col)
		return
	}
	c.Write(byte(OpConstantLong), line, col)
	c.Write(byte(idx&0xFF), line, col)
	c.Write(byte((idx>>8)&0xFF), line, col)
	c.Write(byte((idx>>16)&0xFF), line, col)
}

// ReadConstantLong decodes a 3-byte little-endian constant index
// starting at offset (the first operand byte, i.e. one past the
// OpConstantLong opcode byte itself).
func (c *Chunk) ReadConstantLong(offset int) int {
	return int(c.Code[offset]) | int(c.Code[offset+1])<<8 | int(c.Code[offset+2])<<16
}

// LineAt and ColAt look up the source location recorded for the byte at
// offset, e.g. for runtime-error reporting at IP-1.
func (c *Chunk) LineAt(offset int) int { return c.Lines.Query(offset) }
func (c *Chunk) ColAt(offset int) int  { return c.Columns.Query(offset) }

// CheckInvariant reports whether the RLE tables still stay in lockstep
// with the code array. Intended for tests, not the hot path.
func (c *Chunk) CheckInvariant() error {
	n := len(c.Code)
	if c.Lines.Len() != n {
		return fmt.Errorf("chunk: lines run-length %d != code length %d", c.Lines.Len(), n)
	}
	if c.Columns.Len() != n {
		return fmt.Errorf("chunk: columns run-length %d != code length %d", c.Columns.Len(), n)
	}
	return nil
}

// String renders a compact debug view of the chunk's shape (byte count,
// constant pool) for test failure output. An instruction-by-instruction
// disassembler belongs in a separate tool; this is only an internal
// debugging aid, exercised by the chunk tests.
func (c *Chunk) String() string {
	rendered := make([]string, len(c.Constants))
	for i, v := range c.Constants {
		rendered[i] = value.Print(v)
	}
	return pretty.Sprint(struct {
		Bytes     int
		Constants []string
	}{len(c.Code), rendered})
}
