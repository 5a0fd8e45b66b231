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

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxjjb/tinylox/chunk"
)

func ops(c *chunk.Chunk) []chunk.OpCode {
	var out []chunk.OpCode
	i := 0
	for i < len(c.Code) {
		op := chunk.OpCode(c.Code[i])
		out = append(out, op)
		switch op {
		case chunk.OpConstant:
			i += 2
		case chunk.OpConstantLong:
			i += 4
		default:
			i++
		}
	}
	return out
}

func TestPrecedenceMultiplyBindsTighterThanAdd(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("1 + 2 * 3", &c)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpConstant,
		chunk.OpMultiply, chunk.OpAdd, chunk.OpReturn,
	}, ops(&c))
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("(1 + 2) * 3", &c)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpAdd,
		chunk.OpConstant, chunk.OpMultiply, chunk.OpReturn,
	}, ops(&c))
}

func TestUnaryBindsTighterThanBinary(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("-2 + 3", &c)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpNegate, chunk.OpConstant, chunk.OpAdd, chunk.OpReturn,
	}, ops(&c))
}

func TestLeftAssociativity(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("1 - 2 - 3", &c)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpSubtract,
		chunk.OpConstant, chunk.OpSubtract, chunk.OpReturn,
	}, ops(&c))
}

func TestUnaryPlusIsAbsorbed(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("+5", &c)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{chunk.OpConstant, chunk.OpReturn}, ops(&c))
}

func TestDoubleNegation(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("!!true", &c)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{chunk.OpTrue, chunk.OpNot, chunk.OpNot, chunk.OpReturn}, ops(&c))
}

// EqualEqual is registered at PrecComparison, not PrecEquality.
// BangEqual's right operand therefore parses at PrecEquality+1 =
// PrecComparison, which is high enough to absorb a following ==:
// "a != b == c" parses as "a != (b == c)". The other direction is
// unaffected - "a == b != c" still groups left-to-right, because =='s
// right operand parses at PrecTerm, past a trailing !=.
func TestEqualEqualPrecedenceQuirk(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("1 != 2 == 3", &c)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpConstant,
		chunk.OpEqual, chunk.OpNotEqual, chunk.OpReturn,
	}, ops(&c))

	var c2 chunk.Chunk
	ok = Compile("1 == 2 != 3", &c2)
	require.True(t, ok)
	assert.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpEqual,
		chunk.OpConstant, chunk.OpNotEqual, chunk.OpReturn,
	}, ops(&c2))
}

func TestUnclosedGroupingFailsWithPartialOutput(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("(1 + 2", &c)
	assert.False(t, ok)
	assert.NotEmpty(t, c.Code, "bytes emitted before the error stay in the chunk")
}

func TestMissingExpressionFails(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("", &c)
	assert.False(t, ok)
}

func TestSuccessfulCompileEndsWithReturn(t *testing.T) {
	var c chunk.Chunk
	ok := Compile("1 + 2", &c)
	require.True(t, ok)
	require.NotEmpty(t, c.Code)
	assert.Equal(t, byte(chunk.OpReturn), c.Code[len(c.Code)-1])
}

func TestConstantLongBoundary(t *testing.T) {
	src := ""
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += " + "
		}
		src += "1"
	}
	var c chunk.Chunk
	ok := Compile(src, &c)
	require.True(t, ok)
	require.NoError(t, c.CheckInvariant())
	found := false
	for _, op := range ops(&c) {
		if op == chunk.OpConstantLong {
			found = true
		}
	}
	assert.True(t, found, "256 distinct constants must trigger OpConstantLong")
}
