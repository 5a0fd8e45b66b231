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

// Package compiler is a single-pass Pratt (precedence-climbing) parser
// that emits bytecode directly into a chunk.Chunk, without building an
// intermediate tree. Parsing is driven by a table of prefix/infix
// handler functions keyed by token kind.
package compiler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pdxjjb/tinylox/chunk"
	"github.com/pdxjjb/tinylox/lexer"
	"github.com/pdxjjb/tinylox/token"
	"github.com/pdxjjb/tinylox/value"
)

// Debug gates verbose compile tracing.
var Debug = false

func trace(format string, args ...any) {
	if Debug {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// Precedence levels, strictly increasing.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler)

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   Precedence
}

// rules is the static Pratt table. Note that EqualEqual is registered
// at PrecComparison rather than PrecEquality - a known quirk of this
// table, kept as-is. BangEqual's right operand parses at PrecEquality+1
// = PrecComparison, so a == following a != is absorbed into the !='s
// right operand: "a != b == c" parses as "a != (b == c)".
var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LeftParen: {prefix: grouping},

		token.Minus: {prefix: unary, infix: binary, prec: PrecTerm},
		token.Plus:  {prefix: unary, infix: binary, prec: PrecTerm},
		token.Slash: {infix: binary, prec: PrecFactor},
		token.Star:  {infix: binary, prec: PrecFactor},

		token.Bang: {prefix: unary},

		token.BangEqual:    {infix: binary, prec: PrecEquality},
		token.EqualEqual:   {infix: binary, prec: PrecComparison}, // see note above
		token.Greater:      {infix: binary, prec: PrecComparison},
		token.GreaterEqual: {infix: binary, prec: PrecComparison},
		token.Less:         {infix: binary, prec: PrecComparison},
		token.LessEqual:    {infix: binary, prec: PrecComparison},

		token.Number: {prefix: number},
		token.False:  {prefix: literal},
		token.True:   {prefix: literal},
		token.Nil:    {prefix: literal},
	}
}

func getRule(k token.Kind) rule {
	return rules[k] // zero value: no prefix, no infix, PrecNone
}

// Compiler holds single-token lookahead parser state: a bag of mutable
// fields threaded through free functions rather than a deep call stack
// of return values.
type Compiler struct {
	lx        *lexer.Lexer
	chunk     *chunk.Chunk
	previous  token.Token
	current   token.Token
	hadError  bool
	panicMode bool
}

// Compile scans and parses source, emitting bytecode into out. On
// success out is a well-formed program terminated by OpReturn and
// Compile returns true. On failure out may contain partial output and
// must not be executed.
func Compile(source string, out *chunk.Chunk) bool {
	c := &Compiler{lx: lexer.MakeLexer(source), chunk: out}
	c.advance()
	c.expression()
	c.consume(token.Eof, "Expect end of expression.")
	c.emitOp(chunk.OpReturn)
	trace("compile: %d bytes, hadError=%v", len(out.Code), c.hadError)
	return !c.hadError
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lx.ScanNext()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence implements precedence climbing: advance, run the
// prefix rule, then while the minimum precedence is still <= the
// current token's infix precedence, advance and run the infix rule
// (which itself recurses at prec+1, giving left-associativity).
func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefixRule := getRule(c.previous.Kind).prefix
	if prefixRule == nil {
		c.errorAtPrevious("Expect expression.")
		return
	}
	prefixRule(c)

	for prec <= getRule(c.current.Kind).prec {
		c.advance()
		infixRule := getRule(c.previous.Kind).infix
		infixRule(c)
	}
}

func grouping(c *Compiler) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

// unary remembers its operator token before parsing its operand, so the
// emitted opcode is tagged with the operator's own location even though
// c.previous will have moved on by the time the operand finishes
// parsing.
func unary(c *Compiler) {
	opTok := c.previous
	c.parsePrecedence(PrecUnary)
	switch opTok.Kind {
	case token.Minus:
		c.emitOpAt(chunk.OpNegate, opTok)
	case token.Bang:
		c.emitOpAt(chunk.OpNot, opTok)
	case token.Plus:
		// unary plus is absorbed: no opcode emitted
	}
}

func binary(c *Compiler) {
	opTok := c.previous
	r := getRule(opTok.Kind)
	c.parsePrecedence(r.prec + 1)
	switch opTok.Kind {
	case token.Plus:
		c.emitOpAt(chunk.OpAdd, opTok)
	case token.Minus:
		c.emitOpAt(chunk.OpSubtract, opTok)
	case token.Star:
		c.emitOpAt(chunk.OpMultiply, opTok)
	case token.Slash:
		c.emitOpAt(chunk.OpDivide, opTok)
	case token.BangEqual:
		c.emitOpAt(chunk.OpNotEqual, opTok)
	case token.EqualEqual:
		c.emitOpAt(chunk.OpEqual, opTok)
	case token.Greater:
		c.emitOpAt(chunk.OpGreater, opTok)
	case token.GreaterEqual:
		c.emitOpAt(chunk.OpGreaterEqual, opTok)
	case token.Less:
		c.emitOpAt(chunk.OpLess, opTok)
	case token.LessEqual:
		c.emitOpAt(chunk.OpLessEqual, opTok)
	}
}

func number(c *Compiler) {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.errorAtPrevious("Invalid number literal.")
		return
	}
	c.chunk.WriteConstant(value.Number(v), c.previous.Line, c.previous.Col)
}

func literal(c *Compiler) {
	switch c.previous.Kind {
	case token.False:
		c.emitOp(chunk.OpFalse)
	case token.True:
		c.emitOp(chunk.OpTrue)
	case token.Nil:
		c.emitOp(chunk.OpNil)
	}
}

// emitOp/emitByte tag the byte with the previous token's location, the
// default. emitOpAt/emitByteAt are used where a prefix/infix rule
// captured its own operator token instead.
func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line, c.previous.Col)
}

func (c *Compiler) emitOp(op chunk.OpCode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitByteAt(b byte, tok token.Token) {
	c.chunk.Write(b, tok.Line, tok.Col)
}

func (c *Compiler) emitOpAt(op chunk.OpCode, tok token.Token) {
	c.emitByteAt(byte(op), tok)
}

// errorAt reports a diagnostic citing tok's line/column and lexeme (or
// "at end" for Eof, or nothing for an already-descriptive lexer error).
// The first error sets hadError and panicMode; subsequent errors are
// silently suppressed until panicMode clears - which, in this opcode
// set, never happens before end of input, since there is no statement
// boundary to synchronize on.
func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	switch tok.Kind {
	case token.Eof:
		fmt.Fprintf(os.Stderr, "Error [%d:%d] at end: %s\n", tok.Line, tok.Col, msg)
	case token.Error:
		fmt.Fprintf(os.Stderr, "Error [%d:%d]: %s\n", tok.Line, tok.Col, msg)
	default:
		fmt.Fprintf(os.Stderr, "Error [%d:%d] at '%s': %s\n", tok.Line, tok.Col, tok.Lexeme, msg)
	}
}

func (c *Compiler) errorAtCurrent(msg string)  { c.errorAt(c.current, msg) }
func (c *Compiler) errorAtPrevious(msg string) { c.errorAt(c.previous, msg) }
